package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// OCRMode selects how text is extracted from uploaded documents.
type OCRMode string

const (
	// OCRRemote uses the Mistral OCR API.
	OCRRemote OCRMode = "remote"
	// OCRLocal uses a vision model served by a local Ollama instance.
	OCRLocal OCRMode = "local"
)

// Config is the top-level smartdocqa configuration, corresponding to docqa.yml.
type Config struct {
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	LLM       LLMConfig       `yaml:"llm" koanf:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	OCR       OCRConfig       `yaml:"ocr" koanf:"ocr"`
	Qdrant    QdrantConfig    `yaml:"qdrant" koanf:"qdrant"`
	Chunking  ChunkingConfig  `yaml:"chunking" koanf:"chunking"`
	Search    SearchConfig    `yaml:"search" koanf:"search"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // allow all CORS origins (dev mode)
}

// LLMConfig selects the answer-generation provider.
type LLMConfig struct {
	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	Model        string       `yaml:"model" koanf:"model"`
	RateLimitRPM int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}

// EmbeddingConfig selects the embedding gateway. The same gateway embeds
// both document chunks and queries; changing the model invalidates the
// existing vector collection.
type EmbeddingConfig struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	BaseURL    string       `yaml:"base_url" koanf:"base_url"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
}

// OCRConfig selects the OCR engine variant.
type OCRConfig struct {
	Mode        OCRMode `yaml:"mode" koanf:"mode"`
	Model       string  `yaml:"model" koanf:"model"`
	VisionModel string  `yaml:"vision_model" koanf:"vision_model"`
	OllamaHost  string  `yaml:"ollama_host" koanf:"ollama_host"`
}

// QdrantConfig holds vector store connection settings.
type QdrantConfig struct {
	URL        string `yaml:"url" koanf:"url"`
	APIKey     string `yaml:"api_key" koanf:"api_key"`
	Collection string `yaml:"collection" koanf:"collection"`
}

// ChunkingConfig controls the text splitter.
type ChunkingConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// SearchConfig controls retrieval.
type SearchConfig struct {
	Limit          int     `yaml:"limit" koanf:"limit"`
	ScoreThreshold float64 `yaml:"score_threshold" koanf:"score_threshold"`
}
