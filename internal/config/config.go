package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCQA_*). A .env file in the working
// directory is loaded first, so API keys can live there instead of the
// shell environment. Nested keys use double underscores:
// DOCQA_SERVER__PORT overrides server.port.
func Load(path string) (*Config, error) {
	// Best-effort: missing .env is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("DOCQA_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DOCQA_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// API keys are env-only; never read from the YAML file.
	if cfg.Qdrant.APIKey == "" {
		cfg.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm provider %q: must be one of google, openai, ollama", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.LLM.RateLimitRPM < 0 {
		return fmt.Errorf("llm rate_limit_rpm must be non-negative")
	}

	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive")
	}

	if c.OCR.Mode != OCRRemote && c.OCR.Mode != OCRLocal {
		return fmt.Errorf("invalid ocr mode %q: must be remote or local", c.OCR.Mode)
	}

	if c.Qdrant.URL == "" {
		return fmt.Errorf("qdrant url is required")
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection is required")
	}

	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking size must be positive")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking overlap must be in [0, size)")
	}

	if c.Search.Limit <= 0 {
		return fmt.Errorf("search limit must be positive")
	}
	if c.Search.ScoreThreshold < 0 || c.Search.ScoreThreshold > 1 {
		return fmt.Errorf("search score_threshold must be in [0, 1]")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
