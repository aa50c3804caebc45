package config

// DefaultConfig returns a Config populated with sensible defaults.
// The defaults assume a local Qdrant (with embedded fallback), a local
// Ollama serving bge-m3 embeddings, and the Mistral OCR API.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Server: ServerConfig{
			Port: 8080,
		},
		LLM: LLMConfig{
			Provider: ProviderGoogle,
			Model:    "gemini-2.5-flash",
		},
		Embedding: EmbeddingConfig{
			Provider:   ProviderOllama,
			Model:      "bge-m3",
			Dimensions: 1024,
		},
		OCR: OCRConfig{
			Mode:        OCRRemote,
			Model:       "mistral-ocr-latest",
			VisionModel: "qwen2.5vl",
		},
		Qdrant: QdrantConfig{
			URL:        "http://localhost:6333",
			Collection: "smart_doc_qa",
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Search: SearchConfig{
			Limit:          4,
			ScoreThreshold: 0.2,
		},
	}
}
