package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("expected default embedding dimensions 1024, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("expected default chunking 1000/200, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Search.Limit != 4 {
		t.Errorf("expected default search limit 4, got %d", cfg.Search.Limit)
	}
	if cfg.Search.ScoreThreshold != 0.2 {
		t.Errorf("expected default score threshold 0.2, got %v", cfg.Search.ScoreThreshold)
	}
	if cfg.Qdrant.Collection != "smart_doc_qa" {
		t.Errorf("expected default collection smart_doc_qa, got %q", cfg.Qdrant.Collection)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docqa.yml")

	original := DefaultConfig()
	original.LLM.Provider = ProviderOllama
	original.LLM.Model = "gemma2"
	original.Qdrant.URL = "https://qdrant.example.com:6333"
	original.Chunking.Size = 500
	original.Search.Limit = 8

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != original.LLM.Provider {
		t.Errorf("llm provider: got %q, want %q", loaded.LLM.Provider, original.LLM.Provider)
	}
	if loaded.LLM.Model != original.LLM.Model {
		t.Errorf("llm model: got %q, want %q", loaded.LLM.Model, original.LLM.Model)
	}
	if loaded.Qdrant.URL != original.Qdrant.URL {
		t.Errorf("qdrant url: got %q, want %q", loaded.Qdrant.URL, original.Qdrant.URL)
	}
	if loaded.Chunking.Size != original.Chunking.Size {
		t.Errorf("chunking size: got %d, want %d", loaded.Chunking.Size, original.Chunking.Size)
	}
	if loaded.Search.Limit != original.Search.Limit {
		t.Errorf("search limit: got %d, want %d", loaded.Search.Limit, original.Search.Limit)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load of missing file should fall back to defaults, got: %v", err)
	}
	if cfg.Qdrant.URL != "http://localhost:6333" {
		t.Errorf("expected default qdrant url, got %q", cfg.Qdrant.URL)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DOCQA_SERVER__PORT", "9090")
	t.Setenv("DOCQA_LLM__MODEL", "gemini-2.0-flash")
	t.Setenv("DOCQA_QDRANT__API_KEY", "qdrant-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "docqa.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("llm model: got %q, want gemini-2.0-flash", cfg.LLM.Model)
	}
	if cfg.Qdrant.APIKey != "qdrant-secret" {
		t.Errorf("qdrant api key: got %q, want qdrant-secret", cfg.Qdrant.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad llm provider", func(c *Config) { c.LLM.Provider = "mistral" }},
		{"empty llm model", func(c *Config) { c.LLM.Model = "" }},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"bad ocr mode", func(c *Config) { c.OCR.Mode = "cloud" }},
		{"empty qdrant url", func(c *Config) { c.Qdrant.URL = "" }},
		{"empty collection", func(c *Config) { c.Qdrant.Collection = "" }},
		{"overlap >= size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }},
		{"zero search limit", func(c *Config) { c.Search.Limit = 0 }},
		{"threshold out of range", func(c *Config) { c.Search.ScoreThreshold = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
