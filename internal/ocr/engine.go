// Package ocr extracts text from uploaded PDF and image documents.
package ocr

import (
	"context"
	"log"

	"github.com/hdtinh57/smartdocqa/internal/config"
)

// Engine is the text-extraction capability consumed by the ingestion
// pipeline. An empty string with a nil error means the document contained
// nothing extractable; the pipeline treats that as an ingestion failure.
type Engine interface {
	ExtractText(ctx context.Context, path string) (string, error)
	Name() string
}

// NewEngine selects the OCR variant from configuration. When the local
// variant is requested but its Ollama backend is unreachable, NewEngine
// falls back to the remote engine.
func NewEngine(ctx context.Context, cfg config.OCRConfig, mistralAPIKey string) Engine {
	if cfg.Mode == config.OCRLocal {
		local := NewOllamaVisionEngine(cfg.OllamaHost, cfg.VisionModel)
		if err := local.ping(ctx); err != nil {
			log.Printf("local ocr backend unavailable, falling back to remote: %v", err)
			return NewMistralEngine(mistralAPIKey, cfg.Model)
		}
		return local
	}
	return NewMistralEngine(mistralAPIKey, cfg.Model)
}
