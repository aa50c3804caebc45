package vectordb

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// ConnectConfig selects and configures the backing store.
type ConnectConfig struct {
	URL        string
	APIKey     string
	Collection string
	// FallbackDir is the directory for the embedded store when no local
	// Qdrant server is reachable.
	FallbackDir string
}

// Connect establishes the vector store once, at startup.
//
// A local-looking URL is probed with a trivial read; if the server is not
// running, Connect falls back to the embedded on-disk store. The fallback is
// transparent: callers get the same VectorStore contract either way. A
// remote URL connects directly with credentials and never falls back.
// Failure in both modes is fatal for the whole pipeline.
func Connect(ctx context.Context, cfg ConnectConfig) (VectorStore, error) {
	qdrant := NewQdrantStore(QdrantConfig{
		URL:        cfg.URL,
		APIKey:     cfg.APIKey,
		Collection: cfg.Collection,
	})

	if isLocalURL(cfg.URL) {
		if err := qdrant.Ping(ctx); err != nil {
			log.Printf("local qdrant at %s not reachable, using embedded store: %v", cfg.URL, err)
			embedded, err := NewChromemStore(filepath.Join(cfg.FallbackDir, "qdrant_storage"), cfg.Collection)
			if err != nil {
				return nil, fmt.Errorf("embedded store fallback: %w", err)
			}
			if err := embedded.EnsureCollection(ctx); err != nil {
				return nil, err
			}
			return embedded, nil
		}
	}

	if err := qdrant.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	return qdrant, nil
}

func isLocalURL(url string) bool {
	return strings.Contains(url, "localhost") || strings.Contains(url, "127.0.0.1")
}
