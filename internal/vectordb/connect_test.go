package vectordb

import (
	"context"
	"testing"
)

func TestConnectFallsBackToEmbedded(t *testing.T) {
	// Port 1 is never a running Qdrant; a local-looking URL must fall back
	// silently to the embedded store.
	store, err := Connect(context.Background(), ConnectConfig{
		URL:         "http://localhost:1",
		Collection:  "smart_doc_qa",
		FallbackDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*ChromemStore); !ok {
		t.Fatalf("expected embedded fallback store, got %T", store)
	}

	// The fallback store honors the same contract.
	if _, err := store.Upsert(context.Background(),
		[]string{"hello"},
		[][]float32{basisVector(0)},
		[]ChunkMetadata{{Source: "doc1.png", ChunkIndex: 0}},
	); err != nil {
		t.Fatalf("Upsert on fallback store: %v", err)
	}
}
