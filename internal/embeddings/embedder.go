package embeddings

import "context"

// Embedder is the gateway that turns text into dense vectors. The same
// embedder instance must serve both document chunks and queries; mixing
// models (or dimensions) breaks similarity scoring against the stored
// collection.
type Embedder interface {
	// Embed generates one vector per input text, order-preserving.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed output dimension of the model.
	Dimensions() int

	// Name returns the model identifier.
	Name() string
}
