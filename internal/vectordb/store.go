package vectordb

import "context"

// Dimensions is the fixed vector size of the collection. It matches the
// dense output of bge-m3; changing the embedding model to a different
// dimension invalidates the existing collection.
const Dimensions = 1024

// unknownSource tags legacy points that were stored without a source.
// It is excluded from ListSources.
const unknownSource = "unknown"

// ChunkMetadata is the payload attached to each stored chunk.
type ChunkMetadata struct {
	Source     string
	ChunkIndex int
}

// SearchResult is a retrieved chunk with its similarity score.
// Results are ordered by descending score.
type SearchResult struct {
	Score      float32
	Text       string
	Source     string
	ChunkIndex int
}

// SearchOptions narrows a similarity search.
//
// AllowedSources distinguishes nil from empty: nil applies no source
// restriction, while a non-nil empty slice matches nothing and returns no
// results without querying the index.
type SearchOptions struct {
	Limit          int
	AllowedSources []string
	ScoreThreshold float32
}

// VectorStore is the single point of truth for persisted chunks. All
// operations return explicit errors so callers can tell an empty result
// from a failed one.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// Idempotent; safe to call on every startup.
	EnsureCollection(ctx context.Context) error

	// Upsert writes one point per (chunk, vector, metadata) triple with a
	// fresh unique identifier. The chunk text is merged into a copy of the
	// metadata payload. Returns the number of points written. Retrying a
	// successful call appends duplicate points; dedup is the ingestion
	// pipeline's responsibility.
	Upsert(ctx context.Context, chunks []string, vectors [][]float32, metas []ChunkMetadata) (int, error)

	// Search returns up to opts.Limit results ordered by descending
	// similarity, excluding results below opts.ScoreThreshold.
	Search(ctx context.Context, vector []float32, opts SearchOptions) ([]SearchResult, error)

	// HasDocument reports whether at least one stored point belongs to the
	// given source.
	HasDocument(ctx context.Context, source string) (bool, error)

	// DeleteDocument removes every point belonging to the given source.
	DeleteDocument(ctx context.Context, source string) error

	// ListSources enumerates the distinct, non-empty source names in the
	// collection.
	ListSources(ctx context.Context) ([]string, error)

	// Count returns the total number of stored points.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying connection or file handles.
	Close() error
}
