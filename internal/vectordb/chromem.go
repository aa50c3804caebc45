package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore is the embedded on-disk fallback store, used when no Qdrant
// server is reachable. It offers the same contract as QdrantStore.
//
// chromem-go cannot enumerate points by payload, so the store keeps a
// sidecar index mapping each source to its point IDs, persisted as JSON
// next to the chromem data.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string

	mu        sync.Mutex
	sources   map[string][]string // source -> point IDs
	indexPath string
}

// NewChromemStore opens (or creates) an embedded store persisted under dir.
func NewChromemStore(dir, collection string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening embedded store at %s: %w", dir, err)
	}

	s := &ChromemStore{
		db:        db,
		name:      collection,
		sources:   make(map[string][]string),
		indexPath: filepath.Join(dir, "sources.json"),
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ChromemStore) EnsureCollection(ctx context.Context) error {
	// Vectors are always supplied precomputed, so no embedding func is
	// needed; chromem only calls it for documents without an embedding.
	col, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.name, err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Upsert(ctx context.Context, chunks []string, vectors [][]float32, metas []ChunkMetadata) (int, error) {
	if len(chunks) != len(vectors) || len(chunks) != len(metas) {
		return 0, fmt.Errorf("upsert length mismatch: %d chunks, %d vectors, %d metadatas", len(chunks), len(vectors), len(metas))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]chromem.Document, len(chunks))
	ids := make(map[string][]string)
	for i := range chunks {
		id := uuid.NewString()
		docs[i] = chromem.Document{
			ID:        id,
			Content:   chunks[i],
			Embedding: vectors[i],
			Metadata: map[string]string{
				"source":      metas[i].Source,
				"chunk_index": strconv.Itoa(metas[i].ChunkIndex),
			},
		}
		ids[metas[i].Source] = append(ids[metas[i].Source], id)
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return 0, fmt.Errorf("adding %d documents: %w", len(docs), err)
	}

	s.mu.Lock()
	for src, pointIDs := range ids {
		s.sources[src] = append(s.sources[src], pointIDs...)
	}
	err := s.saveIndexLocked()
	s.mu.Unlock()
	if err != nil {
		return len(docs), err
	}
	return len(docs), nil
}

func (s *ChromemStore) Search(ctx context.Context, vector []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive")
	}
	if opts.AllowedSources != nil && len(opts.AllowedSources) == 0 {
		return nil, nil
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// chromem's where clause only supports a single equality match, so a
	// source set is applied as a post-filter; over-fetch to compensate.
	n := opts.Limit
	if opts.AllowedSources != nil || n > count {
		n = count
	}

	hits, err := s.collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embedded query: %w", err)
	}

	allowed := make(map[string]bool, len(opts.AllowedSources))
	for _, src := range opts.AllowedSources {
		allowed[src] = true
	}

	results := make([]SearchResult, 0, opts.Limit)
	for _, hit := range hits {
		if hit.Similarity < opts.ScoreThreshold {
			continue
		}
		src := hit.Metadata["source"]
		if opts.AllowedSources != nil && !allowed[src] {
			continue
		}
		idx, _ := strconv.Atoi(hit.Metadata["chunk_index"])
		results = append(results, SearchResult{
			Score:      hit.Similarity,
			Text:       hit.Content,
			Source:     src,
			ChunkIndex: idx,
		})
		if len(results) == opts.Limit {
			break
		}
	}
	return results, nil
}

func (s *ChromemStore) HasDocument(ctx context.Context, source string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources[source]) > 0, nil
}

func (s *ChromemStore) DeleteDocument(ctx context.Context, source string) error {
	if err := s.collection.Delete(ctx, map[string]string{"source": source}, nil); err != nil {
		return fmt.Errorf("deleting points for %q: %w", source, err)
	}

	s.mu.Lock()
	delete(s.sources, source)
	err := s.saveIndexLocked()
	s.mu.Unlock()
	return err
}

func (s *ChromemStore) ListSources(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources := make([]string, 0, len(s.sources))
	for src, ids := range s.sources {
		if src == "" || src == unknownSource || len(ids) == 0 {
			continue
		}
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

func (s *ChromemStore) Close() error { return nil }

func (s *ChromemStore) loadIndex() error {
	data, err := os.ReadFile(s.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading source index: %w", err)
	}
	if err := json.Unmarshal(data, &s.sources); err != nil {
		return fmt.Errorf("parsing source index: %w", err)
	}
	return nil
}

func (s *ChromemStore) saveIndexLocked() error {
	data, err := json.Marshal(s.sources)
	if err != nil {
		return fmt.Errorf("encoding source index: %w", err)
	}
	if err := os.WriteFile(s.indexPath, data, 0644); err != nil {
		return fmt.Errorf("writing source index: %w", err)
	}
	return nil
}
