package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
)

// QdrantStore is a minimal REST client to a Qdrant server. It owns a single
// collection with cosine distance.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// QdrantConfig configures a QdrantStore.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewQdrantStore creates a Qdrant-backed store. It does not touch the
// network; call Ping or EnsureCollection to verify reachability.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Ping performs a trivial read (list collections) to confirm the server is
// reachable.
func (s *QdrantStore) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, s.url+"/collections", nil, nil)
}

func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	// Existence check first: PUT on an existing collection with the same
	// schema is accepted, but a schema drift should surface as an error.
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, nil)
	if err == nil {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     Dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil); err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, chunks []string, vectors [][]float32, metas []ChunkMetadata) (int, error) {
	if len(chunks) != len(vectors) || len(chunks) != len(metas) {
		return 0, fmt.Errorf("upsert length mismatch: %d chunks, %d vectors, %d metadatas", len(chunks), len(vectors), len(metas))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		points[i] = map[string]any{
			"id":     uuid.NewString(),
			"vector": vectors[i],
			"payload": map[string]any{
				"source":      metas[i].Source,
				"chunk_index": metas[i].ChunkIndex,
				"text":        chunks[i],
			},
		}
	}

	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection)
	if err := s.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return 0, fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return len(points), nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, opts SearchOptions) ([]SearchResult, error) {
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive")
	}
	// An explicitly empty source set matches nothing; skip the round trip.
	if opts.AllowedSources != nil && len(opts.AllowedSources) == 0 {
		return nil, nil
	}

	req := map[string]any{
		"vector":          vector,
		"limit":           opts.Limit,
		"with_payload":    true,
		"score_threshold": opts.ScoreThreshold,
	}
	if opts.AllowedSources != nil {
		req["filter"] = map[string]any{
			"must": []any{
				map[string]any{
					"key":   "source",
					"match": map[string]any{"any": opts.AllowedSources},
				},
			},
		}
	}

	var resp struct {
		Result []struct {
			Score   float32       `json:"score"`
			Payload qdrantPayload `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection)
	if err := s.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, SearchResult{
			Score:      r.Score,
			Text:       r.Payload.Text,
			Source:     r.Payload.Source,
			ChunkIndex: r.Payload.ChunkIndex,
		})
	}
	return results, nil
}

func (s *QdrantStore) HasDocument(ctx context.Context, source string) (bool, error) {
	req := map[string]any{
		"filter": sourceFilter(source),
		"exact":  true,
	}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection)
	if err := s.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return false, fmt.Errorf("counting points for %q: %w", source, err)
	}
	return resp.Result.Count > 0, nil
}

func (s *QdrantStore) DeleteDocument(ctx context.Context, source string) error {
	req := map[string]any{"filter": sourceFilter(source)}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, s.collection)
	if err := s.do(ctx, http.MethodPost, url, req, nil); err != nil {
		return fmt.Errorf("deleting points for %q: %w", source, err)
	}
	return nil
}

// ListSources pages through the whole collection with the scroll API and
// collects distinct source names.
func (s *QdrantStore) ListSources(ctx context.Context) ([]string, error) {
	const pageSize = 256

	seen := make(map[string]bool)
	var offset any

	for {
		req := map[string]any{
			"limit":        pageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload qdrantPayload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		url := fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection)
		if err := s.do(ctx, http.MethodPost, url, req, &resp); err != nil {
			return nil, fmt.Errorf("scrolling points: %w", err)
		}

		for _, p := range resp.Result.Points {
			if src := p.Payload.Source; src != "" && src != unknownSource {
				seen[src] = true
			}
		}

		if resp.Result.NextPageOffset == nil {
			break
		}
		offset = resp.Result.NextPageOffset
	}

	sources := make([]string, 0, len(seen))
	for src := range seen {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	req := map[string]any{"exact": true}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection)
	if err := s.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return 0, fmt.Errorf("counting points: %w", err)
	}
	return resp.Result.Count, nil
}

func (s *QdrantStore) Close() error { return nil }

type qdrantPayload struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

func sourceFilter(source string) map[string]any {
	return map[string]any{
		"must": []any{
			map[string]any{
				"key":   "source",
				"match": map[string]any{"value": source},
			},
		},
	}
}

// do sends a JSON request and decodes the JSON response into out (if non-nil).
func (s *QdrantStore) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s: %s: %s", method, url, resp.Status, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
