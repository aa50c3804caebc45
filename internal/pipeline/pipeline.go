// Package pipeline wires OCR extraction, chunking, embedding, the vector
// store and the language model into the two top-level flows: ingesting a
// document and answering a question about the ingested corpus.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hdtinh57/smartdocqa/internal/artifacts"
	"github.com/hdtinh57/smartdocqa/internal/chunker"
	"github.com/hdtinh57/smartdocqa/internal/config"
	"github.com/hdtinh57/smartdocqa/internal/embeddings"
	"github.com/hdtinh57/smartdocqa/internal/llm"
	"github.com/hdtinh57/smartdocqa/internal/ocr"
	"github.com/hdtinh57/smartdocqa/internal/registry"
	"github.com/hdtinh57/smartdocqa/internal/vectordb"
)

// Ingestion outcomes.
const (
	StatusComplete = "complete"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// IngestResult describes what happened to one document.
type IngestResult struct {
	Source     string `json:"source"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	Reason     string `json:"reason,omitempty"`
}

// Pipeline owns every collaborator needed to ingest and query documents.
type Pipeline struct {
	cfg       *config.Config
	store     vectordb.VectorStore
	embedder  embeddings.Embedder
	splitter  *chunker.Splitter
	engine    ocr.Engine
	generator llm.Provider
	reg       *registry.Registry
	art       *artifacts.Store

	// ingestLocks serializes concurrent ingestions of the same source.
	ingestLocks sync.Map
}

// New builds a fully wired pipeline from configuration. The vector store
// connection is established here; everything else is lazy.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	qdrantKey := cfg.Qdrant.APIKey
	if qdrantKey == "" {
		qdrantKey = os.Getenv("QDRANT_API_KEY")
	}
	store, err := vectordb.Connect(ctx, vectordb.ConnectConfig{
		URL:         cfg.Qdrant.URL,
		APIKey:      qdrantKey,
		Collection:  cfg.Qdrant.Collection,
		FallbackDir: cfg.DataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting vector store: %w", err)
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		store.Close()
		return nil, err
	}

	generator, err := llm.NewProvider(string(cfg.LLM.Provider), cfg.LLM.Model)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating language model provider: %w", err)
	}
	if cfg.LLM.RateLimitRPM > 0 {
		generator = llm.NewRateLimitedProvider(generator, cfg.LLM.RateLimitRPM)
	}

	reg, err := registry.Open(filepath.Join(cfg.DataDir, "registry.db"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening document registry: %w", err)
	}

	return &Pipeline{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		splitter:  chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap),
		engine:    ocr.NewEngine(ctx, cfg.OCR, os.Getenv("MISTRAL_API_KEY")),
		generator: generator,
		reg:       reg,
		art:       artifacts.NewStore(cfg.DataDir),
	}, nil
}

func newEmbedder(cfg config.EmbeddingConfig) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.Model, cfg.Dimensions, cfg.BaseURL), nil
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, cfg.BaseURL, cfg.Model, cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// Ingest extracts, chunks, embeds and stores one document. The source name
// identifies the document; an empty source defaults to the file's base name.
// Re-ingesting a source that is already stored is skipped with a warning
// rather than duplicated or overwritten.
func (p *Pipeline) Ingest(ctx context.Context, path, source string) (*IngestResult, error) {
	if source == "" {
		source = filepath.Base(path)
	}

	lock := p.sourceLock(source)
	lock.Lock()
	defer lock.Unlock()

	exists, err := p.hasDocument(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("checking for existing document %q: %w", source, err)
	}
	if exists {
		log.Printf("document %q already ingested, skipping", source)
		return &IngestResult{Source: source, Status: StatusSkipped, Reason: "already ingested"}, nil
	}

	text, err := p.extractText(ctx, path)
	if err != nil {
		p.recordFailure(ctx, source)
		return nil, fmt.Errorf("extracting text from %q: %w", source, err)
	}

	if strings.TrimSpace(text) == "" {
		log.Printf("document %q contains no extractable text", source)
		p.recordFailure(ctx, source)
		return &IngestResult{Source: source, Status: StatusFailed, Reason: "no extractable text"}, nil
	}

	if err := p.art.SaveOCRText(source, text); err != nil {
		log.Printf("saving OCR text for %q: %v", source, err)
	}

	chunks, metas := p.splitter.SplitDocument(text, source)
	if len(chunks) == 0 {
		p.recordFailure(ctx, source)
		return &IngestResult{Source: source, Status: StatusFailed, Reason: "no chunks generated"}, nil
	}

	vectors, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		p.recordFailure(ctx, source)
		return nil, fmt.Errorf("embedding %d chunks for %q: %w", len(chunks), source, err)
	}

	written, err := p.store.Upsert(ctx, chunks, vectors, metas)
	if err != nil {
		p.recordFailure(ctx, source)
		return nil, fmt.Errorf("storing %d chunks for %q: %w", len(chunks), source, err)
	}

	if err := p.reg.Record(ctx, registry.Document{
		Source:     source,
		Status:     registry.StatusComplete,
		ChunkCount: written,
	}); err != nil {
		log.Printf("recording document %q: %v", source, err)
	}

	return &IngestResult{Source: source, Status: StatusComplete, ChunkCount: written}, nil
}

// hasDocument consults the registry first and falls back to the vector
// store, so documents ingested before the registry existed are still
// detected.
func (p *Pipeline) hasDocument(ctx context.Context, source string) (bool, error) {
	if ok, err := p.reg.HasComplete(ctx, source); err == nil && ok {
		return true, nil
	}
	return p.store.HasDocument(ctx, source)
}

func (p *Pipeline) recordFailure(ctx context.Context, source string) {
	if err := p.reg.Record(ctx, registry.Document{Source: source, Status: registry.StatusFailed}); err != nil {
		log.Printf("recording failure for %q: %v", source, err)
	}
}

func (p *Pipeline) extractText(ctx context.Context, path string) (string, error) {
	if ocr.IsPDF(path) {
		// PDFs with a native text layer skip OCR entirely.
		if text, err := ocr.ExtractPDFText(path); err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return p.engine.ExtractText(ctx, path)
}

func (p *Pipeline) sourceLock(source string) *sync.Mutex {
	lock, _ := p.ingestLocks.LoadOrStore(source, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Search embeds the query and returns the matching chunks. A nil
// allowedSources applies no restriction; an empty one matches nothing.
func (p *Pipeline) Search(ctx context.Context, query string, allowedSources []string) ([]vectordb.SearchResult, error) {
	vectors, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return p.store.Search(ctx, vectors[0], vectordb.SearchOptions{
		Limit:          p.cfg.Search.Limit,
		AllowedSources: allowedSources,
		ScoreThreshold: float32(p.cfg.Search.ScoreThreshold),
	})
}

// NoAnswerResponse is returned when retrieval finds nothing relevant. The
// language model is not consulted in that case.
const NoAnswerResponse = "I couldn't find any relevant information in the ingested documents."

const answerSystemPrompt = `You are a helpful assistant that answers questions about the user's documents.
Answer using only the information in the provided excerpts. If the excerpts do not contain the answer, reply "I don't know based on the document." Do not invent information.`

// Ask answers a single question against the ingested corpus.
func (p *Pipeline) Ask(ctx context.Context, query string, allowedSources []string) (string, error) {
	return p.Chat(ctx, nil, query, allowedSources)
}

// Chat answers a question with prior conversation turns as context. History
// holds alternating user and assistant messages, oldest first.
func (p *Pipeline) Chat(ctx context.Context, history []llm.Message, query string, allowedSources []string) (string, error) {
	results, err := p.Search(ctx, query, allowedSources)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoAnswerResponse, nil
	}

	var sb strings.Builder
	sb.WriteString("Excerpts from the ingested documents:\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "--- Excerpt %d (source: %s) ---\n%s\n\n", i+1, r.Source, r.Text)
	}
	fmt.Fprintf(&sb, "Question: %s", query)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: answerSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: sb.String()})

	resp, err := p.generator.Complete(ctx, llm.CompletionRequest{
		Model:    p.cfg.LLM.Model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// ListDocuments returns the ingested documents, most recent first.
func (p *Pipeline) ListDocuments(ctx context.Context) ([]registry.Document, error) {
	return p.reg.List(ctx)
}

// DeleteDocument removes every trace of a source: its vectors, its registry
// row and its on-disk artifacts. Artifact and registry cleanup is
// best-effort once the vectors are gone.
func (p *Pipeline) DeleteDocument(ctx context.Context, source string) error {
	if err := p.store.DeleteDocument(ctx, source); err != nil {
		return fmt.Errorf("deleting chunks for %q: %w", source, err)
	}
	if err := p.reg.Delete(ctx, source); err != nil {
		log.Printf("deleting registry row for %q: %v", source, err)
	}
	p.art.Remove(source)
	return nil
}

// DocumentOCR returns the stored OCR text for a source, rendered to HTML
// when asHTML is set.
func (p *Pipeline) DocumentOCR(source string, asHTML bool) (string, error) {
	if asHTML {
		return p.art.RenderOCRHTML(source)
	}
	return p.art.ReadOCRText(source)
}

// SaveUpload stores an uploaded original and returns its on-disk path,
// ready to be passed to Ingest.
func (p *Pipeline) SaveUpload(source string, r io.Reader) (string, error) {
	return p.art.SaveOriginal(source, r)
}

// OriginalPath returns where the original file for a source is stored.
func (p *Pipeline) OriginalPath(source string) string {
	return p.art.OriginalPath(source)
}

// Close releases the vector store and registry.
func (p *Pipeline) Close() error {
	var firstErr error
	if err := p.store.Close(); err != nil {
		firstErr = err
	}
	if err := p.reg.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
