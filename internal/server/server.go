// Package server exposes the document question-answering pipeline over
// HTTP: document upload and management, retrieval queries, and a WebSocket
// chat endpoint.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hdtinh57/smartdocqa/internal/llm"
	"github.com/hdtinh57/smartdocqa/internal/pipeline"
	"github.com/hdtinh57/smartdocqa/internal/registry"
	"github.com/hdtinh57/smartdocqa/internal/vectordb"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// QA is the slice of the pipeline the server needs. *pipeline.Pipeline
// satisfies it.
type QA interface {
	Ingest(ctx context.Context, path, source string) (*pipeline.IngestResult, error)
	Search(ctx context.Context, query string, allowedSources []string) ([]vectordb.SearchResult, error)
	Ask(ctx context.Context, query string, allowedSources []string) (string, error)
	Chat(ctx context.Context, history []llm.Message, query string, allowedSources []string) (string, error)
	ListDocuments(ctx context.Context) ([]registry.Document, error)
	DeleteDocument(ctx context.Context, source string) error
	DocumentOCR(source string, asHTML bool) (string, error)
	SaveUpload(source string, r io.Reader) (string, error)
	OriginalPath(source string) string
}

// Server is the document QA HTTP server.
type Server struct {
	cfg        Config
	qa         QA
	router     chi.Router
	httpServer *http.Server
}

// New creates a server around an already wired pipeline.
func New(cfg Config, qa QA) *Server {
	s := &Server{cfg: cfg, qa: qa}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// The chat socket is long-lived; a request timeout would expire
		// its context mid-conversation.
		r.Get("/chat/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(120 * time.Second))
			r.Post("/documents", s.uploadDocument)
			r.Get("/documents", s.listDocuments)
			r.Delete("/documents/{source}", s.deleteDocument)
			r.Get("/documents/{source}/ocr", s.documentOCR)
			r.Get("/documents/{source}/original", s.documentOriginal)
			r.Post("/query", s.query)
			r.Post("/search", s.search)
		})
	})

	return r
}

// Router returns the router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("smartdocqa server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
