package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/hdtinh57/smartdocqa/internal/pipeline"
	"github.com/hdtinh57/smartdocqa/internal/registry"
)

// queryRequest is shared by the query and search endpoints. A missing
// sources field means no restriction; an explicit empty list matches no
// documents.
type queryRequest struct {
	Query   string   `json:"query"`
	Sources []string `json:"sources,omitempty"`
}

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close()

	path, err := s.qa.SaveUpload(header.Filename, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("saving upload: %v", err)})
		return
	}

	result, err := s.qa.Ingest(r.Context(), path, header.Filename)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("ingesting document: %v", err)})
		return
	}

	status := http.StatusCreated
	switch result.Status {
	case pipeline.StatusSkipped:
		status = http.StatusOK
	case pipeline.StatusFailed:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.qa.ListDocuments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("listing documents: %v", err)})
		return
	}
	if docs == nil {
		docs = []registry.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	if err := s.qa.DeleteDocument(r.Context(), source); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("deleting document: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "source": source})
}

func (s *Server) documentOCR(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	asHTML := r.URL.Query().Get("format") == "html"

	content, err := s.qa.DocumentOCR(source, asHTML)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no OCR text for %q", source)})
		return
	}

	if asHTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write([]byte(content))
}

func (s *Server) documentOriginal(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	path := s.qa.OriginalPath(source)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no original file for %q", source)})
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	answer, err := s.qa.Ask(r.Context(), req.Query, req.Sources)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("answering query: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	results, err := s.qa.Search(r.Context(), req.Query, req.Sources)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("searching: %v", err)})
		return
	}

	out := make([]searchResult, 0, len(results))
	for _, res := range results {
		out = append(out, searchResult{
			Score:      res.Score,
			Text:       res.Text,
			Source:     res.Source,
			ChunkIndex: res.ChunkIndex,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// searchResult is the wire form of vectordb.SearchResult.
type searchResult struct {
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
