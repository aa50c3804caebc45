package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hdtinh57/smartdocqa/internal/config"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestMistralEngineImage(t *testing.T) {
	var got mistralOCRRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{"pages":[{"markdown":"# Page one"},{"markdown":"Page two text"}]}`))
	}))
	defer srv.Close()

	engine := NewMistralEngine("test-key", "mistral-ocr-latest")
	engine.baseURL = srv.URL

	path := writeTempFile(t, "scan.png", []byte("fake-png-bytes"))
	text, err := engine.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	if text != "# Page one\n\nPage two text" {
		t.Errorf("joined page text: %q", text)
	}
	if got.Document.Type != "image_url" {
		t.Errorf("image must be sent as image_url, got %q", got.Document.Type)
	}
	if !strings.HasPrefix(got.Document.ImageURL, "data:image/png;base64,") {
		t.Errorf("image data url prefix: %q", got.Document.ImageURL[:30])
	}
}

func TestMistralEnginePDFUsesDocumentURL(t *testing.T) {
	var got mistralOCRRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"pages":[{"markdown":"pdf content"}]}`))
	}))
	defer srv.Close()

	engine := NewMistralEngine("test-key", "")
	engine.baseURL = srv.URL

	path := writeTempFile(t, "report.pdf", []byte("%PDF-fake"))
	if _, err := engine.ExtractText(context.Background(), path); err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	if got.Document.Type != "document_url" {
		t.Errorf("pdf must be sent as document_url, got %q", got.Document.Type)
	}
	if !strings.HasPrefix(got.Document.DocumentURL, "data:application/pdf;base64,") {
		t.Error("pdf data url must carry the pdf mime type")
	}
}

func TestMistralEngineMissingKey(t *testing.T) {
	engine := NewMistralEngine("", "")
	path := writeTempFile(t, "scan.png", []byte("x"))
	if _, err := engine.ExtractText(context.Background(), path); err == nil {
		t.Error("expected an error without an api key")
	}
}

func TestOllamaVisionEngineRejectsPDF(t *testing.T) {
	engine := NewOllamaVisionEngine("", "")
	if _, err := engine.ExtractText(context.Background(), "doc.pdf"); err == nil {
		t.Error("local engine must refuse pdf input")
	}
}

func TestOllamaVisionEngineExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaVisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Images) != 1 {
			t.Error("expected a single message with one embedded image")
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":"  recognized text  "}}`))
	}))
	defer srv.Close()

	engine := NewOllamaVisionEngine(srv.URL, "qwen2.5vl")
	path := writeTempFile(t, "photo.jpg", []byte("fake-jpg"))

	text, err := engine.ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "recognized text" {
		t.Errorf("expected trimmed text, got %q", text)
	}
}

func localOCRConfig(host string) config.OCRConfig {
	return config.OCRConfig{
		Mode:        config.OCRLocal,
		Model:       "mistral-ocr-latest",
		VisionModel: "qwen2.5vl",
		OllamaHost:  host,
	}
}

func TestNewEngineFallsBackToRemote(t *testing.T) {
	// No Ollama on port 1: local mode must silently hand back the remote
	// engine.
	engine := NewEngine(context.Background(), localOCRConfig("http://localhost:1"), "key")
	if _, ok := engine.(*MistralEngine); !ok {
		t.Errorf("expected fallback to MistralEngine, got %T", engine)
	}
}

func TestNewEngineKeepsLocalWhenReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	engine := NewEngine(context.Background(), localOCRConfig(srv.URL), "key")
	if _, ok := engine.(*OllamaVisionEngine); !ok {
		t.Errorf("expected local engine, got %T", engine)
	}
}
