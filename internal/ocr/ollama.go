package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const visionPrompt = "Extract all text, tables, and contents from this image in markdown format."

// OllamaVisionEngine extracts text with a vision model served by a local
// Ollama instance. PDFs are out of its reach; they are handled by the
// native text-layer fast path or the remote engine.
type OllamaVisionEngine struct {
	host   string
	model  string
	client *http.Client
}

// NewOllamaVisionEngine creates the local OCR engine.
// host defaults to http://localhost:11434 if empty.
func NewOllamaVisionEngine(host, model string) *OllamaVisionEngine {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "qwen2.5vl"
	}
	return &OllamaVisionEngine{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

func (e *OllamaVisionEngine) Name() string {
	return "ollama/" + e.model
}

// ping checks that the Ollama server answers at all.
func (e *OllamaVisionEngine) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.host+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

type ollamaVisionRequest struct {
	Model    string                `json:"model"`
	Messages []ollamaVisionMessage `json:"messages"`
	Stream   bool                  `json:"stream"`
}

type ollamaVisionMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaVisionResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func (e *OllamaVisionEngine) ExtractText(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", fmt.Errorf("local ocr engine cannot process pdf files")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}

	body, err := json.Marshal(ollamaVisionRequest{
		Model: e.model,
		Messages: []ollamaVisionMessage{{
			Role:    "user",
			Content: visionPrompt,
			Images:  []string{base64.StdEncoding.EncodeToString(data)},
		}},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama vision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama vision returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp ollamaVisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode vision response: %w", err)
	}

	return strings.TrimSpace(apiResp.Message.Content), nil
}
