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

const mistralAPIBaseURL = "https://api.mistral.ai/v1"

// MistralEngine extracts text with the Mistral OCR API. Documents are sent
// inline as base64 data URLs; the response is markdown per page.
type MistralEngine struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewMistralEngine creates the remote OCR engine.
func NewMistralEngine(apiKey, model string) *MistralEngine {
	if model == "" {
		model = "mistral-ocr-latest"
	}
	return &MistralEngine{
		apiKey:  apiKey,
		model:   model,
		baseURL: mistralAPIBaseURL,
		client:  &http.Client{},
	}
}

func (e *MistralEngine) Name() string {
	return "mistral/" + e.model
}

type mistralOCRRequest struct {
	Model    string          `json:"model"`
	Document mistralDocument `json:"document"`
}

type mistralDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type mistralOCRResponse struct {
	Pages []struct {
		Markdown string `json:"markdown"`
	} `json:"pages"`
}

func (e *MistralEngine) ExtractText(ctx context.Context, path string) (string, error) {
	if e.apiKey == "" {
		return "", fmt.Errorf("mistral api key is not set")
	}

	dataURL, isPDF, err := encodeDocument(path)
	if err != nil {
		return "", err
	}

	doc := mistralDocument{}
	if isPDF {
		doc.Type = "document_url"
		doc.DocumentURL = dataURL
	} else {
		doc.Type = "image_url"
		doc.ImageURL = dataURL
	}

	body, err := json.Marshal(mistralOCRRequest{Model: e.model, Document: doc})
	if err != nil {
		return "", fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mistral ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("mistral ocr returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp mistralOCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}

	var sb strings.Builder
	for _, page := range apiResp.Pages {
		sb.WriteString(page.Markdown)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// encodeDocument reads the file and returns it as a base64 data URL,
// reporting whether it is a PDF.
func encodeDocument(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("reading document %s: %w", path, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	var mimeType string
	switch ext {
	case "pdf":
		mimeType = "application/pdf"
	case "jpg", "jpeg":
		mimeType = "image/jpeg"
	default:
		mimeType = "image/" + ext
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, encoded), ext == "pdf", nil
}
