// Package artifacts manages the on-disk byproducts of ingestion: the
// uploaded originals and the extracted OCR text, plus an HTML rendering of
// the OCR markdown for the web UI.
package artifacts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Store persists ingestion artifacts under a base data directory.
type Store struct {
	baseDir string
	md      goldmark.Markdown
}

// NewStore creates a store rooted at baseDir. Subdirectories are created
// lazily on first write.
func NewStore(baseDir string) *Store {
	return &Store{
		baseDir: baseDir,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

func (s *Store) uploadsDir() string { return filepath.Join(s.baseDir, "uploaded_docs") }
func (s *Store) ocrDir() string     { return filepath.Join(s.baseDir, "ocr_results") }

// OriginalPath returns the path where the original file for source lives.
func (s *Store) OriginalPath(source string) string {
	return filepath.Join(s.uploadsDir(), filepath.Base(source))
}

func (s *Store) ocrPath(source string) string {
	return filepath.Join(s.ocrDir(), filepath.Base(source)+".txt")
}

// SaveOriginal copies the uploaded document into the store and returns the
// saved path.
func (s *Store) SaveOriginal(source string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadsDir(), 0o755); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	dst := s.OriginalPath(source)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	return dst, nil
}

// SaveOCRText writes the extracted text for a source.
func (s *Store) SaveOCRText(source, text string) error {
	if err := os.MkdirAll(s.ocrDir(), 0o755); err != nil {
		return fmt.Errorf("creating OCR directory: %w", err)
	}
	if err := os.WriteFile(s.ocrPath(source), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing OCR text for %q: %w", source, err)
	}
	return nil
}

// ReadOCRText returns the stored OCR text for a source.
func (s *Store) ReadOCRText(source string) (string, error) {
	data, err := os.ReadFile(s.ocrPath(source))
	if err != nil {
		return "", fmt.Errorf("reading OCR text for %q: %w", source, err)
	}
	return string(data), nil
}

// RenderOCRHTML renders the stored OCR text (markdown) to HTML.
func (s *Store) RenderOCRHTML(source string) (string, error) {
	text, err := s.ReadOCRText(source)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("rendering OCR text for %q: %w", source, err)
	}
	return buf.String(), nil
}

// Remove deletes the artifacts for a source. Missing files are ignored so
// that cleanup after a partial ingestion still succeeds.
func (s *Store) Remove(source string) {
	os.Remove(s.OriginalPath(source))
	os.Remove(s.ocrPath(source))
}
