package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndReadOCRText(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.SaveOCRText("invoice.png", "# Invoice\n\nTotal: 42"); err != nil {
		t.Fatalf("SaveOCRText: %v", err)
	}

	text, err := s.ReadOCRText("invoice.png")
	if err != nil {
		t.Fatalf("ReadOCRText: %v", err)
	}
	if text != "# Invoice\n\nTotal: 42" {
		t.Fatalf("unexpected OCR text: %q", text)
	}
}

func TestSaveOriginal(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	path, err := s.SaveOriginal("report.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if path != filepath.Join(dir, "uploaded_docs", "report.pdf") {
		t.Fatalf("unexpected saved path: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved original: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Fatalf("unexpected file contents: %q", data)
	}
}

func TestSaveOriginalStripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	path, err := s.SaveOriginal("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if path != filepath.Join(dir, "uploaded_docs", "passwd") {
		t.Fatalf("path traversal not stripped: %s", path)
	}
}

func TestRenderOCRHTML(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.SaveOCRText("notes.png", "# Heading\n\nSome **bold** text."); err != nil {
		t.Fatalf("SaveOCRText: %v", err)
	}

	html, err := s.RenderOCRHTML("notes.png")
	if err != nil {
		t.Fatalf("RenderOCRHTML: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Fatalf("unexpected HTML output: %s", html)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, err := s.SaveOriginal("doc.png", strings.NewReader("img")); err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if err := s.SaveOCRText("doc.png", "text"); err != nil {
		t.Fatalf("SaveOCRText: %v", err)
	}

	s.Remove("doc.png")
	if _, err := os.Stat(s.OriginalPath("doc.png")); !os.IsNotExist(err) {
		t.Fatal("original not removed")
	}
	if _, err := s.ReadOCRText("doc.png"); err == nil {
		t.Fatal("OCR text not removed")
	}

	// A second removal of missing files must not panic or error.
	s.Remove("doc.png")
}
