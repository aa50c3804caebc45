// Package registry tracks ingested documents in a small SQLite database.
// The vector store remains the source of truth for chunks; the registry is
// the fast path for the ingestion dedup gate and the audit trail behind the
// document list.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Document is one registry row.
type Document struct {
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Statuses recorded for a document.
const (
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Registry wraps the SQLite connection.
type Registry struct {
	db *sql.DB
}

// Open creates or opens the registry database at the given path.
func Open(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging registry: %w", err)
	}

	r := &Registry{db: sqlDB}
	if err := r.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return r, nil
}

// OpenMemory creates an in-memory registry (useful for testing).
func OpenMemory() (*Registry, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory registry: %w", err)
	}

	r := &Registry{db: sqlDB}
	if err := r.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return r, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	source TEXT PRIMARY KEY,
	status TEXT NOT NULL CHECK(status IN ('complete', 'failed')),
	chunk_count INTEGER NOT NULL DEFAULT 0,
	ingested_at DATETIME NOT NULL
);
`

func (r *Registry) migrate() error {
	_, err := r.db.Exec(schema)
	return err
}

// Record inserts or replaces the row for a source.
func (r *Registry) Record(ctx context.Context, doc Document) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (source, status, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			status = excluded.status,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at`,
		doc.Source, doc.Status, doc.ChunkCount, doc.IngestedAt)
	if err != nil {
		return fmt.Errorf("recording document %q: %w", doc.Source, err)
	}
	return nil
}

// HasComplete reports whether the source was already ingested successfully.
func (r *Registry) HasComplete(ctx context.Context, source string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE source = ? AND status = ?`,
		source, StatusComplete).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document %q: %w", source, err)
	}
	return count > 0, nil
}

// List returns all completed documents, most recently ingested first.
func (r *Registry) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source, status, chunk_count, ingested_at
		FROM documents
		WHERE status = ?
		ORDER BY ingested_at DESC, source`, StatusComplete)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Source, &d.Status, &d.ChunkCount, &d.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Delete removes the row for a source. Deleting an unknown source is a no-op.
func (r *Registry) Delete(ctx context.Context, source string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source); err != nil {
		return fmt.Errorf("deleting document %q: %w", source, err)
	}
	return nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}
