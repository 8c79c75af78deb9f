// Package source tracks knowledge-base data sources (uploaded documents
// and fetched URLs) in SQLite: their ingestion status and the chunk
// counts needed to delete them from the index later.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Source types.
const (
	TypeDocument = "document"
	TypeURL      = "url"
)

// Ingestion statuses. A source is created as processing and transitions
// exactly once to ready or error.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// ErrNotFound reports a lookup for a source id that does not exist.
var ErrNotFound = errors.New("data source not found")

// Source is one registered knowledge-base input.
type Source struct {
	ID           string
	Type         string
	Name         string
	Status       string
	Category     string
	URL          string
	FileType     string
	FileSize     int64
	ChunkCount   int
	ErrorMessage string
	CreatedAt    time.Time
}

// Store is the SQLite-backed registry.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the registry database at path and ensures
// the schema exists.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS data_sources (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL CHECK (type IN ('document', 'url')),
		name TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('processing', 'ready', 'error')),
		category TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		file_type TEXT NOT NULL DEFAULT '',
		file_size INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new source. A zero CreatedAt is set to now; an empty
// Status defaults to processing.
func (s *Store) Create(ctx context.Context, src *Source) error {
	if src.Status == "" {
		src.Status = StatusProcessing
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO data_sources (id, type, name, status, category, url, file_type, file_size, chunk_count, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.Type, src.Name, src.Status, src.Category, src.URL, src.FileType,
		src.FileSize, src.ChunkCount, src.ErrorMessage, src.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert data source: %w", err)
	}
	return nil
}

// SetReady marks a source as fully ingested and records its chunk count,
// which later deletion uses to reconstruct chunk ids.
func (s *Store) SetReady(ctx context.Context, id string, chunkCount int) error {
	return s.updateStatus(ctx, id, StatusReady, chunkCount, "")
}

// SetError marks a source as failed with the given message.
func (s *Store) SetError(ctx context.Context, id, message string) error {
	return s.updateStatus(ctx, id, StatusError, 0, message)
}

func (s *Store) updateStatus(ctx context.Context, id, status string, chunkCount int, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE data_sources SET status = ?, chunk_count = ?, error_message = ? WHERE id = ?`,
		status, chunkCount, message, id,
	)
	if err != nil {
		return fmt.Errorf("update data source %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a source by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, name, status, category, url, file_type, file_size, chunk_count, error_message, created_at
		FROM data_sources WHERE id = ?`, id)

	var src Source
	err := row.Scan(&src.ID, &src.Type, &src.Name, &src.Status, &src.Category, &src.URL,
		&src.FileType, &src.FileSize, &src.ChunkCount, &src.ErrorMessage, &src.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query data source %s: %w", id, err)
	}
	return &src, nil
}

// List returns all sources, newest first.
func (s *Store) List(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, name, status, category, url, file_type, file_size, chunk_count, error_message, created_at
		FROM data_sources ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Type, &src.Name, &src.Status, &src.Category, &src.URL,
			&src.FileType, &src.FileSize, &src.ChunkCount, &src.ErrorMessage, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan data source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Delete removes a source row. Removing its chunks from the index is the
// ingestion pipeline's job.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM data_sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete data source %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns how many sources sit in each status, for the
// status tool.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM data_sources GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count data sources: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
