package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_fetched_at ON pages(fetched_at);
	`
	_, err := db.Exec(schema)
	return err
}

// GetPage returns a cached page by URL.
func (s *SQLiteStorage) GetPage(ctx context.Context, url string) (*Page, error) {
	var page Page
	err := s.db.QueryRowContext(ctx,
		`SELECT url, body, fetched_at FROM pages WHERE url = ?`, url,
	).Scan(&page.URL, &page.Body, &page.FetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, url)
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// PutPage inserts or replaces a page. A zero FetchedAt is set to now.
func (s *SQLiteStorage) PutPage(ctx context.Context, page *Page) error {
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		page.URL, page.Body, page.FetchedAt,
	)
	return err
}

// DeletePage removes a page by URL.
func (s *SQLiteStorage) DeletePage(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE url = ?`, url)
	return err
}

// PurgeBefore removes pages fetched before t.
func (s *SQLiteStorage) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE fetched_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountPages returns the total number of cached pages.
func (s *SQLiteStorage) CountPages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
