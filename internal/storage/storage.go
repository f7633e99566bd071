// Package storage defines the persistence interface for fetched documentation pages.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrPageNotFound is returned when a page is not cached.
var ErrPageNotFound = errors.New("page not found")

// Page is a cached document body keyed by the URL it was fetched from.
type Page struct {
	URL       string
	Body      string
	FetchedAt time.Time
}

// Storage defines page cache operations.
type Storage interface {
	GetPage(ctx context.Context, url string) (*Page, error)
	PutPage(ctx context.Context, page *Page) error
	DeletePage(ctx context.Context, url string) error
	// PurgeBefore removes pages fetched before t and returns how many were removed.
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)

	// Stats
	CountPages(ctx context.Context) (int64, error)

	Close() error
}
