// Package docstore abstracts the document database the application keeps
// its records in: JSON documents grouped into named collections, addressed
// by id, with simple equality queries. Implementations classify their
// failures into the three sentinel errors below so callers can decide
// whether to degrade or to surface.
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("docstore: not found")
	// ErrUnavailable indicates the store could not be reached. Read paths
	// treat this as "no data"; write paths surface it.
	ErrUnavailable = errors.New("docstore: unavailable")
	// ErrRejected indicates the store refused a write it received.
	ErrRejected = errors.New("docstore: rejected")
)

// Document is a stored record envelope. Timestamps are supplied by the
// repository layer, never by callers.
type Document struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    map[string]any
}

// Store is the document database port.
type Store interface {
	// Insert stores a new document and returns its assigned id.
	Insert(ctx context.Context, collection string, fields map[string]any, now time.Time) (string, error)
	// Get fetches a single document by id.
	Get(ctx context.Context, collection, id string) (Document, error)
	// List returns every document in the collection, newest first.
	List(ctx context.Context, collection string) ([]Document, error)
	// FindByField returns documents whose top-level field equals value,
	// newest first.
	FindByField(ctx context.Context, collection, field, value string) ([]Document, error)
	// Merge overwrites the given fields of an existing document, leaving
	// the rest intact, and bumps the update timestamp.
	Merge(ctx context.Context, collection, id string, fields map[string]any, now time.Time) error
	// Delete removes a document permanently.
	Delete(ctx context.Context, collection, id string) error
}
