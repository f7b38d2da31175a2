// Package repository provides the generic per-collection CRUD layer every
// record type shares. It stamps audit timestamps with its own clock and
// degrades read failures to empty results; writes surface store errors
// because callers must know a write did not happen.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vb-entreprise/rrsa-server/internal/docstore"
)

// Reserved envelope keys that callers may never set themselves.
var reservedKeys = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"updatedAt": {},
}

// Record wraps a stored value of type T with its envelope. ID is immutable
// after creation and UpdatedAt never precedes CreatedAt.
type Record[T any] struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Data      T         `json:"data"`
}

// Repository is a typed view over one collection of the document store.
type Repository[T any] struct {
	store      docstore.Store
	collection string
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs a Repository bound to a collection.
func New[T any](store docstore.Store, collection string, logger *slog.Logger) *Repository[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository[T]{
		store:      store,
		collection: collection,
		logger:     logger,
		now:        time.Now,
	}
}

// Create stores a new record, stamping both timestamps with the
// repository clock, and returns the assigned id.
func (r *Repository[T]) Create(ctx context.Context, data T) (string, error) {
	fields, err := encode(data)
	if err != nil {
		return "", fmt.Errorf("repository %s: encode: %w", r.collection, err)
	}
	id, err := r.store.Insert(ctx, r.collection, fields, r.now())
	if err != nil {
		return "", fmt.Errorf("repository %s: create: %w", r.collection, err)
	}
	return id, nil
}

// GetAll returns every record in the collection, newest first. An
// unreachable store yields an empty result; list surfaces degrade to
// "no data" instead of failing.
func (r *Repository[T]) GetAll(ctx context.Context) []Record[T] {
	docs, err := r.store.List(ctx, r.collection)
	if err != nil {
		r.logger.Warn("list degraded to empty",
			slog.String("collection", r.collection),
			slog.Any("error", err))
		return nil
	}
	return r.decodeAll(docs)
}

// GetByField returns records whose field equals value, newest first, with
// the same degradation rule as GetAll.
func (r *Repository[T]) GetByField(ctx context.Context, field, value string) []Record[T] {
	docs, err := r.store.FindByField(ctx, r.collection, field, value)
	if err != nil {
		r.logger.Warn("query degraded to empty",
			slog.String("collection", r.collection),
			slog.String("field", field),
			slog.Any("error", err))
		return nil
	}
	return r.decodeAll(docs)
}

// Get fetches a single record by id. Unlike the list paths this surfaces
// errors, docstore.ErrNotFound included, since callers acting on one
// record need to distinguish the outcomes.
func (r *Repository[T]) Get(ctx context.Context, id string) (Record[T], error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return Record[T]{}, fmt.Errorf("repository %s: get: %w", r.collection, err)
	}
	rec, err := decode[T](doc)
	if err != nil {
		return Record[T]{}, fmt.Errorf("repository %s: decode %s: %w", r.collection, id, err)
	}
	return rec, nil
}

// Update merge-writes the given fields and bumps the update timestamp.
// The envelope keys id/createdAt/updatedAt are stripped from the patch;
// only the repository clock may touch them. An empty patch still bumps
// the update timestamp.
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields))
	for key, value := range fields {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		patch[key] = value
	}
	if err := r.store.Merge(ctx, r.collection, id, patch, r.now()); err != nil {
		return fmt.Errorf("repository %s: update: %w", r.collection, err)
	}
	return nil
}

// Delete removes the record permanently.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		return fmt.Errorf("repository %s: delete: %w", r.collection, err)
	}
	return nil
}

func (r *Repository[T]) decodeAll(docs []docstore.Document) []Record[T] {
	records := make([]Record[T], 0, len(docs))
	for _, doc := range docs {
		rec, err := decode[T](doc)
		if err != nil {
			// Legacy or foreign-shaped documents are skipped, not fatal.
			r.logger.Warn("skipping undecodable document",
				slog.String("collection", r.collection),
				slog.String("id", doc.ID),
				slog.Any("error", err))
			continue
		}
		records = append(records, rec)
	}
	return records
}

func encode(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for key := range reservedKeys {
		delete(fields, key)
	}
	return fields, nil
}

func decode[T any](doc docstore.Document) (Record[T], error) {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return Record[T]{}, err
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return Record[T]{}, err
	}
	return Record[T]{
		ID:        doc.ID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
		Data:      data,
	}, nil
}
