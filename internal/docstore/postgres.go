package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a single PostgreSQL table:
//
//	CREATE TABLE documents (
//	    collection  text        NOT NULL,
//	    id          uuid        NOT NULL,
//	    data        jsonb       NOT NULL,
//	    created_at  timestamptz NOT NULL,
//	    updated_at  timestamptz NOT NULL,
//	    PRIMARY KEY (collection, id)
//	);
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL backed document store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Insert stores a new document and returns its assigned id.
func (s *PGStore) Insert(ctx context.Context, collection string, fields map[string]any, now time.Time) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: encode document: %v", ErrRejected, err)
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		collection, id, data, now.UTC())
	if err != nil {
		return "", classify(err)
	}
	return id, nil
}

// Get fetches a single document by id.
func (s *PGStore) Get(ctx context.Context, collection, id string) (Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	doc, err := scanDocument(row)
	if err != nil {
		return Document{}, classify(err)
	}
	return doc, nil
}

// List returns every document in the collection, newest first.
func (s *PGStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 ORDER BY created_at DESC`,
		collection)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// FindByField returns documents whose top-level field equals value.
func (s *PGStore) FindByField(ctx context.Context, collection, field, value string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND data ->> $2 = $3 ORDER BY created_at DESC`,
		collection, field, value)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Merge overwrites the given fields of an existing document.
func (s *PGStore) Merge(ctx context.Context, collection, id string, fields map[string]any, now time.Time) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: encode patch: %v", ErrRejected, err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`,
		collection, id, data, now.UTC())
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document permanently.
func (s *PGStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		doc  Document
		data []byte
	)
	if err := row.Scan(&doc.ID, &data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return Document{}, err
	}
	if err := json.Unmarshal(data, &doc.Fields); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, classify(err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return docs, nil
}

// classify maps driver errors onto the store's sentinel taxonomy: a reply
// from the server is a rejection, anything else means the store could not
// be reached.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", ErrRejected, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

var _ Store = (*PGStore)(nil)
