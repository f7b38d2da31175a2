package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// SetFailure switches every operation to return the given error, which is
// how outage behavior is exercised.
type MemoryStore struct {
	mu      sync.Mutex
	seq     int
	data    map[string]map[string]memoryDoc
	failure error
}

type memoryDoc struct {
	doc Document
	seq int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]memoryDoc)}
}

// SetFailure makes every subsequent call fail with err. Pass nil to heal.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Insert stores a new document and returns its assigned id.
func (s *MemoryStore) Insert(ctx context.Context, collection string, fields map[string]any, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return "", s.failure
	}
	id := uuid.NewString()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]memoryDoc)
	}
	s.seq++
	s.data[collection][id] = memoryDoc{
		doc: Document{
			ID:        id,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
			Fields:    cloneFields(fields),
		},
		seq: s.seq,
	}
	return id, nil
}

// Get fetches a single document by id.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return Document{}, s.failure
	}
	entry, ok := s.data[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(entry.doc), nil
}

// List returns every document in the collection, newest first.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.find(collection, func(Document) bool { return true })
}

// FindByField returns documents whose top-level field equals value.
func (s *MemoryStore) FindByField(ctx context.Context, collection, field, value string) ([]Document, error) {
	return s.find(collection, func(doc Document) bool {
		raw, ok := doc.Fields[field]
		if !ok {
			return false
		}
		return fmt.Sprintf("%v", raw) == value
	})
}

// Merge overwrites the given fields of an existing document.
func (s *MemoryStore) Merge(ctx context.Context, collection, id string, fields map[string]any, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	entry, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range cloneFields(fields) {
		entry.doc.Fields[key] = value
	}
	entry.doc.UpdatedAt = now.UTC()
	s.data[collection][id] = entry
	return nil
}

// Delete removes a document permanently.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func (s *MemoryStore) find(collection string, match func(Document) bool) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return nil, s.failure
	}
	var entries []memoryDoc
	for _, entry := range s.data[collection] {
		if match(entry.doc) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].doc.CreatedAt.Equal(entries[j].doc.CreatedAt) {
			return entries[i].doc.CreatedAt.After(entries[j].doc.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, cloneDocument(entry.doc))
	}
	return docs, nil
}

// cloneFields round-trips through JSON so stored documents share no
// structure with caller maps, matching the wire behavior of the real store.
func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func cloneDocument(doc Document) Document {
	doc.Fields = cloneFields(doc.Fields)
	return doc
}

var _ Store = (*MemoryStore)(nil)
