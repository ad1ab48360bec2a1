package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
)

// MemoryStore provides an in-process document store.
// Ids are ULIDs, so id order is creation order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Fields // maps collection path to documents by id
	hub         *hub
	closed      bool
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]map[string]Fields),
	}
	s.hub = newHub(s.load, 0)
	return s
}

// Subscribe registers a snapshot listener on a collection
func (s *MemoryStore) Subscribe(collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error) {
	sub, err := s.hub.subscribe(collection, onSnapshot, onError)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Get returns all documents of a collection ordered by id
func (s *MemoryStore) Get(ctx context.Context, collection string) ([]Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	return s.load(ctx, collection)
}

func (s *MemoryStore) load(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	docs := s.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		result = append(result, Document{ID: id, Fields: copyFields(docs[id])})
	}
	return result, nil
}

// Add stores a new document and returns its id
func (s *MemoryStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ValidateCollection(collection); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	id := ulid.Make().String()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Fields)
	}
	s.collections[collection][id] = copyFields(fields)
	s.mu.Unlock()

	s.hub.notify(collection)
	return id, nil
}

// Update merges fields into an existing document
func (s *MemoryStore) Update(ctx context.Context, documentPath string, fields Fields) error {
	collection, id, err := SplitDocumentPath(documentPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	doc, exists := s.collections[collection][id]
	if !exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, documentPath)
	}
	merged := copyFields(doc)
	for k, v := range fields {
		merged[k] = v
	}
	s.collections[collection][id] = merged
	s.mu.Unlock()

	s.hub.notify(collection)
	return nil
}

// Delete removes a document if it exists
func (s *MemoryStore) Delete(ctx context.Context, documentPath string) error {
	collection, id, err := SplitDocumentPath(documentPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	docs := s.collections[collection]
	_, existed := docs[id]
	if existed {
		delete(docs, id)
		if len(docs) == 0 {
			delete(s.collections, collection)
		}
	}
	s.mu.Unlock()

	if existed {
		s.hub.notify(collection)
	}
	return nil
}

// Ping reports whether the store is open
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Subscribers returns the number of open subscriptions
func (s *MemoryStore) Subscribers() int {
	return s.hub.count()
}

// Close cancels all subscriptions and rejects further calls
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.hub.close()
	return nil
}
