package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It is the default
// backend for development and the standard choice in tests. Expired
// documents are dropped lazily on Get and in bulk by Cleanup.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

// Get retrieves a document by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if doc.IsExpired() {
		s.mu.Lock()
		delete(s.docs, id)
		s.mu.Unlock()
		return nil, ErrExpired
	}

	// Copy so callers cannot mutate the stored document.
	out := *doc
	return &out, nil
}

// Put stores a copy of doc.
func (s *MemoryStore) Put(ctx context.Context, doc *Document) error {
	stored := *doc
	s.mu.Lock()
	s.docs[stored.ID] = &stored
	s.mu.Unlock()
	return nil
}

// Delete removes a document.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.docs, id)
	s.mu.Unlock()
	return nil
}

// List returns all unexpired documents, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.IsExpired() {
			continue
		}
		copied := *doc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Cleanup removes expired documents.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	now := time.Now()
	s.mu.Lock()
	for id, doc := range s.docs {
		if now.After(doc.ExpiresAt) {
			delete(s.docs, id)
		}
	}
	s.mu.Unlock()
	return nil
}

// Close drops all documents.
func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	s.docs = make(map[string]*Document)
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
