// Package memory provides an in-memory docstore.Store implementation.
package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/reconciliation-engine/docstore"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// collection keeps documents plus their insertion order, so Query and List
// honor the ordering contract of docstore.Store.
type collection struct {
	docs  map[string]docstore.Document
	order []string
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Get(_ context.Context, coll, id string) (docstore.Document, error) {
	if err := check(coll, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, &docstore.NotFoundError{Collection: coll, ID: id}
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, &docstore.NotFoundError{Collection: coll, ID: id}
	}
	return cloneDocument(doc), nil
}

func (s *Store) Query(_ context.Context, coll, field string, value any) ([]docstore.Record, error) {
	if coll == "" {
		return nil, docstore.ErrCollectionRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, nil
	}
	var result []docstore.Record
	for _, id := range c.order {
		doc := c.docs[id]
		if v, ok := doc[field]; ok && reflect.DeepEqual(v, value) {
			result = append(result, docstore.Record{ID: id, Data: cloneDocument(doc)})
		}
	}
	return result, nil
}

func (s *Store) Set(_ context.Context, coll, id string, data docstore.Document, merge bool) error {
	if err := check(coll, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(coll, id, data, merge)
	return nil
}

func (s *Store) Update(_ context.Context, coll, id string, partial docstore.Document) error {
	if err := check(coll, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return &docstore.NotFoundError{Collection: coll, ID: id}
	}
	doc, ok := c.docs[id]
	if !ok {
		return &docstore.NotFoundError{Collection: coll, ID: id}
	}
	for k, v := range cloneDocument(partial) {
		doc[k] = v
	}
	return nil
}

func (s *Store) Delete(_ context.Context, coll, id string) error {
	if err := check(coll, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Add(_ context.Context, coll string, data docstore.Document) (string, error) {
	if coll == "" {
		return "", docstore.ErrCollectionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.setLocked(coll, id, data, false)
	return id, nil
}

func (s *Store) List(_ context.Context, coll string) ([]docstore.Record, error) {
	if coll == "" {
		return nil, docstore.ErrCollectionRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, nil
	}
	result := make([]docstore.Record, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, docstore.Record{ID: id, Data: cloneDocument(c.docs[id])})
	}
	return result, nil
}

func (s *Store) setLocked(coll, id string, data docstore.Document, merge bool) {
	c, ok := s.collections[coll]
	if !ok {
		c = &collection{docs: make(map[string]docstore.Document)}
		s.collections[coll] = c
	}
	existing, exists := c.docs[id]
	if merge && exists {
		for k, v := range cloneDocument(data) {
			existing[k] = v
		}
		return
	}
	c.docs[id] = cloneDocument(data)
	if !exists {
		c.order = append(c.order, id)
	}
}

func check(coll, id string) error {
	if coll == "" {
		return docstore.ErrCollectionRequired
	}
	if id == "" {
		return docstore.ErrIDRequired
	}
	return nil
}

// cloneDocument deep-copies maps and slices so callers never alias stored state.
func cloneDocument(doc docstore.Document) docstore.Document {
	if doc == nil {
		return nil
	}
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneDocument(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore struct {
	*Store
	txMu sync.Mutex
}

func NewTx() *TxStore {
	return &TxStore{Store: New()}
}

// WithTx executes fn against the store, restoring a snapshot on error.
// The store lock is NOT held across fn; single-writer semantics are
// provided by a dedicated transaction mutex instead, so fn can call
// the normal Store methods.
func (ts *TxStore) WithTx(ctx context.Context, fn func(docstore.Store) error) error {
	ts.txMu.Lock()
	defer ts.txMu.Unlock()

	snapshot := ts.snapshot()
	if err := fn(ts.Store); err != nil {
		ts.restore(snapshot)
		return err
	}
	return nil
}

var _ docstore.TxStore = (*TxStore)(nil)

func (ts *TxStore) snapshot() map[string]*collection {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	snap := make(map[string]*collection, len(ts.collections))
	for name, c := range ts.collections {
		docs := make(map[string]docstore.Document, len(c.docs))
		for id, doc := range c.docs {
			docs[id] = cloneDocument(doc)
		}
		snap[name] = &collection{docs: docs, order: append([]string(nil), c.order...)}
	}
	return snap
}

func (ts *TxStore) restore(snap map[string]*collection) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.collections = snap
}
