package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/matchbox/pkg/metrics"
)

// Default in-memory store configuration constants.
const (
	defaultShardCount = 8
)

// shard is one lock-protected segment of a collection.
type shard struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// collection spreads documents over shards keyed by FNV-1a of the id.
type collection struct {
	shards []*shard
}

func newCollection(shardCount int) *collection {
	c := &collection{shards: make([]*shard, shardCount)}
	for i := range c.shards {
		c.shards[i] = &shard{docs: make(map[string][]byte)}
	}
	return c
}

func (c *collection) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return c.shards[int(h.Sum32())%len(c.shards)]
}

// MemStore is a sharded in-memory Store implementation. It is the default
// backend and the reference for Store semantics.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
	shardCount  int
	closed      bool
}

// NewMemStore creates an in-memory document store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		collections: make(map[string]*collection),
		shardCount:  defaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) collectionFor(name string, create bool) (*collection, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	c, ok := s.collections[name]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}
	if !create {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if c, ok = s.collections[name]; ok {
		return c, nil
	}
	c = newCollection(s.shardCount)
	s.collections[name] = c
	return c, nil
}

// Get returns the document stored under (collection, id).
func (s *MemStore) Get(ctx context.Context, collectionName, id string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreReadLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.collectionFor(collectionName, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collectionName, id)
	}
	sh := c.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	doc, ok := sh.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collectionName, id)
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

// Put stores doc under (collection, id), overwriting any previous value.
func (s *MemStore) Put(ctx context.Context, collectionName, id string, doc []byte) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := s.collectionFor(collectionName, true)
	if err != nil {
		return err
	}
	stored := make([]byte, len(doc))
	copy(stored, doc)
	sh := c.shardFor(id)
	sh.mu.Lock()
	sh.docs[id] = stored
	sh.mu.Unlock()
	return nil
}

// Delete removes the document under (collection, id).
func (s *MemStore) Delete(ctx context.Context, collectionName, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := s.collectionFor(collectionName, false)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collectionName, id)
	}
	sh := c.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collectionName, id)
	}
	delete(sh.docs, id)
	return nil
}

// List returns every document in a collection.
func (s *MemStore) List(ctx context.Context, collectionName string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.collectionFor(collectionName, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	var out [][]byte
	for _, sh := range c.shards {
		sh.mu.RLock()
		for _, doc := range sh.docs {
			cp := make([]byte, len(doc))
			copy(cp, doc)
			out = append(out, cp)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// QueryByField returns documents whose top-level JSON field equals value.
// Values are compared through their canonical string rendering so numeric
// JSON types match their Go counterparts.
func (s *MemStore) QueryByField(ctx context.Context, collectionName, field string, value any) ([][]byte, error) {
	docs, err := s.List(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	want := fmt.Sprint(value)
	var out [][]byte
	for _, doc := range docs {
		var fields map[string]any
		if err := json.Unmarshal(doc, &fields); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if got, ok := fields[field]; ok && fmt.Sprint(got) == want {
			out = append(out, doc)
		}
	}
	return out, nil
}

// BatchWrite stores all docs under a single collection lock pass.
func (s *MemStore) BatchWrite(ctx context.Context, collectionName string, docs map[string][]byte) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := s.collectionFor(collectionName, true)
	if err != nil {
		return err
	}
	// Group by shard so each shard is locked once.
	grouped := make(map[*shard]map[string][]byte)
	for id, doc := range docs {
		sh := c.shardFor(id)
		if grouped[sh] == nil {
			grouped[sh] = make(map[string][]byte)
		}
		stored := make([]byte, len(doc))
		copy(stored, doc)
		grouped[sh][id] = stored
	}
	for sh, batch := range grouped {
		sh.mu.Lock()
		for id, doc := range batch {
			sh.docs[id] = doc
		}
		sh.mu.Unlock()
	}
	return nil
}

// Close marks the store closed. Subsequent writes fail with ErrClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
