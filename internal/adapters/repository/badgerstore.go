package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/okian/matchbox/pkg/metrics"
)

// BadgerStore persists documents in an embedded Badger database. Keys are
// namespaced as collection/id so collections share one keyspace.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func storeKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte(collection + "/")
}

// Get returns the document stored under (collection, id).
func (s *BadgerStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreReadLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(collection, id))
		if err != nil {
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return doc, nil
}

// Put stores doc under (collection, id).
func (s *BadgerStore) Put(ctx context.Context, collection, id string, doc []byte) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(collection, id), doc)
	})
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

// Delete removes the document under (collection, id).
func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		key := storeKey(collection, id)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// List returns every document in a collection.
func (s *BadgerStore) List(ctx context.Context, collection string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionPrefix(collection)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			doc, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, doc)
		}
		return nil
	})
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("badger list: %w", err)
	}
	return out, nil
}

// QueryByField returns documents whose top-level JSON field equals value.
func (s *BadgerStore) QueryByField(ctx context.Context, collection, field string, value any) ([][]byte, error) {
	docs, err := s.List(ctx, collection)
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

// BatchWrite stores all docs through Badger's write batch.
func (s *BadgerStore) BatchWrite(ctx context.Context, collection string, docs map[string][]byte) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for id, doc := range docs {
		if err := wb.Set(storeKey(collection, id), doc); err != nil {
			metrics.RecordStoreError()
			return fmt.Errorf("badger batch set: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("badger batch flush: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
