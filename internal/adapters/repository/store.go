// Package repository defines the document store abstraction used for
// persisting weight profiles and match edges, plus its implementations.
package repository

import "context"

// Collections used by the matching engine.
const (
	CollectionProfiles = "weight_profiles"
	CollectionMatches  = "matches"
)

// Store provides generic key/document access. Documents are opaque JSON
// payloads; QueryByField inspects top-level fields of the stored JSON.
type Store interface {
	// Get returns the document stored under (collection, id).
	// Returns ErrNotFound if the document is unknown.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// Put stores doc under (collection, id), overwriting any previous value.
	Put(ctx context.Context, collection, id string, doc []byte) error

	// Delete removes the document. Deleting an unknown id returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	// List returns every document in a collection in unspecified order.
	List(ctx context.Context, collection string) ([][]byte, error)

	// QueryByField returns the documents whose top-level field equals value.
	QueryByField(ctx context.Context, collection, field string, value any) ([][]byte, error)

	// BatchWrite stores all docs in a single batched operation.
	BatchWrite(ctx context.Context, collection string, docs map[string][]byte) error

	// Close releases store resources.
	Close() error
}
