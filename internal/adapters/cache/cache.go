// Package cache defines the match result cache contract. The cache is a
// pure performance layer: correctness never depends on it, and failures
// degrade to misses.
package cache

import (
	"context"

	"github.com/okian/matchbox/internal/domain/model"
)

// Cache stores computed matches keyed by (actor A, actor B, profile id).
// Keys must be built with model.EdgeID so changing weight profiles never
// serves stale cross-profile results.
type Cache interface {
	// Get returns the cached match for key and whether it was present
	// and unexpired.
	Get(ctx context.Context, key string) (model.Match, bool)

	// Set stores a match under key, replacing any previous entry.
	Set(ctx context.Context, key string, m model.Match)

	// Clear flushes every entry.
	Clear(ctx context.Context)

	// Len returns the number of live entries.
	Len(ctx context.Context) int
}
