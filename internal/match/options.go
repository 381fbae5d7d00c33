package match

import (
	"time"

	"github.com/okian/matchbox/internal/adapters/cache"
	"github.com/okian/matchbox/internal/adapters/repository"
	"github.com/okian/matchbox/pkg/logger"
)

// Option configures the match engine.
type Option func(*Engine)

// WithCache installs a match result cache. Without one the engine
// computes every request from scratch.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithStore installs the document store used to persist batch results.
func WithStore(s repository.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithConcurrency bounds the batch worker pool.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithBatchSize sets how many matches accumulate before a batched write.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithReasonCount sets how many top contributions become reason strings.
func WithReasonCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.reasonCount = n
		}
	}
}

// WithLogger sets the logger used by the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
