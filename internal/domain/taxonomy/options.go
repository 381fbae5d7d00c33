package taxonomy

import "github.com/okian/matchbox/pkg/logger"

// Option configures the analyzer.
type Option func(*Analyzer)

// WithMinEdgeWeight drops graph edges whose co-occurrence count is below
// the given weight. Values below 1 are ignored.
func WithMinEdgeWeight(w int) Option {
	return func(a *Analyzer) {
		if w >= 1 {
			a.minEdgeWeight = w
		}
	}
}

// WithLogger sets the logger used by the analyzer.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}
