package weights

import "github.com/okian/matchbox/pkg/logger"

// Option configures the manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithKnownSignals extends the set of signal names accepted without a
// validation warning, e.g. for dynamically derived numeric signals.
func WithKnownSignals(names ...string) Option {
	return func(m *Manager) {
		for _, n := range names {
			m.known[n] = struct{}{}
		}
	}
}
