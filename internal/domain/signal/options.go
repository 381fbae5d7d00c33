package signal

import "github.com/okian/matchbox/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithNumericFields sets the numeric fields the engine normalizes.
func WithNumericFields(fields []string) Option {
	return func(e *Engine) {
		if len(fields) > 0 {
			e.numericFields = fields
		}
	}
}

// WithDateField sets the date field compared by the date-proximity signal.
func WithDateField(field string) Option {
	return func(e *Engine) {
		if field != "" {
			e.dateField = field
		}
	}
}

// WithDateHorizonDays sets the decay horizon for date proximity.
func WithDateHorizonDays(days float64) Option {
	return func(e *Engine) {
		if days > 0 {
			e.dateHorizon = days
		}
	}
}

// WithTemperature sets the default temperature for z-score similarity.
func WithTemperature(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.temperature = t
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
