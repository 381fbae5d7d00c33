// Package config defines process configuration and its loading layers.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers an optional YAML file and environment variables on top.
// - External errors must be wrapped via this package's sentinel errors.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for health and metrics.
	Addr string `koanf:"addr"`

	// Concurrency bounds the batch worker pool.
	Concurrency int `koanf:"concurrency"`

	// BatchSize sets how many matches accumulate before a batched write.
	BatchSize int `koanf:"batch_size"`

	// CacheTTLSeconds bounds the lifetime of cached match results.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheShards configures the number of match cache shards.
	CacheShards int `koanf:"cache_shards"`

	// StorePath points Badger at a data directory. Empty selects the
	// in-memory store.
	StorePath string `koanf:"store_path"`

	// StoreShards configures the in-memory store's shard count.
	StoreShards int `koanf:"store_shards"`

	// NumericFields lists the actor numeric fields compared with
	// z-normalized proximity.
	NumericFields []string `koanf:"numeric_fields"`

	// DateField names the actor date field used for date proximity.
	DateField string `koanf:"date_field"`

	// DateHorizonDays sets the decay horizon for date proximity.
	DateHorizonDays float64 `koanf:"date_horizon_days"`

	// ReasonCount caps how many top contributions become reason strings.
	ReasonCount int `koanf:"reason_count"`

	// CorpusPath optionally points at a JSON file of actors loaded at boot.
	CorpusPath string `koanf:"corpus_path"`

	// ScansPath optionally points at a JSON file of badge scans loaded at
	// boot.
	ScansPath string `koanf:"scans_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		Concurrency:     runtime.NumCPU(),
		BatchSize:       200,
		CacheTTLSeconds: 300,
		CacheShards:     16,
		StoreShards:     8,
		NumericFields:   []string{"team_size", "funding"},
		DateField:       "founded",
		DateHorizonDays: 365,
		ReasonCount:     3,
	}
}
