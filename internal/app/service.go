// Package service wires the matching engine's components together and
// exposes the operations the process surface delegates to.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/matchbox/internal/adapters/cache"
	"github.com/okian/matchbox/internal/adapters/repository"
	"github.com/okian/matchbox/internal/domain/attendee"
	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/internal/domain/signal"
	"github.com/okian/matchbox/internal/domain/taxonomy"
	"github.com/okian/matchbox/internal/match"
	"github.com/okian/matchbox/internal/weights"
	"github.com/okian/matchbox/pkg/logger"
)

// Service owns the corpus snapshot, signal engines, weights manager,
// store, and cache. Engines are rebuilt on every corpus load so the
// one-time statistics barrier never blocks a reload.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	cache    *cache.MemCache
	base     *signal.Engine
	attendee *attendee.Engine
	matcher  *match.Engine
	profiles *weights.Manager
	analyzer *taxonomy.Analyzer

	// Configuration
	concurrency   int
	batchSize     int
	cacheTTL      time.Duration
	cacheShards   int
	storePath     string
	storeShards   int
	numericFields []string
	dateField     string
	dateHorizon   float64
	reasonCount   int

	// State
	started    bool
	corpusSize int
	ownedStore bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConcurrency bounds the batch worker pool.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBatchSize sets the batched-write chunk size.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithCacheTTL bounds the lifetime of cached match results.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheShards configures the match cache shard count.
func WithCacheShards(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheShards = n
		}
	}
}

// WithStorePath selects the Badger data directory. Empty keeps the
// in-memory store.
func WithStorePath(path string) Option {
	return func(s *Service) {
		s.storePath = path
	}
}

// WithStoreShards configures the in-memory store shard count.
func WithStoreShards(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.storeShards = n
		}
	}
}

// WithStore injects a prebuilt store, overriding the path-based choice.
// The caller keeps ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNumericFields sets the actor numeric fields compared by proximity.
func WithNumericFields(fields []string) Option {
	return func(s *Service) {
		if len(fields) > 0 {
			s.numericFields = fields
		}
	}
}

// WithDateField names the actor date field used for date proximity.
func WithDateField(field string) Option {
	return func(s *Service) {
		if field != "" {
			s.dateField = field
		}
	}
}

// WithDateHorizonDays sets the date proximity decay horizon.
func WithDateHorizonDays(days float64) Option {
	return func(s *Service) {
		if days > 0 {
			s.dateHorizon = days
		}
	}
}

// WithReasonCount caps reason strings per match.
func WithReasonCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reasonCount = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		concurrency:   runtime.NumCPU(),
		batchSize:     200,
		cacheTTL:      5 * time.Minute,
		cacheShards:   16,
		storeShards:   8,
		numericFields: []string{"team_size", "funding"},
		dateField:     "founded",
		dateHorizon:   365,
		reasonCount:   3,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the store and cache. Matching operations additionally
// require LoadCorpus to have completed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting matching service...")

	if s.store == nil {
		if s.storePath != "" {
			store, err := repository.NewBadgerStore(s.storePath)
			if err != nil {
				return err
			}
			s.store = store
			s.ownedStore = true
			s.logger.Info(ctx, "using badger store", logger.String("path", s.storePath))
		} else {
			s.store = repository.NewMemStore(repository.WithShardCount(s.storeShards))
			s.ownedStore = true
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	s.cache = cache.NewMemCache(
		cache.WithTTL(s.cacheTTL),
		cache.WithShardCount(s.cacheShards),
	)

	knownNumeric := make([]string, 0, len(s.numericFields))
	for _, f := range s.numericFields {
		knownNumeric = append(knownNumeric, signal.NumericSignalName(f))
	}
	s.profiles = weights.New(s.store,
		weights.WithLogger(s.logger),
		weights.WithKnownSignals(knownNumeric...),
	)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("concurrency", s.concurrency),
		logger.Int("batchSize", s.batchSize),
		logger.Duration("cacheTTL", s.cacheTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matching service...")

	if s.cache != nil {
		s.cache.Stop()
	}
	if s.store != nil && s.ownedStore {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

// LoadCorpus installs a corpus snapshot: engine statistics are computed
// behind the one-time barrier, and the match engine and analyzer are
// rebuilt over the new snapshot. The cache is flushed so no stale edges
// survive the reload.
func (s *Service) LoadCorpus(ctx context.Context, corpus []model.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	base := signal.New(
		signal.WithNumericFields(s.numericFields),
		signal.WithDateField(s.dateField),
		signal.WithDateHorizonDays(s.dateHorizon),
		signal.WithLogger(s.logger),
	)
	if err := base.Initialize(ctx, corpus); err != nil {
		return err
	}

	var att *attendee.Engine
	if s.attendee != nil {
		// Carry the scan index across corpus reloads.
		att = s.attendee.WithBase(base)
	} else {
		att = attendee.New(base, attendee.WithLogger(s.logger))
	}

	s.base = base
	s.attendee = att
	s.matcher = match.New(corpus, base, att, s.profiles,
		match.WithCache(s.cache),
		match.WithStore(s.store),
		match.WithConcurrency(s.concurrency),
		match.WithBatchSize(s.batchSize),
		match.WithReasonCount(s.reasonCount),
		match.WithLogger(s.logger),
	)
	s.analyzer = taxonomy.New(corpus, taxonomy.WithLogger(s.logger))
	s.corpusSize = len(corpus)
	s.cache.Clear(ctx)

	s.logger.Info(ctx, "corpus loaded", logger.Int("actors", len(corpus)))
	return nil
}

// LoadScans indexes badge scans for attendee recency boosts.
func (s *Service) LoadScans(ctx context.Context, scans []model.BadgeScan) error {
	s.mu.RLock()
	att := s.attendee
	s.mu.RUnlock()
	if att == nil {
		return ErrNotReady
	}
	return att.InitializeScans(ctx, scans)
}

func (s *Service) matchEngine() (*match.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.matcher == nil {
		return nil, ErrNotReady
	}
	return s.matcher, nil
}

// CalculateMatch scores a single pair under the named profile.
func (s *Service) CalculateMatch(ctx context.Context, idA, idB, profileID string) (*model.Match, error) {
	m, err := s.matchEngine()
	if err != nil {
		return nil, err
	}
	return m.CalculateByID(ctx, idA, idB, profileID)
}

// FindMatches returns the best matches for one actor.
func (s *Service) FindMatches(ctx context.Context, req match.FindRequest) ([]*model.Match, error) {
	m, err := s.matchEngine()
	if err != nil {
		return nil, err
	}
	return m.Find(ctx, req)
}

// ComputeAllMatches scores every unordered pair in the corpus.
func (s *Service) ComputeAllMatches(ctx context.Context, profileID string) (*model.BatchResult, error) {
	m, err := s.matchEngine()
	if err != nil {
		return nil, err
	}
	return m.ComputeAll(ctx, profileID)
}

// ClearMatchCache flushes cached match results.
func (s *Service) ClearMatchCache(ctx context.Context) {
	if m, err := s.matchEngine(); err == nil {
		m.ClearCache(ctx)
	}
}

func (s *Service) weightsManager() (*weights.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profiles == nil {
		return nil, ErrNotStarted
	}
	return s.profiles, nil
}

// SaveProfile validates and persists a weight profile, returning any
// validation warnings.
func (s *Service) SaveProfile(ctx context.Context, p *model.WeightProfile) ([]string, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, err
	}
	return mgr.Save(ctx, p)
}

// GetProfile returns a stored profile.
func (s *Service) GetProfile(ctx context.Context, id string) (*model.WeightProfile, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, err
	}
	return mgr.Get(ctx, id)
}

// DeleteProfile removes a stored profile.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	mgr, err := s.weightsManager()
	if err != nil {
		return err
	}
	return mgr.Delete(ctx, id)
}

// ListProfiles returns every stored profile.
func (s *Service) ListProfiles(ctx context.Context) ([]*model.WeightProfile, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, err
	}
	return mgr.List(ctx)
}

// PersonaProfile returns the default profile for a persona.
func (s *Service) PersonaProfile(persona string) (*model.WeightProfile, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, err
	}
	return mgr.DefaultForPersona(persona)
}

// GenerateProfileVariants derives and persists A/B siblings of a stored
// profile.
func (s *Service) GenerateProfileVariants(ctx context.Context, baseID string, adjustments map[string]map[string]float64) ([]*model.WeightProfile, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, err
	}
	return mgr.GenerateVariants(ctx, baseID, adjustments)
}

// ExportProfile serializes a stored profile.
func (s *Service) ExportProfile(ctx context.Context, id string) ([]byte, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, err
	}
	return mgr.Export(ctx, id)
}

// ImportProfile persists an exported profile under a fresh identity.
func (s *Service) ImportProfile(ctx context.Context, data []byte) (*model.WeightProfile, []string, error) {
	mgr, err := s.weightsManager()
	if err != nil {
		return nil, nil, err
	}
	return mgr.Import(ctx, data)
}

func (s *Service) taxonomyAnalyzer() (*taxonomy.Analyzer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analyzer == nil {
		return nil, ErrNotReady
	}
	return s.analyzer, nil
}

// CapabilityNeedHeatmap reports capability/need co-occurrence.
func (s *Service) CapabilityNeedHeatmap(filter model.Filter) (taxonomy.Heatmap, error) {
	a, err := s.taxonomyAnalyzer()
	if err != nil {
		return taxonomy.Heatmap{}, err
	}
	return a.CapabilityNeedHeatmap(filter), nil
}

// TagGraph reports the tag co-occurrence network.
func (s *Service) TagGraph(filter model.Filter) (taxonomy.Graph, error) {
	a, err := s.taxonomyAnalyzer()
	if err != nil {
		return taxonomy.Graph{}, err
	}
	return a.TagGraph(filter), nil
}

// Distribution reports one dimension's value histogram.
func (s *Service) Distribution(dim taxonomy.Dimension, filter model.Filter) (taxonomy.Distribution, error) {
	a, err := s.taxonomyAnalyzer()
	if err != nil {
		return taxonomy.Distribution{}, err
	}
	return a.Distribution(dim, filter)
}

// Correlation reports cross-dimension association strength.
func (s *Service) Correlation(dimA, dimB taxonomy.Dimension, filter model.Filter) (taxonomy.Correlation, error) {
	a, err := s.taxonomyAnalyzer()
	if err != nil {
		return taxonomy.Correlation{}, err
	}
	return a.Correlation(dimA, dimB, filter)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"concurrency": s.concurrency,
		"batchSize":   s.batchSize,
		"corpusSize":  s.corpusSize,
	}
	if s.cache != nil {
		stats["cacheEntries"] = s.cache.Len(context.Background())
	}
	return stats
}
