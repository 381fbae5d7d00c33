// Package signal provides the stateless pairwise similarity primitives and
// the corpus statistics (numeric normalization, term-frequency weighting)
// that normalized signals depend on.
package signal

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/pkg/logger"
)

// Signal identifiers produced by the base engine.
const (
	NameDateProximity   = "date_proximity"
	NameCategoryOverlap = "category_overlap"
	NamePlatformOverlap = "platform_overlap"
	NameMarketOverlap   = "market_overlap"
	NameBipartite       = "bipartite"
	NameStageComplement = "stage_complement"
	NameTextSimilarity  = "text_similarity"
	NameNameSimilarity  = "name_similarity"
)

// Default engine configuration constants.
const (
	defaultDateField       = "founded"
	defaultDateHorizonDays = 365
	defaultTemperature     = 1.0
	minTokenLength         = 2
)

// Names lists every signal identifier the base engine can emit, including
// the per-numeric-field proximity signals for the configured fields.
func Names(numericFields ...string) []string {
	names := []string{
		NameDateProximity,
		NameCategoryOverlap,
		NamePlatformOverlap,
		NameMarketOverlap,
		NameBipartite,
		NameStageComplement,
		NameTextSimilarity,
		NameNameSimilarity,
	}
	for _, f := range numericFields {
		names = append(names, NumericSignalName(f))
	}
	return names
}

// NumericSignalName derives the signal identifier for a numeric field.
func NumericSignalName(field string) string {
	return field + "_proximity"
}

// fieldStats holds per-numeric-field corpus statistics.
type fieldStats struct {
	mean   float64
	stddev float64
}

// Engine computes pairwise similarity signals over actor fields. Corpus
// statistics are computed exactly once by Initialize; comparisons before
// that return ErrNotInitialized.
type Engine struct {
	numericFields []string
	dateField     string
	dateHorizon   float64
	temperature   float64

	numStats map[string]fieldStats
	idf      map[string]float64
	docCount int

	ready    atomic.Bool
	initOnce sync.Once

	logger logger.Logger
}

// New constructs a base signal engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		numericFields: []string{"team_size", "funding"},
		dateField:     defaultDateField,
		dateHorizon:   defaultDateHorizonDays,
		temperature:   defaultTemperature,
		logger:        logger.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize computes corpus statistics: per-numeric-field mean and
// standard deviation plus per-term inverse document frequency across all
// free-text fields. It runs exactly once; later calls return
// ErrAlreadyInitialized so misuse is visible rather than silently
// re-deriving stats under active readers.
func (e *Engine) Initialize(ctx context.Context, corpus []model.Actor) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("initialize canceled: %w", err)
	}
	ran := false
	e.initOnce.Do(func() {
		ran = true
		e.computeStats(corpus)
		e.ready.Store(true)
		e.logger.Info(ctx, "signal engine initialized",
			logger.Int("actors", len(corpus)),
			logger.Int("numeric_fields", len(e.numStats)),
			logger.Int("vocabulary", len(e.idf)),
		)
	})
	if !ran {
		return ErrAlreadyInitialized
	}
	return nil
}

// Ready reports whether Initialize has completed.
func (e *Engine) Ready() bool { return e.ready.Load() }

func (e *Engine) computeStats(corpus []model.Actor) {
	e.docCount = len(corpus)
	e.numStats = make(map[string]fieldStats, len(e.numericFields))
	e.idf = make(map[string]float64)

	for _, field := range e.numericFields {
		var values []float64
		for i := range corpus {
			if v, ok := corpus[i].Numeric[field]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		mean := sum / float64(len(values))
		var variance float64
		for _, v := range values {
			variance += (v - mean) * (v - mean)
		}
		stddev := math.Sqrt(variance / float64(len(values)))
		e.numStats[field] = fieldStats{mean: mean, stddev: stddev}
	}

	// Document frequency over the concatenated text fields per actor.
	df := make(map[string]int)
	for i := range corpus {
		seen := make(map[string]struct{})
		for _, text := range corpus[i].TextFields() {
			for _, tok := range Tokenize(text) {
				seen[tok] = struct{}{}
			}
		}
		for tok := range seen {
			df[tok]++
		}
	}
	for tok, n := range df {
		e.idf[tok] = math.Log(float64(1+e.docCount)/float64(1+n)) + 1
	}
}

// ZExpSimilarity z-normalizes both values against the corpus stats for
// field and returns exp(-|zA-zB| / temperature).
func (e *Engine) ZExpSimilarity(valA, valB float64, field string, temperature float64) (float64, error) {
	if !e.ready.Load() {
		return 0, ErrNotInitialized
	}
	stats, ok := e.numStats[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if temperature <= 0 {
		temperature = e.temperature
	}
	if stats.stddev == 0 {
		// Degenerate corpus: every observed value is identical.
		if valA == valB {
			return 1, nil
		}
		return 0, nil
	}
	zA := (valA - stats.mean) / stats.stddev
	zB := (valB - stats.mean) / stats.stddev
	return clamp01(math.Exp(-math.Abs(zA-zB) / temperature)), nil
}

// TextCosineSimilarity builds IDF-weighted term-frequency vectors over the
// concatenated free-text fields of each actor and returns their cosine
// similarity. Either vector being zero yields 0.
func (e *Engine) TextCosineSimilarity(a, b *model.Actor) (float64, error) {
	return e.TextCosineOver(a.TextFields(), b.TextFields())
}

// TextCosineOver compares arbitrary text selections with the same
// IDF-weighted cosine, letting composing engines pick their own fields.
func (e *Engine) TextCosineOver(textsA, textsB []string) (float64, error) {
	if !e.ready.Load() {
		return 0, ErrNotInitialized
	}
	return cosine(e.termVector(textsA), e.termVector(textsB)), nil
}

func (e *Engine) termVector(texts []string) map[string]float64 {
	tf := make(map[string]float64)
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			tf[tok]++
		}
	}
	for tok := range tf {
		weight, ok := e.idf[tok]
		if !ok {
			// Unseen term: treat as maximally rare.
			weight = math.Log(float64(1+e.docCount)) + 1
		}
		tf[tok] *= weight
	}
	return tf
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for tok, va := range a {
		normA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// CalculateMetrics runs every applicable primitive over the pair and
// returns a signal-name to value map. Signals whose required inputs are
// missing on either side are omitted rather than defaulted to 0.
func (e *Engine) CalculateMetrics(ctx context.Context, a, b *model.Actor) (map[string]float64, error) {
	if !e.ready.Load() {
		return nil, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("calculate metrics canceled: %w", err)
	}

	metrics := make(map[string]float64)

	if dateA, okA := a.Dates[e.dateField]; okA {
		if dateB, okB := b.Dates[e.dateField]; okB {
			metrics[NameDateProximity] = DateProximity(dateA, dateB, e.dateHorizon)
		}
	}
	if len(a.Categories) > 0 && len(b.Categories) > 0 {
		metrics[NameCategoryOverlap] = JaccardSimilarity(a.Categories, b.Categories)
	}
	if len(a.Platforms) > 0 && len(b.Platforms) > 0 {
		metrics[NamePlatformOverlap] = PlatformOverlap(a, b)
	}
	if len(a.Markets) > 0 && len(b.Markets) > 0 {
		metrics[NameMarketOverlap] = MarketOverlap(a, b)
	}
	if len(a.Capabilities)+len(a.Needs) > 0 && len(b.Capabilities)+len(b.Needs) > 0 {
		metrics[NameBipartite] = BidirectionalBipartite(a, b)
	}
	if v, ok := StageComplement(a.Stage, b.Stage); ok {
		metrics[NameStageComplement] = v
	}
	if len(a.TextFields()) > 0 && len(b.TextFields()) > 0 {
		if v, err := e.TextCosineSimilarity(a, b); err == nil {
			metrics[NameTextSimilarity] = v
		}
	}
	if a.Name != "" && b.Name != "" {
		metrics[NameNameSimilarity] = LevenshteinSimilarity(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
	for _, field := range e.numericFields {
		valA, okA := a.Numeric[field]
		valB, okB := b.Numeric[field]
		if !okA || !okB {
			continue
		}
		if v, err := e.ZExpSimilarity(valA, valB, field, e.temperature); err == nil {
			metrics[NumericSignalName(field)] = v
		}
	}

	return metrics, nil
}

// GenerateReasons sorts metrics descending and renders the top N through
// the display-name table into human-readable strings. Ties break on
// signal name so output is deterministic.
func (e *Engine) GenerateReasons(metrics map[string]float64, topN int) []string {
	if topN <= 0 || len(metrics) == 0 {
		return nil
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if metrics[names[i]] != metrics[names[j]] {
			return metrics[names[i]] > metrics[names[j]]
		}
		return names[i] < names[j]
	})
	if topN > len(names) {
		topN = len(names)
	}
	reasons := make([]string, 0, topN)
	for _, name := range names[:topN] {
		reasons = append(reasons, fmt.Sprintf("%s (%d%%)", DisplayName(name), int(math.Round(metrics[name]*100))))
	}
	return reasons
}

// Tokenize lowercases and splits text on non-alphanumeric runes, dropping
// tokens shorter than two characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLength {
			out = append(out, f)
		}
	}
	return out
}
