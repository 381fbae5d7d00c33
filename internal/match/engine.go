// Package match orchestrates signal computation into scored, explainable
// matches: single pairs, filtered top-N requests, and full-corpus batch
// runs.
package match

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/matchbox/internal/adapters/cache"
	"github.com/okian/matchbox/internal/adapters/repository"
	"github.com/okian/matchbox/internal/domain/attendee"
	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/internal/domain/signal"
	"github.com/okian/matchbox/internal/weights"
	"github.com/okian/matchbox/pkg/logger"
	"github.com/okian/matchbox/pkg/metrics"
)

// Defaults for batch execution and explainability.
const (
	defaultConcurrency = 4
	defaultBatchSize   = 200
	defaultReasonCount = 3
)

// Engine computes matches over an injected corpus snapshot. It carries no
// global state: corpus, engines, profile store, and cache are all
// explicit, so parallel instances never interfere.
type Engine struct {
	corpus   map[string]*model.Actor
	ids      []string // sorted snapshot of corpus ids
	base     *signal.Engine
	attendee *attendee.Engine
	profiles *weights.Manager

	cache cache.Cache
	store repository.Store

	concurrency int
	batchSize   int
	reasonCount int

	logger logger.Logger
	now    func() time.Time
}

// New constructs a match engine over the corpus snapshot. The snapshot is
// indexed by id and never mutated.
func New(corpus []model.Actor, base *signal.Engine, att *attendee.Engine, profiles *weights.Manager, opts ...Option) *Engine {
	e := &Engine{
		corpus:      make(map[string]*model.Actor, len(corpus)),
		base:        base,
		attendee:    att,
		profiles:    profiles,
		concurrency: defaultConcurrency,
		batchSize:   defaultBatchSize,
		reasonCount: defaultReasonCount,
		logger:      logger.Noop(),
		now:         time.Now,
	}
	for i := range corpus {
		if corpus[i].ID == "" {
			continue
		}
		e.corpus[corpus[i].ID] = &corpus[i]
	}
	e.ids = make([]string, 0, len(e.corpus))
	for id := range e.corpus {
		e.ids = append(e.ids, id)
	}
	sort.Strings(e.ids)
	for _, opt := range opts {
		opt(e)
	}
	metrics.UpdateCorpusActors(len(e.corpus))
	return e
}

// Actor returns the corpus entry for id.
func (e *Engine) Actor(id string) (*model.Actor, error) {
	a, ok := e.corpus[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// Profile resolves a profile id via the weights manager, falling back to
// the default profile for an empty id.
func (e *Engine) Profile(ctx context.Context, id string) (*model.WeightProfile, error) {
	return e.profiles.Resolve(ctx, id)
}

// Calculate scores a single pair under the given profile. Self-pairs are
// rejected. Weights naming signals with no computed metric are ignored;
// the remaining contributions are ranked and rendered into reasons.
func (e *Engine) Calculate(ctx context.Context, a, b *model.Actor, profile *model.WeightProfile) (*model.Match, error) {
	if a == nil || b == nil || profile == nil {
		return nil, fmt.Errorf("%w: nil actor or profile", ErrValidation)
	}
	if a.ID == b.ID {
		return nil, fmt.Errorf("%w: match requires two distinct actors, got %s twice", ErrValidation, a.ID)
	}

	key := model.EdgeID(a.ID, b.ID, profile.ID)
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, key); ok {
			return &cached, nil
		}
	}

	started := e.now()
	metricsMap, err := e.pairMetrics(ctx, a, b)
	if err != nil {
		metrics.RecordMatchError()
		return nil, fmt.Errorf("%w: pair %s/%s: %v", ErrComputation, a.ID, b.ID, err)
	}

	raw := 0.0
	contributions := make([]model.Contribution, 0, len(profile.Weights))
	for name, weight := range profile.Weights {
		value, ok := metricsMap[name]
		if !ok {
			continue
		}
		c := value * weight
		raw += c
		contributions = append(contributions, model.Contribution{
			Signal:       name,
			DisplayName:  signal.DisplayName(name),
			Raw:          value,
			Weight:       weight,
			Contribution: c,
		})
	}
	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Contribution != contributions[j].Contribution {
			return contributions[i].Contribution > contributions[j].Contribution
		}
		return contributions[i].Signal < contributions[j].Signal
	})

	now := e.now().UTC()
	first, second := model.SortedPair(a.ID, b.ID)
	m := &model.Match{
		EdgeID:        key,
		ActorA:        first,
		ActorB:        second,
		ProfileID:     profile.ID,
		Score:         normalizeScore(raw, contributions, profile.Normalize),
		Confidence:    confidence(contributions, len(profile.Weights)),
		Metrics:       metricsMap,
		Weights:       profile.Clone().Weights,
		Contributions: contributions,
		Reasons:       reasons(contributions, e.reasonCount),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if e.cache != nil {
		e.cache.Set(ctx, key, *m)
	}
	metrics.RecordMatchComputed()
	metrics.RecordMatchLatency(float64(e.now().Sub(started).Milliseconds()))
	return m, nil
}

// CalculateByID resolves both actors from the corpus before scoring.
func (e *Engine) CalculateByID(ctx context.Context, idA, idB, profileID string) (*model.Match, error) {
	a, err := e.Actor(idA)
	if err != nil {
		return nil, err
	}
	b, err := e.Actor(idB)
	if err != nil {
		return nil, err
	}
	profile, err := e.Profile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return e.Calculate(ctx, a, b, profile)
}

// ClearCache flushes the match cache.
func (e *Engine) ClearCache(ctx context.Context) {
	if e.cache != nil {
		e.cache.Clear(ctx)
	}
}

// pairMetrics dispatches to the attendee engine when either side is an
// attendee, keeping the attendee as the perspective actor.
func (e *Engine) pairMetrics(ctx context.Context, a, b *model.Actor) (map[string]float64, error) {
	if e.attendee != nil {
		switch {
		case a.IsAttendee():
			return e.attendee.CalculateMetrics(ctx, a, b, e.now())
		case b.IsAttendee():
			return e.attendee.CalculateMetrics(ctx, b, a, e.now())
		}
	}
	return e.base.CalculateMetrics(ctx, a, b)
}

// normalizeScore squashes the raw weighted sum into [0,1]. A pair with no
// applicable contributions scores 0 regardless of method.
func normalizeScore(raw float64, applied []model.Contribution, n model.Normalization) float64 {
	if len(applied) == 0 {
		return 0
	}
	temp := n.Temperature
	if temp <= 0 {
		temp = 1
	}
	var sumWeights, sumAbs, floor float64
	for _, c := range applied {
		sumWeights += c.Weight
		sumAbs += math.Abs(c.Weight)
		if c.Weight < 0 {
			floor += c.Weight
		}
	}
	if sumAbs == 0 {
		return 0
	}
	switch n.Method {
	case model.NormalizeMinMax:
		// Linear rescale over the achievable [floor, floor+sumAbs] range.
		return clamp01((raw - floor) / sumAbs)
	case model.NormalizeZScore:
		// Center on the expectation of uniform metrics, spread by the
		// total weight mass tempered by the profile temperature.
		expected := 0.5 * sumWeights
		return clamp01(0.5 + (raw-expected)/(temp*sumAbs))
	default: // exp_z
		if raw <= 0 {
			return 0
		}
		return 1 - math.Exp(-raw/temp)
	}
}

// confidence combines signal coverage with contribution consistency. More
// complete inputs or a tighter contribution spread never lower it.
func confidence(applied []model.Contribution, namedSignals int) float64 {
	if namedSignals == 0 || len(applied) == 0 {
		return 0
	}
	coverage := float64(len(applied)) / float64(namedSignals)
	if coverage > 1 {
		coverage = 1
	}

	mean := 0.0
	for _, c := range applied {
		mean += c.Raw
	}
	mean /= float64(len(applied))
	variance := 0.0
	for _, c := range applied {
		variance += (c.Raw - mean) * (c.Raw - mean)
	}
	variance /= float64(len(applied))
	// Raw values live in [0,1], so the standard deviation tops out at 0.5.
	consistency := 1 - 2*math.Sqrt(variance)
	if consistency < 0 {
		consistency = 0
	}
	return clamp01(coverage * (0.5 + 0.5*consistency))
}

// reasons renders the top contributions through the display-name table.
func reasons(ranked []model.Contribution, topN int) []string {
	if topN > len(ranked) {
		topN = len(ranked)
	}
	out := make([]string, 0, topN)
	for _, c := range ranked[:topN] {
		if c.Contribution <= 0 {
			break
		}
		out = append(out, fmt.Sprintf("%s (%d%%)", c.DisplayName, int(math.Round(c.Raw*100))))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
