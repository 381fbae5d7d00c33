// Package attendee extends the base signal engine with attendee-specific
// signals: role-intent compatibility, badge-scan recency, availability
// overlap, location preference, and bio similarity.
package attendee

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/internal/domain/signal"
	"github.com/okian/matchbox/pkg/logger"
	"github.com/okian/matchbox/pkg/metrics"
)

// Signal identifiers produced by the attendee engine. Scan recency and
// availability overlap are surfaced as distinct named fields because the
// match engine treats them specially rather than as generic weighted
// contributions.
const (
	NameRoleIntent         = "role_intent"
	NameScanRecency        = "scan_recency"
	NameAvailability       = "availability_overlap"
	NameLocationFit        = "location_fit"
	NameBioSimilarity      = "bio_similarity"
	NameInterestCapability = "interest_capability"
)

// Badge-scan recency parameters, fixed process-wide.
const (
	scanHorizonHours = 72.0
	scanTemperature  = 24.0
	scanMaxBoost     = 1.0
)

func init() {
	signal.RegisterDisplayName(NameRoleIntent, "Role compatibility")
	signal.RegisterDisplayName(NameScanRecency, "Recent badge scan")
	signal.RegisterDisplayName(NameAvailability, "Schedule overlap")
	signal.RegisterDisplayName(NameLocationFit, "Location preference fit")
	signal.RegisterDisplayName(NameBioSimilarity, "Bio similarity")
	signal.RegisterDisplayName(NameInterestCapability, "Interest/capability match")
}

// Names lists the attendee-only signal identifiers.
func Names() []string {
	return []string{
		NameRoleIntent,
		NameScanRecency,
		NameAvailability,
		NameLocationFit,
		NameBioSimilarity,
		NameInterestCapability,
	}
}

// Engine composes the base signal engine with an index over badge-scan
// events. Safe for concurrent reads after InitializeScans.
type Engine struct {
	base *signal.Engine

	mu    sync.RWMutex
	scans map[string]model.BadgeScan // canonical pair key -> most recent scan

	logger logger.Logger
}

// New constructs an attendee engine over the given base engine.
func New(base *signal.Engine, opts ...Option) *Engine {
	e := &Engine{
		base:   base,
		scans:  make(map[string]model.BadgeScan),
		logger: logger.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithBase returns an engine over a new base that shares this engine's
// scan index, for corpus reloads that outlive the scan feed.
func (e *Engine) WithBase(base *signal.Engine) *Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &Engine{
		base:   base,
		scans:  e.scans,
		logger: e.logger,
	}
}

// InitializeScans indexes scans by canonicalized unordered actor pair,
// retaining only the most recent scan per pair. Calling it again replaces
// the index, matching ingestion reloads of the scan feed.
func (e *Engine) InitializeScans(ctx context.Context, scans []model.BadgeScan) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("initialize scans canceled: %w", err)
	}
	index := make(map[string]model.BadgeScan, len(scans))
	for _, scan := range scans {
		if scan.ScannerID == "" || scan.ScannedID == "" || scan.ScannerID == scan.ScannedID {
			continue
		}
		key := model.PairKey(scan.ScannerID, scan.ScannedID)
		if existing, ok := index[key]; !ok || scan.Timestamp.After(existing.Timestamp) {
			index[key] = scan
		}
	}
	e.mu.Lock()
	e.scans = index
	e.mu.Unlock()
	metrics.UpdateBadgeScans(len(index))
	e.logger.Info(ctx, "badge scan index built",
		logger.Int("scans", len(scans)),
		logger.Int("pairs", len(index)),
	)
	return nil
}

// ScanRecencyBoost returns maxBoost * exp(-ageHours/temperature) when the
// most recent scan between the pair is within the horizon, else 0. No scan
// on record yields 0. Monotonically non-increasing in scan age.
func (e *Engine) ScanRecencyBoost(actorA, actorB string, now time.Time) float64 {
	e.mu.RLock()
	scan, ok := e.scans[model.PairKey(actorA, actorB)]
	e.mu.RUnlock()
	if !ok {
		return 0
	}
	ageHours := now.Sub(scan.Timestamp).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	if ageHours > scanHorizonHours {
		return 0
	}
	return scanMaxBoost * math.Exp(-ageHours/scanTemperature)
}

// AvailabilityOverlap is Jaccard over (day, time-slot) tuples.
func AvailabilityOverlap(slotsA, slotsB []model.Slot) float64 {
	keysA := make([]string, 0, len(slotsA))
	for _, s := range slotsA {
		keysA = append(keysA, s.Key())
	}
	keysB := make([]string, 0, len(slotsB))
	for _, s := range slotsB {
		keysB = append(keysB, s.Key())
	}
	return signal.JaccardSimilarity(keysA, keysB)
}

// LocationPreferenceFit scores 1 when the counterparty location is in the
// attendee's preferred set, partial credit from the proximity table for
// neighboring regions, else 0.
func LocationPreferenceFit(preferred []string, location string) float64 {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return 0
	}
	prefSet := model.NormalizeSet(preferred)
	if _, ok := prefSet[location]; ok {
		return 1
	}
	best := 0.0
	for p := range prefSet {
		if v := regionProximity(p, location); v > best {
			best = v
		}
	}
	return best
}

// RoleIntentScore scores professional complementarity between the
// attendee's roles and the counterparty. Complementary pairs (developer
// and publisher) score higher than same-role pairs; unknown combinations
// fall back to a low but non-zero default.
func RoleIntentScore(roles []string, counterpartyType model.ActorType, counterparty *model.Actor) float64 {
	if len(roles) == 0 {
		return defaultRoleIntent
	}
	best := 0.0
	for role := range model.NormalizeSet(roles) {
		var v float64
		if counterpartyType == model.ActorAttendee {
			v = rolePairIntent(role, counterparty.Roles)
		} else {
			v = roleTypeIntentScore(role, counterpartyType)
		}
		if v > best {
			best = v
		}
	}
	if best == 0 {
		return defaultRoleIntent
	}
	return best
}

// BioSimilarity reuses the IDF-weighted cosine primitive over bios only.
func (e *Engine) BioSimilarity(a, b *model.Actor) (float64, error) {
	return e.base.TextCosineOver([]string{a.Bio}, []string{b.Bio})
}

// InterestCapabilityMatch reuses the bipartite primitive over interests and
// capabilities. Attendee pairs average both directions; against companies
// and sponsors only the attendee-interest direction applies.
func InterestCapabilityMatch(attendee, counterparty *model.Actor) float64 {
	forward := signal.BipartiteMatch(counterparty.Capabilities, attendee.Interests)
	if !counterparty.IsAttendee() {
		return forward
	}
	backward := signal.BipartiteMatch(attendee.Capabilities, counterparty.Interests)
	return (forward + backward) / 2
}

// CalculateMetrics runs the base primitives plus the attendee signal subset
// for the counterparty type, returning the combined metric map. Signals
// with missing inputs on either side are omitted.
func (e *Engine) CalculateMetrics(ctx context.Context, att, counterparty *model.Actor, now time.Time) (map[string]float64, error) {
	metricsMap, err := e.base.CalculateMetrics(ctx, att, counterparty)
	if err != nil {
		return nil, err
	}

	if len(att.Roles) > 0 {
		metricsMap[NameRoleIntent] = RoleIntentScore(att.Roles, counterparty.Type, counterparty)
	}

	// Scan recency is always surfaced: zero means no recent scan, which
	// the match engine still reports as a distinct field.
	metricsMap[NameScanRecency] = e.ScanRecencyBoost(att.ID, counterparty.ID, now)

	if counterparty.IsAttendee() {
		if len(att.Availability) > 0 && len(counterparty.Availability) > 0 {
			metricsMap[NameAvailability] = AvailabilityOverlap(att.Availability, counterparty.Availability)
		}
		if att.Bio != "" && counterparty.Bio != "" {
			if v, err := e.BioSimilarity(att, counterparty); err == nil {
				metricsMap[NameBioSimilarity] = v
			}
		}
	}

	if len(att.PreferredLocations) > 0 && counterparty.Location != "" {
		metricsMap[NameLocationFit] = LocationPreferenceFit(att.PreferredLocations, counterparty.Location)
	}

	if len(att.Interests) > 0 && len(counterparty.Capabilities)+len(counterparty.Interests) > 0 {
		metricsMap[NameInterestCapability] = InterestCapabilityMatch(att, counterparty)
	}

	return metricsMap, nil
}
