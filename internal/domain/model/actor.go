// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"strings"
	"time"
)

// ActorType distinguishes the kinds of records the engine compares.
type ActorType string

// Known actor types.
const (
	ActorCompany  ActorType = "company"
	ActorSponsor  ActorType = "sponsor"
	ActorAttendee ActorType = "attendee"
)

// Slot is a (day, time-slot) availability tuple, e.g. ("tuesday", "morning").
type Slot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// Key returns the canonical lowercase form used for set comparison.
func (s Slot) Key() string {
	return strings.ToLower(strings.TrimSpace(s.Day)) + "/" + strings.ToLower(strings.TrimSpace(s.Time))
}

// Actor is the unified record for companies, sponsors, and attendees.
// List fields are treated as case-insensitive sets for similarity purposes.
type Actor struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type ActorType `json:"type"`

	// Categorical list fields.
	Categories         []string `json:"categories,omitempty"`
	Platforms          []string `json:"platforms,omitempty"`
	Markets            []string `json:"markets,omitempty"`
	Capabilities       []string `json:"capabilities,omitempty"`
	Needs              []string `json:"needs,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	Roles              []string `json:"roles,omitempty"`
	PreferredLocations []string `json:"preferred_locations,omitempty"`

	// Free-text fields.
	Description string `json:"description,omitempty"`
	Bio         string `json:"bio,omitempty"`

	// Categorical scalars.
	Stage    string `json:"stage,omitempty"`
	Location string `json:"location,omitempty"`

	// Sparse numeric and date attributes, keyed by field name.
	Numeric map[string]float64   `json:"numeric,omitempty"`
	Dates   map[string]time.Time `json:"dates,omitempty"`

	Availability []Slot `json:"availability,omitempty"`

	// Optional precomputed embedding supplied by ingestion.
	Embedding []float32 `json:"embedding,omitempty"`
}

// IsAttendee reports whether the actor is a conference attendee.
func (a *Actor) IsAttendee() bool { return a.Type == ActorAttendee }

// TextFields returns the concatenation-ready free-text fields of the actor.
func (a *Actor) TextFields() []string {
	out := make([]string, 0, 2)
	if a.Description != "" {
		out = append(out, a.Description)
	}
	if a.Bio != "" {
		out = append(out, a.Bio)
	}
	return out
}

// BadgeScan is an append-only record of one attendee scanning another.
type BadgeScan struct {
	ScannerID string    `json:"scanner_id"`
	ScannedID string    `json:"scanned_id"`
	Context   string    `json:"context,omitempty"` // venue or session
	Timestamp time.Time `json:"timestamp"`
}

// NormalizeSet lowercases, trims, and deduplicates a list field into a set.
func NormalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// PairKey canonicalizes an unordered actor pair by sorting the two ids,
// so {a,b} and {b,a} produce the same key.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// EdgeID derives the identity of a Match edge from the unordered pair and
// the weight profile it was scored under.
func EdgeID(a, b, profileID string) string {
	return PairKey(a, b) + ":" + profileID
}

// SortedPair returns the two ids in canonical order.
func SortedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Filter narrows a candidate set by categorical attributes before scoring.
// Empty slices match everything.
type Filter struct {
	Platforms  []string `json:"platforms,omitempty"`
	Markets    []string `json:"markets,omitempty"`
	Stages     []string `json:"stages,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Types      []string `json:"types,omitempty"`
}

// Matches reports whether the actor passes every declared filter dimension.
func (f Filter) Matches(a *Actor) bool {
	if len(f.Types) > 0 && !containsFold(f.Types, string(a.Type)) {
		return false
	}
	if len(f.Stages) > 0 && !containsFold(f.Stages, a.Stage) {
		return false
	}
	if len(f.Platforms) > 0 && !intersectsFold(f.Platforms, a.Platforms) {
		return false
	}
	if len(f.Markets) > 0 && !intersectsFold(f.Markets, a.Markets) {
		return false
	}
	if len(f.Categories) > 0 && !intersectsFold(f.Categories, a.Categories) {
		return false
	}
	return true
}

// Empty reports whether no filter dimension is declared.
func (f Filter) Empty() bool {
	return len(f.Types) == 0 && len(f.Stages) == 0 && len(f.Platforms) == 0 &&
		len(f.Markets) == 0 && len(f.Categories) == 0
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func intersectsFold(filter, values []string) bool {
	set := NormalizeSet(values)
	for _, f := range filter {
		if _, ok := set[strings.ToLower(strings.TrimSpace(f))]; ok {
			return true
		}
	}
	return false
}

// SortActorIDs returns the ids of a corpus in deterministic order.
func SortActorIDs(actors []Actor) []string {
	ids := make([]string, 0, len(actors))
	for i := range actors {
		ids = append(ids, actors[i].ID)
	}
	sort.Strings(ids)
	return ids
}
