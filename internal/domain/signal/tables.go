package signal

import "strings"

// Canonical stage values recognized by the complementarity table.
const (
	StageIdea   = "idea"
	StageSeed   = "seed"
	StageEarly  = "early"
	StageGrowth = "growth"
	StageMature = "mature"
)

// stageMatrix holds the fixed stage-complementarity constants. The table is
// tunable business data, kept apart from the scoring algorithm. It is
// symmetric: counterparties at complementary maturity levels (one building,
// one established) score higher than same-stage pairs competing for the
// same resources.
var stageMatrix = map[string]map[string]float64{
	StageIdea: {
		StageIdea:   0.40,
		StageSeed:   0.55,
		StageEarly:  0.60,
		StageGrowth: 0.75,
		StageMature: 0.85,
	},
	StageSeed: {
		StageIdea:   0.55,
		StageSeed:   0.45,
		StageEarly:  0.60,
		StageGrowth: 0.80,
		StageMature: 0.85,
	},
	StageEarly: {
		StageIdea:   0.60,
		StageSeed:   0.60,
		StageEarly:  0.50,
		StageGrowth: 0.70,
		StageMature: 0.80,
	},
	StageGrowth: {
		StageIdea:   0.75,
		StageSeed:   0.80,
		StageEarly:  0.70,
		StageGrowth: 0.55,
		StageMature: 0.65,
	},
	StageMature: {
		StageIdea:   0.85,
		StageSeed:   0.85,
		StageEarly:  0.80,
		StageGrowth: 0.65,
		StageMature: 0.50,
	},
}

// StageComplement looks up the fixed compatibility constant for a stage
// pair. The second return is false when either stage is absent from the
// table, letting callers omit the signal instead of defaulting it.
func StageComplement(stageA, stageB string) (float64, bool) {
	row, ok := stageMatrix[strings.ToLower(strings.TrimSpace(stageA))]
	if !ok {
		return 0, false
	}
	v, ok := row[strings.ToLower(strings.TrimSpace(stageB))]
	if !ok {
		return 0, false
	}
	return v, true
}

// displayNames renders signal identifiers for explanation trails.
var displayNames = map[string]string{
	NameDateProximity:   "Founding date proximity",
	NameCategoryOverlap: "Category overlap",
	NamePlatformOverlap: "Platform overlap",
	NameMarketOverlap:   "Market overlap",
	NameBipartite:       "Capability/need fit",
	NameStageComplement: "Stage complementarity",
	NameTextSimilarity:  "Description similarity",
	NameNameSimilarity:  "Name similarity",
}

// DisplayName resolves a signal's human-readable label, falling back to a
// cleaned-up form of the identifier for dynamically named signals.
func DisplayName(name string) string {
	if d, ok := displayNames[name]; ok {
		return d
	}
	cleaned := strings.ReplaceAll(name, "_", " ")
	if cleaned == "" {
		return name
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

// RegisterDisplayName lets composing engines add labels for their signals.
func RegisterDisplayName(name, display string) {
	displayNames[name] = display
}
