package signal

import (
	"math"
	"time"

	"github.com/okian/matchbox/internal/domain/model"
)

// DateProximity returns exp(-|delta days| / horizonDays), clipped to [0,1].
// A horizon of zero or less collapses to exact-date matching.
func DateProximity(a, b time.Time, horizonDays float64) float64 {
	if horizonDays <= 0 {
		if a.Equal(b) {
			return 1
		}
		return 0
	}
	deltaDays := math.Abs(a.Sub(b).Hours()) / 24
	return clamp01(math.Exp(-deltaDays / horizonDays))
}

// JaccardSimilarity returns |intersection| / |union| over the two lists
// treated as case-insensitive sets. Two empty lists score 0: the absence
// of shared signal is not full agreement.
func JaccardSimilarity(a, b []string) float64 {
	setA := model.NormalizeSet(a)
	setB := model.NormalizeSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// LevenshteinSimilarity returns 1 - editDistance/max(len(a), len(b)).
// Both empty strings score 1; exactly one empty scores 0.
func LevenshteinSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	dist := levenshtein(ra, rb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return clamp01(1 - float64(dist)/float64(longest))
}

// levenshtein computes edit distance with a rolling two-row table.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// BipartiteMatch is directional: the fraction of needs satisfied by the
// counterparty's capabilities. An empty needs list scores 0.
func BipartiteMatch(capabilities, needs []string) float64 {
	needSet := model.NormalizeSet(needs)
	if len(needSet) == 0 {
		return 0
	}
	capSet := model.NormalizeSet(capabilities)
	satisfied := 0
	for n := range needSet {
		if _, ok := capSet[n]; ok {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(needSet))
}

// BidirectionalBipartite averages both directions to restore symmetry.
func BidirectionalBipartite(a, b *model.Actor) float64 {
	forward := BipartiteMatch(a.Capabilities, b.Needs)
	backward := BipartiteMatch(b.Capabilities, a.Needs)
	return (forward + backward) / 2
}

// PlatformOverlap is Jaccard over the canonical platform lists.
func PlatformOverlap(a, b *model.Actor) float64 {
	return JaccardSimilarity(a.Platforms, b.Platforms)
}

// MarketOverlap is Jaccard over the canonical market lists.
func MarketOverlap(a, b *model.Actor) float64 {
	return JaccardSimilarity(a.Markets, b.Markets)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
