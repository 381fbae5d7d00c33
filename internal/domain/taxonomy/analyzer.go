// Package taxonomy produces read-only aggregate reports over the actor
// corpus: capability/need heatmaps, tag co-occurrence graphs, dimension
// distributions, and cross-dimension correlations. It never mutates the
// corpus and is safe to run concurrently with match computation.
package taxonomy

import (
	"math"
	"sort"

	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/pkg/logger"
)

// Dimension names a categorical attribute of an actor that reports can
// aggregate over.
type Dimension string

const (
	DimCategory   Dimension = "category"
	DimPlatform   Dimension = "platform"
	DimMarket     Dimension = "market"
	DimCapability Dimension = "capability"
	DimNeed       Dimension = "need"
	DimStage      Dimension = "stage"
	DimType       Dimension = "type"
	DimRole       Dimension = "role"
)

// dimensionOrder fixes the precedence used when a tag value appears in
// more than one dimension; the graph assigns it to the first match.
var dimensionOrder = []Dimension{
	DimCategory, DimPlatform, DimMarket, DimCapability, DimNeed, DimStage, DimRole,
}

// Valid reports whether d is a recognized dimension.
func (d Dimension) Valid() bool {
	switch d {
	case DimCategory, DimPlatform, DimMarket, DimCapability, DimNeed, DimStage, DimType, DimRole:
		return true
	}
	return false
}

// Heatmap is a capability x need co-occurrence matrix: Counts[i][j] is the
// number of actors listing both Capabilities[i] and Needs[j].
type Heatmap struct {
	Capabilities []string `json:"capabilities"`
	Needs        []string `json:"needs"`
	Counts       [][]int  `json:"counts"`
}

// Node is a distinct tag value in the co-occurrence graph.
type Node struct {
	ID    string `json:"id"`
	Group string `json:"group"`
	Count int    `json:"count"`
}

// Edge links two tags that co-occur on at least one actor; Weight is the
// number of actors listing both.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is a tag co-occurrence network with deterministic node and edge
// ordering.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Bucket is one histogram entry.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Distribution is a per-dimension histogram. Coverage is the fraction of
// actors in the (filtered) corpus declaring at least one value for the
// dimension.
type Distribution struct {
	Dimension Dimension `json:"dimension"`
	Buckets   []Bucket  `json:"buckets"`
	Total     int       `json:"total"`
	Coverage  float64   `json:"coverage"`
}

// Correlation reports association strength between two dimensions via a
// contingency table. CramersV is in [0,1].
type Correlation struct {
	DimensionA Dimension                 `json:"dimension_a"`
	DimensionB Dimension                 `json:"dimension_b"`
	Table      map[string]map[string]int `json:"table"`
	Samples    int                       `json:"samples"`
	ChiSquare  float64                   `json:"chi_square"`
	CramersV   float64                   `json:"cramers_v"`
}

// Analyzer aggregates over an injected corpus snapshot. All methods are
// read-only and safe for concurrent use.
type Analyzer struct {
	corpus        []model.Actor
	minEdgeWeight int
	logger        logger.Logger
}

// New constructs an analyzer over the given corpus snapshot.
func New(corpus []model.Actor, opts ...Option) *Analyzer {
	a := &Analyzer{
		corpus:        corpus,
		minEdgeWeight: 1,
		logger:        logger.Noop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) filtered(filter model.Filter) []*model.Actor {
	out := make([]*model.Actor, 0, len(a.corpus))
	for i := range a.corpus {
		if filter.Matches(&a.corpus[i]) {
			out = append(out, &a.corpus[i])
		}
	}
	return out
}

// CapabilityNeedHeatmap counts, per (capability, need) combination, how
// many actors declare both on the same record. Axes are sorted for
// deterministic rendering.
func (a *Analyzer) CapabilityNeedHeatmap(filter model.Filter) Heatmap {
	actors := a.filtered(filter)

	capIdx := map[string]int{}
	needIdx := map[string]int{}
	for _, actor := range actors {
		for c := range model.NormalizeSet(actor.Capabilities) {
			if _, ok := capIdx[c]; !ok {
				capIdx[c] = 0
			}
		}
		for n := range model.NormalizeSet(actor.Needs) {
			if _, ok := needIdx[n]; !ok {
				needIdx[n] = 0
			}
		}
	}
	caps := sortedKeys(capIdx)
	needs := sortedKeys(needIdx)
	for i, c := range caps {
		capIdx[c] = i
	}
	for j, n := range needs {
		needIdx[n] = j
	}

	counts := make([][]int, len(caps))
	for i := range counts {
		counts[i] = make([]int, len(needs))
	}
	for _, actor := range actors {
		for c := range model.NormalizeSet(actor.Capabilities) {
			for n := range model.NormalizeSet(actor.Needs) {
				counts[capIdx[c]][needIdx[n]]++
			}
		}
	}
	return Heatmap{Capabilities: caps, Needs: needs, Counts: counts}
}

// TagGraph builds a co-occurrence network over every tag dimension. A tag
// appearing in several dimensions is grouped under the first dimension in
// the fixed precedence order. Edges below the minimum weight are dropped.
func (a *Analyzer) TagGraph(filter model.Filter) Graph {
	actors := a.filtered(filter)

	nodeCount := map[string]int{}
	nodeGroup := map[string]Dimension{}
	edgeWeight := map[string]int{}

	for _, actor := range actors {
		tags := map[string]struct{}{}
		for _, dim := range dimensionOrder {
			for v := range model.NormalizeSet(dimensionValues(actor, dim)) {
				if _, seen := nodeGroup[v]; !seen {
					nodeGroup[v] = dim
				}
				tags[v] = struct{}{}
			}
		}
		sorted := sortedKeys(tags)
		for _, t := range sorted {
			nodeCount[t]++
		}
		for i := 0; i < len(sorted); i++ {
			for j := i + 1; j < len(sorted); j++ {
				edgeWeight[sorted[i]+"|"+sorted[j]]++
			}
		}
	}

	g := Graph{
		Nodes: make([]Node, 0, len(nodeCount)),
		Edges: make([]Edge, 0, len(edgeWeight)),
	}
	for _, t := range sortedKeys(nodeCount) {
		g.Nodes = append(g.Nodes, Node{ID: t, Group: string(nodeGroup[t]), Count: nodeCount[t]})
	}
	for _, key := range sortedKeys(edgeWeight) {
		if edgeWeight[key] < a.minEdgeWeight {
			continue
		}
		src, dst := splitPair(key)
		g.Edges = append(g.Edges, Edge{Source: src, Target: dst, Weight: edgeWeight[key]})
	}
	return g
}

// Distribution builds the value histogram for one dimension. Buckets are
// ordered by descending count, ties broken by value.
func (a *Analyzer) Distribution(dim Dimension, filter model.Filter) (Distribution, error) {
	if !dim.Valid() {
		return Distribution{}, ErrUnknownDimension
	}
	actors := a.filtered(filter)

	counts := map[string]int{}
	covered := 0
	for _, actor := range actors {
		values := model.NormalizeSet(dimensionValues(actor, dim))
		if len(values) > 0 {
			covered++
		}
		for v := range values {
			counts[v]++
		}
	}

	dist := Distribution{Dimension: dim, Total: len(actors)}
	for v, c := range counts {
		dist.Buckets = append(dist.Buckets, Bucket{Value: v, Count: c})
	}
	sort.Slice(dist.Buckets, func(i, j int) bool {
		if dist.Buckets[i].Count != dist.Buckets[j].Count {
			return dist.Buckets[i].Count > dist.Buckets[j].Count
		}
		return dist.Buckets[i].Value < dist.Buckets[j].Value
	})
	if len(actors) > 0 {
		dist.Coverage = float64(covered) / float64(len(actors))
	}
	return dist, nil
}

// Correlation measures association between two dimensions with a generic
// contingency table and Cramér's V. Multi-valued dimensions contribute one
// observation per value combination on the same actor.
func (a *Analyzer) Correlation(dimA, dimB Dimension, filter model.Filter) (Correlation, error) {
	if !dimA.Valid() || !dimB.Valid() {
		return Correlation{}, ErrUnknownDimension
	}
	actors := a.filtered(filter)

	table := map[string]map[string]int{}
	samples := 0
	for _, actor := range actors {
		for va := range model.NormalizeSet(dimensionValues(actor, dimA)) {
			for vb := range model.NormalizeSet(dimensionValues(actor, dimB)) {
				if table[va] == nil {
					table[va] = map[string]int{}
				}
				table[va][vb]++
				samples++
			}
		}
	}

	corr := Correlation{DimensionA: dimA, DimensionB: dimB, Table: table, Samples: samples}
	if samples == 0 {
		return corr, nil
	}

	rowTotals := map[string]int{}
	colTotals := map[string]int{}
	for va, row := range table {
		for vb, c := range row {
			rowTotals[va] += c
			colTotals[vb] += c
		}
	}
	chi := 0.0
	for va, row := range table {
		for vb := range colTotals {
			expected := float64(rowTotals[va]) * float64(colTotals[vb]) / float64(samples)
			if expected == 0 {
				continue
			}
			observed := float64(row[vb])
			chi += (observed - expected) * (observed - expected) / expected
		}
	}
	corr.ChiSquare = chi

	k := len(rowTotals)
	if len(colTotals) < k {
		k = len(colTotals)
	}
	if k > 1 {
		corr.CramersV = math.Sqrt(chi / (float64(samples) * float64(k-1)))
		if corr.CramersV > 1 {
			corr.CramersV = 1
		}
	}
	return corr, nil
}

func dimensionValues(a *model.Actor, dim Dimension) []string {
	switch dim {
	case DimCategory:
		return a.Categories
	case DimPlatform:
		return a.Platforms
	case DimMarket:
		return a.Markets
	case DimCapability:
		return a.Capabilities
	case DimNeed:
		return a.Needs
	case DimStage:
		if a.Stage == "" {
			return nil
		}
		return []string{a.Stage}
	case DimType:
		return []string{string(a.Type)}
	case DimRole:
		return a.Roles
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func splitPair(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
