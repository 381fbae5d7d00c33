package model

import "time"

// Contribution is one signal's share of a match score: raw value times
// weight, carried in ranked order for explainability.
type Contribution struct {
	Signal       string  `json:"signal"`
	DisplayName  string  `json:"display_name"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Match is the scored, explainable edge between exactly two distinct
// actors under one weight profile. The pair is canonicalized by sorting,
// so at most one live Match exists per (unordered pair, profile id);
// recomputation overwrites in place.
type Match struct {
	EdgeID    string `json:"edge_id"`
	ActorA    string `json:"actor_a"` // lexicographically smaller id
	ActorB    string `json:"actor_b"`
	ProfileID string `json:"profile_id"`

	Score      float64 `json:"score"`      // [0,1]
	Confidence float64 `json:"confidence"` // [0,1]

	Metrics       map[string]float64 `json:"metrics"`
	Weights       map[string]float64 `json:"weights"` // snapshot of the profile used
	Contributions []Contribution     `json:"contributions"`
	Reasons       []string           `json:"reasons"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BatchError records a single failed pair inside a batch run.
type BatchError struct {
	PairKey string `json:"pair_key"`
	Err     string `json:"error"`
}

// BatchResult summarizes a full-corpus match computation.
type BatchResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Errors    []BatchError  `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
}
