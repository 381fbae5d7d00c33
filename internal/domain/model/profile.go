package model

import "time"

// NormalizeMethod selects how a raw weighted sum is squashed into [0,1].
type NormalizeMethod string

// Supported normalization methods.
const (
	NormalizeExpZ   NormalizeMethod = "exp_z"
	NormalizeZScore NormalizeMethod = "z_score"
	NormalizeMinMax NormalizeMethod = "min_max"
)

// Valid reports whether the method is one of the supported set.
func (m NormalizeMethod) Valid() bool {
	switch m {
	case NormalizeExpZ, NormalizeZScore, NormalizeMinMax:
		return true
	default:
		return false
	}
}

// Normalization configures score squashing for a weight profile.
type Normalization struct {
	Method      NormalizeMethod `json:"method"`
	Temperature float64         `json:"temperature"`
}

// WeightProfile names a per-signal weight vector plus result shaping.
// Negative weights are permitted and penalize a signal. Weights naming
// unknown signals are ignored at match time; the weights manager reports
// them as validation warnings at save time.
type WeightProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Persona string `json:"persona,omitempty"`

	Weights   map[string]float64 `json:"weights"`
	Normalize Normalization      `json:"normalize"`

	// TopN caps result counts for find requests that do not set a limit.
	TopN int `json:"top_n"`
	// Threshold discards matches scoring below it.
	Threshold float64 `json:"threshold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate weights safely.
func (p *WeightProfile) Clone() *WeightProfile {
	out := *p
	out.Weights = make(map[string]float64, len(p.Weights))
	for k, v := range p.Weights {
		out.Weights[k] = v
	}
	return &out
}
