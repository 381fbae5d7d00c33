// Package weights manages weight profiles: CRUD over the document store,
// persona defaults, A/B variant generation, and export/import.
package weights

import (
	"context"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okian/matchbox/internal/adapters/repository"
	"github.com/okian/matchbox/internal/domain/attendee"
	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/internal/domain/signal"
	"github.com/okian/matchbox/pkg/logger"
	"github.com/okian/matchbox/pkg/metrics"
)

// Manager persists weight profiles and owns the persona default table.
// Validation is advisory for weight keys (unknown names warn, they never
// reject) and strict for structure (method, weights present).
type Manager struct {
	store  repository.Store
	known  map[string]struct{}
	logger logger.Logger
	now    func() time.Time
}

// New constructs a manager over the given store. The known-signal set
// starts from the base and attendee signal registries plus the default
// numeric proximity fields.
func New(store repository.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		known:  make(map[string]struct{}),
		logger: logger.Noop(),
		now:    time.Now,
	}
	for _, n := range signal.Names("team_size", "funding") {
		m.known[n] = struct{}{}
	}
	for _, n := range attendee.Names() {
		m.known[n] = struct{}{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Validate checks a profile. Structural problems return ErrValidation;
// unknown weight keys come back as warnings only, since the match engine
// ignores them defensively.
func (m *Manager) Validate(p *model.WeightProfile) ([]string, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil profile", ErrValidation)
	}
	if len(p.Weights) == 0 {
		return nil, fmt.Errorf("%w: profile %q has no weights", ErrValidation, p.Name)
	}
	if !p.Normalize.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown normalization method %q", ErrValidation, p.Normalize.Method)
	}
	if p.Normalize.Temperature < 0 {
		return nil, fmt.Errorf("%w: negative temperature", ErrValidation)
	}
	if p.TopN < 0 {
		return nil, fmt.Errorf("%w: negative top_n", ErrValidation)
	}

	var warnings []string
	for name := range p.Weights {
		if _, ok := m.known[name]; !ok {
			warnings = append(warnings, fmt.Sprintf("unknown signal %q will be ignored at match time", name))
			metrics.RecordProfileValidationWarning()
		}
	}
	sort.Strings(warnings)
	return warnings, nil
}

// Save validates and persists the profile, assigning an id and timestamps
// when missing. Returns any validation warnings.
func (m *Manager) Save(ctx context.Context, p *model.WeightProfile) ([]string, error) {
	warnings, err := m.Validate(p)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := m.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	doc, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile %s: %w", p.ID, err)
	}
	if err := m.store.Put(ctx, repository.CollectionProfiles, p.ID, doc); err != nil {
		return nil, fmt.Errorf("store profile %s: %w", p.ID, err)
	}
	metrics.RecordProfileOperation("save")
	for _, w := range warnings {
		m.logger.Warn(ctx, "profile validation warning",
			logger.String("profile", p.ID),
			logger.String("warning", w),
		)
	}
	return warnings, nil
}

// Get returns the profile stored under id, or the built-in default for
// DefaultProfileID when no stored profile shadows it.
func (m *Manager) Get(ctx context.Context, id string) (*model.WeightProfile, error) {
	doc, err := m.store.Get(ctx, repository.CollectionProfiles, id)
	if err != nil {
		if repository.IsNotFound(err) {
			if id == DefaultProfileID {
				return m.builtinDefault(), nil
			}
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}
	var p model.WeightProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	metrics.RecordProfileOperation("get")
	return &p, nil
}

// Resolve returns the profile for id, or the default profile when id is
// empty. An explicit unknown id fails with ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, id string) (*model.WeightProfile, error) {
	if id == "" {
		id = DefaultProfileID
	}
	return m.Get(ctx, id)
}

// Delete removes a stored profile.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, repository.CollectionProfiles, id); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	metrics.RecordProfileOperation("delete")
	return nil
}

// List returns every stored profile ordered by name then id.
func (m *Manager) List(ctx context.Context) ([]*model.WeightProfile, error) {
	docs, err := m.store.List(ctx, repository.CollectionProfiles)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]*model.WeightProfile, 0, len(docs))
	for _, doc := range docs {
		var p model.WeightProfile
		if err := json.Unmarshal(doc, &p); err != nil {
			m.logger.Warn(ctx, "skipping undecodable profile", logger.Error(err))
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DefaultForPersona returns a fresh profile seeded from the persona's
// default weight vector. The result is not persisted.
func (m *Manager) DefaultForPersona(persona string) (*model.WeightProfile, error) {
	vector, ok := personaWeights[persona]
	if !ok {
		return nil, fmt.Errorf("%w: persona %q", ErrNotFound, persona)
	}
	p := &model.WeightProfile{
		Name:      persona + " defaults",
		Persona:   persona,
		Weights:   make(map[string]float64, len(vector)),
		Normalize: defaultNormalization(),
		TopN:      20,
	}
	for k, v := range vector {
		p.Weights[k] = v
	}
	return p, nil
}

// GenerateVariants derives sibling profiles from a stored base by applying
// each named adjustment set on top of the base weights, persisting every
// variant. Adjustments add to the base weight; keys absent from the base
// are introduced.
func (m *Manager) GenerateVariants(ctx context.Context, baseID string, adjustments map[string]map[string]float64) ([]*model.WeightProfile, error) {
	base, err := m.Get(ctx, baseID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(adjustments))
	for n := range adjustments {
		names = append(names, n)
	}
	sort.Strings(names)

	variants := make([]*model.WeightProfile, 0, len(names))
	for _, name := range names {
		v := base.Clone()
		v.ID = uuid.NewString()
		v.Name = base.Name + "/" + name
		v.CreatedAt = time.Time{}
		for k, delta := range adjustments[name] {
			v.Weights[k] += delta
		}
		if _, err := m.Save(ctx, v); err != nil {
			return nil, fmt.Errorf("save variant %q: %w", name, err)
		}
		variants = append(variants, v)
	}
	metrics.RecordProfileOperation("variants")
	return variants, nil
}

// Export serializes a stored profile for transfer.
func (m *Manager) Export(ctx context.Context, id string) ([]byte, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export profile %s: %w", id, err)
	}
	metrics.RecordProfileOperation("export")
	return data, nil
}

// Import deserializes an exported profile and persists it under a fresh
// id with fresh timestamps, returning the stored copy and any validation
// warnings.
func (m *Manager) Import(ctx context.Context, data []byte) (*model.WeightProfile, []string, error) {
	var p model.WeightProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("%w: undecodable profile payload: %v", ErrValidation, err)
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Time{}
	warnings, err := m.Save(ctx, &p)
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordProfileOperation("import")
	return &p, warnings, nil
}

func (m *Manager) builtinDefault() *model.WeightProfile {
	p := &model.WeightProfile{
		ID:        DefaultProfileID,
		Name:      "Balanced default",
		Weights:   make(map[string]float64, len(defaultWeights)),
		Normalize: defaultNormalization(),
		TopN:      20,
	}
	for k, v := range defaultWeights {
		p.Weights[k] = v
	}
	return p
}
