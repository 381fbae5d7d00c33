package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/pkg/logger"
	"github.com/okian/matchbox/pkg/metrics"
)

// FindRequest asks for the best matches for one actor. Candidates, when
// set, restricts the pool to those ids; Filter prunes candidates by
// attribute before any scoring. Threshold and Limit default to the
// resolved profile's threshold and top-N when zero.
type FindRequest struct {
	ActorID    string       `json:"actor_id"`
	Candidates []string     `json:"candidates,omitempty"`
	Filter     model.Filter `json:"filter"`
	ProfileID  string       `json:"profile_id,omitempty"`
	Threshold  float64      `json:"threshold,omitempty"`
	Limit      int          `json:"limit,omitempty"`
}

// Find scores the requested actor against the candidate pool and returns
// matches at or above the threshold, best first. Candidates failing the
// attribute filter are discarded before scoring.
func (e *Engine) Find(ctx context.Context, req FindRequest) ([]*model.Match, error) {
	metrics.RecordFindRequest()

	subject, err := e.Actor(req.ActorID)
	if err != nil {
		return nil, err
	}
	profile, err := e.Profile(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = profile.Threshold
	}
	limit := req.Limit
	if limit == 0 {
		limit = profile.TopN
	}

	pool := req.Candidates
	if len(pool) == 0 {
		pool = e.ids
	}

	results := make([]*model.Match, 0, len(pool))
	for _, id := range pool {
		if id == subject.ID {
			continue
		}
		candidate, ok := e.corpus[id]
		if !ok {
			return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, id)
		}
		if !req.Filter.Matches(candidate) {
			continue
		}
		m, err := e.Calculate(ctx, subject, candidate, profile)
		if err != nil {
			e.logger.Warn(ctx, "skipping candidate",
				logger.String("actor", subject.ID),
				logger.String("candidate", id),
				logger.Error(err),
			)
			continue
		}
		if m.Score < threshold {
			continue
		}
		results = append(results, m)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].EdgeID < results[j].EdgeID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
