package match

import (
	"context"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/okian/matchbox/internal/adapters/repository"
	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/pkg/logger"
	"github.com/okian/matchbox/pkg/metrics"
)

type pair struct {
	a, b string
}

// ComputeAll scores every unordered distinct pair in the corpus exactly
// once and persists the results in batched writes. A failing pair records
// an error and the run continues; cancellation stops new work but flushes
// matches already computed. The returned summary is always non-nil once
// the run has started.
func (e *Engine) ComputeAll(ctx context.Context, profileID string) (*model.BatchResult, error) {
	profile, err := e.Profile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	pairs := e.allPairs()
	started := e.now()
	metrics.RecordBatchRun()
	metrics.RecordBatchPairs(len(pairs))
	e.logger.Info(ctx, "batch run started",
		logger.String("profile", profile.ID),
		logger.Int("pairs", len(pairs)),
		logger.Int("workers", e.concurrency),
	)

	var (
		mu        sync.Mutex
		succeeded int
		skipped   int
		batchErrs []model.BatchError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	metrics.UpdateBatchWorkersActive(e.concurrency)
	defer metrics.UpdateBatchWorkersActive(0)

	for start := 0; start < len(pairs); start += e.batchSize {
		end := start + e.batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]

		if gctx.Err() != nil {
			mu.Lock()
			skipped += len(chunk)
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			docs := make(map[string][]byte, len(chunk))
			var chunkErrs []model.BatchError
			processed := 0

			for _, p := range chunk {
				if gctx.Err() != nil {
					break
				}
				processed++
				m, err := e.Calculate(gctx, e.corpus[p.a], e.corpus[p.b], profile)
				if err != nil {
					metrics.RecordBatchPairFailed()
					chunkErrs = append(chunkErrs, model.BatchError{
						PairKey: model.PairKey(p.a, p.b),
						Err:     err.Error(),
					})
					continue
				}
				doc, err := json.Marshal(m)
				if err != nil {
					metrics.RecordBatchPairFailed()
					chunkErrs = append(chunkErrs, model.BatchError{
						PairKey: m.EdgeID,
						Err:     fmt.Sprintf("encode match: %v", err),
					})
					continue
				}
				docs[m.EdgeID] = doc
			}

			flushed := len(docs)
			if err := e.flush(gctx, docs); err != nil {
				flushed = 0
				chunkErrs = append(chunkErrs, model.BatchError{
					PairKey: "",
					Err:     fmt.Sprintf("flush batch: %v", err),
				})
			}

			mu.Lock()
			succeeded += flushed
			skipped += len(chunk) - processed
			batchErrs = append(batchErrs, chunkErrs...)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures are data in the summary.
	_ = g.Wait()

	result := &model.BatchResult{
		Total:     len(pairs),
		Succeeded: succeeded,
		Failed:    len(batchErrs),
		Skipped:   skipped,
		Errors:    batchErrs,
		Duration:  e.now().Sub(started),
	}
	metrics.RecordBatchDuration(result.Duration.Seconds())
	e.logger.Info(ctx, "batch run finished",
		logger.String("profile", profile.ID),
		logger.Int("succeeded", result.Succeeded),
		logger.Int("failed", result.Failed),
		logger.Int("skipped", result.Skipped),
		logger.Duration("duration", result.Duration),
	)
	return result, nil
}

// allPairs generates every unordered distinct id pair exactly once, in
// deterministic order. Self-pairs cannot occur by construction.
func (e *Engine) allPairs() []pair {
	n := len(e.ids)
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{a: e.ids[i], b: e.ids[j]})
		}
	}
	return pairs
}

// flush writes computed matches in one batched operation. Flushing is
// best-effort under cancellation: a canceled group context still lets the
// completed chunk reach the store.
func (e *Engine) flush(ctx context.Context, docs map[string][]byte) error {
	if e.store == nil || len(docs) == 0 {
		return nil
	}
	// Detach from group cancellation so finished work is not lost.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := e.store.BatchWrite(ctx, repository.CollectionMatches, docs); err != nil {
		metrics.RecordStoreError()
		return err
	}
	metrics.RecordBatchFlush()
	return nil
}
