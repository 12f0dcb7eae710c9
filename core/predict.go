// Package core wires the aggregation, feature and scoring stages into one pipeline.
package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/decaylab/decay/core/agg"
	"github.com/decaylab/decay/core/ensemble"
	"github.com/decaylab/decay/core/feature"
	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
)

// runPredictCore performs the common aggregate, transform and score steps.
// The pipeline is strictly synchronous: each stage consumes the previous
// stage's full output, one batch per invocation.
func runPredictCore(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.PredictOutput, error) {
	// --- 0. Begin run tracking (if configured) ---
	var runID int64
	var archive contract.ArchiveStore
	if mgr != nil {
		archive = mgr.GetArchiveStore()
	}
	if archive != nil {
		var err error
		runID, err = archive.BeginRun(time.Now(), cfg.RepoPath, cfg.Branch, cfg.ModelPath)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
			runID = 0
		}
	}

	// --- 1. Aggregation phase (with caching) ---
	output, err := agg.CachedAggregate(ctx, cfg, client, mgr)
	if err != nil {
		return nil, err
	}

	// --- 2. Feature derivation ---
	vectors := feature.Transform(output)

	// --- 3. Model loading and contract validation ---
	scorer := ensemble.NewScorer()
	if err := scorer.Load(cfg.ModelPath); err != nil {
		return nil, err
	}
	if err := scorer.ValidateFeatures(feature.Names()); err != nil {
		return nil, err
	}

	// --- 4. Scoring and classification ---
	predictions, stats, err := scoreBatch(scorer, vectors)
	if err != nil {
		return nil, err
	}

	// --- 5. End run tracking ---
	if archive != nil && runID > 0 {
		for _, p := range predictions {
			if err := archive.RecordPrediction(runID, p); err != nil {
				contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", p.Path), err)
				break
			}
		}
		if err := archive.EndRun(runID, time.Now(), len(predictions)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return &schema.PredictOutput{Predictions: predictions, Stats: stats}, nil
}

// scoreBatch evaluates every vector against the loaded model and computes the
// batch's raw-score statistics. The stats are reported for observability and
// never influence classification.
func scoreBatch(scorer *ensemble.Scorer, vectors []schema.FeatureVector) ([]schema.RiskPrediction, schema.BatchStats, error) {
	predictions := make([]schema.RiskPrediction, 0, len(vectors))
	raws := make([]float64, 0, len(vectors))

	for i := range vectors {
		raw, err := scorer.Score(feature.Values(&vectors[i]))
		if err != nil {
			return nil, schema.BatchStats{}, err
		}
		calibrated, err := scorer.Calibrate(raw)
		if err != nil {
			return nil, schema.BatchStats{}, err
		}
		level, err := scorer.Classify(calibrated)
		if err != nil {
			return nil, schema.BatchStats{}, err
		}

		predictions = append(predictions, schema.RiskPrediction{
			Path:     vectors[i].Path,
			Score:    calibrated,
			RawScore: raw,
			Level:    level,
		})
		raws = append(raws, raw)
	}

	return predictions, computeBatchStats(raws), nil
}

// computeBatchStats summarizes the raw scores of one batch.
func computeBatchStats(raws []float64) schema.BatchStats {
	if len(raws) == 0 {
		return schema.BatchStats{}
	}

	stats := schema.BatchStats{
		Count: len(raws),
		Min:   raws[0],
		Max:   raws[0],
	}

	var sum float64
	for _, r := range raws {
		sum += r
		stats.Min = math.Min(stats.Min, r)
		stats.Max = math.Max(stats.Max, r)
	}
	stats.Mean = sum / float64(len(raws))

	var sqDiff float64
	for _, r := range raws {
		d := r - stats.Mean
		sqDiff += d * d
	}
	stats.StdDev = math.Sqrt(sqDiff / float64(len(raws)))

	return stats
}
