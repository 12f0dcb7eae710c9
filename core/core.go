// Package core has core logic for aggregation, scoring and ranking.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/decaylab/decay/core/agg"
	"github.com/decaylab/decay/core/ensemble"
	"github.com/decaylab/decay/core/feature"
	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/internal/outwriter"
	"github.com/decaylab/decay/schema"
)

// GetRiskResults runs the full pipeline and returns the ranked predictions
// with the batch statistics. Exposed for the MCP server, which renders its
// own responses instead of writing to stdout.
func GetRiskResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.RiskPrediction, schema.BatchStats, error) {
	client := contract.NewLocalGitClient()

	output, err := runPredictCore(ctx, cfg, client, mgr)
	if err != nil {
		return nil, schema.BatchStats{}, err
	}

	predictions := filterByMinScore(output.Predictions, cfg.MinScore)
	ranked := rankPredictions(predictions, cfg.ResultLimit)
	return ranked, output.Stats, nil
}

// ExecutePredict runs the full pipeline and renders ranked risk predictions.
// It serves as the main entry point for the 'predict' command.
func ExecutePredict(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	ranked, stats, err := GetRiskResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.WritePredictions(ranked, stats, cfg, duration)
}

// ExecuteFeatures stops the pipeline after the feature stage and renders the
// derived vectors. Useful for inspecting what the model would be fed.
func ExecuteFeatures(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	client := contract.NewLocalGitClient()

	output, err := agg.CachedAggregate(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}

	vectors := feature.Transform(output)
	paths := make([]string, len(vectors))
	rows := make([][]float64, len(vectors))
	for i := range vectors {
		paths[i] = vectors[i].Path
		rows[i] = feature.Values(&vectors[i])
	}
	return outwriter.WriteFeatures(feature.Names(), paths, rows, cfg)
}

// ExecuteModelInfo loads a model file and renders its structure: base score,
// feature names, tree count and classification boundaries.
func ExecuteModelInfo(cfg *contract.Config) error {
	scorer := ensemble.NewScorer()
	if err := scorer.Load(cfg.ModelPath); err != nil {
		return err
	}

	if err := scorer.ValidateFeatures(feature.Names()); err != nil {
		contract.LogWarn("Model does not match this pipeline's feature contract", err)
	}

	m := scorer.Model()
	return outwriter.WriteModelInfo(outwriter.ModelSummary{
		Path:         cfg.ModelPath,
		BaseScore:    m.BaseScore,
		TreeCount:    len(m.Trees),
		FeatureNames: m.FeatureNames,
		Boundaries:   m.Boundaries,
	}, cfg)
}

// ExecuteCheck runs the pipeline and fails with an error when any file
// classifies at or above the configured gate level. Designed for CI use; the
// caller maps the error to a non-zero exit code.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.CheckLevel == "" {
		cfg.CheckLevel = schema.HighRisk
	}

	client := contract.NewLocalGitClient()
	output, err := runPredictCore(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}

	gate := levelIndex(cfg.CheckLevel)
	var violations []schema.RiskPrediction
	for _, p := range output.Predictions {
		if levelIndex(p.Level) >= gate {
			violations = append(violations, p)
		}
	}

	if len(violations) > 0 {
		ranked := rankPredictions(violations, cfg.ResultLimit)
		if err := outwriter.WritePredictions(ranked, output.Stats, cfg, 0); err != nil {
			return err
		}
		return fmt.Errorf("%d file(s) at or above %s risk", len(violations), cfg.CheckLevel)
	}

	fmt.Printf("All %d analyzed files are below %s risk.\n", output.Stats.Count, cfg.CheckLevel)
	return nil
}
