package core

import (
	"sort"

	"github.com/decaylab/decay/schema"
)

// rankPredictions sorts predictions by score in descending order and returns
// the top 'limit' entries. Ties keep the lexicographically smaller path first
// so output stays stable across runs.
func rankPredictions(predictions []schema.RiskPrediction, limit int) []schema.RiskPrediction {
	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Score != predictions[j].Score {
			return predictions[i].Score > predictions[j].Score
		}
		return predictions[i].Path < predictions[j].Path
	})
	if limit > 0 && len(predictions) > limit {
		return predictions[:limit]
	}
	return predictions
}

// filterByMinScore drops predictions scoring below the configured floor.
func filterByMinScore(predictions []schema.RiskPrediction, minScore float64) []schema.RiskPrediction {
	if minScore <= 0 {
		return predictions
	}
	kept := make([]schema.RiskPrediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Score >= minScore {
			kept = append(kept, p)
		}
	}
	return kept
}

// levelIndex returns the position of a level in the ascending severity order.
func levelIndex(level schema.RiskLevel) int {
	for i, l := range schema.OrderedRiskLevels {
		if l == level {
			return i
		}
	}
	return -1
}
