package ensemble

import (
	"fmt"
	"math"

	"github.com/decaylab/decay/schema"
)

// Scorer evaluates a loaded tree ensemble. It moves one way from unloaded to
// loaded; scoring before Load succeeds is a usage error, never a silent no-op.
// Once loaded, the model is read-only for the remainder of the process.
type Scorer struct {
	model  *Model
	loaded bool
}

// NewScorer returns an unloaded scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Load reads the model at path and transitions the scorer to loaded.
func (s *Scorer) Load(path string) error {
	model, err := LoadModel(path)
	if err != nil {
		return err
	}
	s.model = model
	s.loaded = true
	return nil
}

// Model returns the loaded model, or nil while unloaded.
func (s *Scorer) Model() *Model {
	return s.model
}

// ValidateFeatures checks that the caller's feature ordering exactly matches
// the model's feature-name list. A mismatch is a configuration error, not a
// recoverable one.
func (s *Scorer) ValidateFeatures(names []string) error {
	if !s.loaded {
		return fmt.Errorf("scorer is not loaded; call Load first")
	}
	if len(names) != len(s.model.FeatureNames) {
		return fmt.Errorf("feature count mismatch: pipeline produces %d features, model expects %d",
			len(names), len(s.model.FeatureNames))
	}
	for i, name := range names {
		if name != s.model.FeatureNames[i] {
			return fmt.Errorf("feature order mismatch at index %d: pipeline has %q, model expects %q",
				i, name, s.model.FeatureNames[i])
		}
	}
	return nil
}

// Score computes sigmoid(base + sum of per-tree contributions) for one
// feature vector. An ensemble with zero trees is valid and scores
// sigmoid(base) without error.
func (s *Scorer) Score(values []float64) (float64, error) {
	if !s.loaded {
		return 0, fmt.Errorf("scorer is not loaded; call Load first")
	}

	raw := s.model.BaseScore
	for i := range s.model.Trees {
		leaf, err := evalTree(&s.model.Trees[i], values)
		if err != nil {
			return 0, err
		}
		raw += leaf
	}
	return sigmoid(raw), nil
}

// Calibrate applies the model's post-processing stage to a raw score.
func (s *Scorer) Calibrate(score float64) (float64, error) {
	if !s.loaded {
		return 0, fmt.Errorf("scorer is not loaded; call Load first")
	}
	return s.model.Calibration.Apply(score), nil
}

// Classify assigns one of the four ordered risk levels. Comparisons are
// inclusive on the lower bucket: a score exactly on a boundary falls into the
// lower-risk bucket.
func (s *Scorer) Classify(score float64) (schema.RiskLevel, error) {
	if !s.loaded {
		return "", fmt.Errorf("scorer is not loaded; call Load first")
	}
	b := s.model.Boundaries
	switch {
	case score <= b[0]:
		return schema.MinimalRisk, nil
	case score <= b[1]:
		return schema.LowRisk, nil
	case score <= b[2]:
		return schema.ModerateRisk, nil
	default:
		return schema.HighRisk, nil
	}
}

// evalTree walks from the root: strictly-less-than descends left, otherwise
// right, until a leaf is reached.
func evalTree(t *Tree, values []float64) (float64, error) {
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.IsLeaf() {
			return node.Weight, nil
		}
		if node.Feature < 0 || node.Feature >= len(values) {
			return 0, fmt.Errorf("tree references feature index %d outside vector of length %d", node.Feature, len(values))
		}
		if values[node.Feature] < node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
