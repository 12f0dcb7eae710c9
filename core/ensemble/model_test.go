package ensemble

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeModelFile materializes a model JSON document for load tests.
func writeModelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const flatModelJSON = `{
	"base_score": 0.0,
	"feature_names": ["churn", "commits"],
	"trees": [
		{
			"left_children": [1, -1, -1],
			"right_children": [2, -1, -1],
			"split_indices": [0, 0, 0],
			"split_conditions": [50.0, 0.0, 0.0],
			"base_weights": [0.0, -1.0, 1.0]
		}
	],
	"risk_thresholds": [0.22, 0.47, 0.65]
}`

const nestedModelJSON = `{
	"base_score": 0.0,
	"feature_names": ["churn", "commits"],
	"trees": [
		{
			"root": {
				"feature_index": 0,
				"threshold": 50.0,
				"left": {"weight": -1.0},
				"right": {"weight": 1.0}
			}
		}
	],
	"risk_thresholds": [0.22, 0.47, 0.65]
}`

func TestLoadModel(t *testing.T) {
	t.Run("parallel-array encoding", func(t *testing.T) {
		m, err := LoadModel(writeModelFile(t, flatModelJSON))
		require.NoError(t, err)
		assert.Equal(t, 0.0, m.BaseScore)
		assert.Equal(t, []string{"churn", "commits"}, m.FeatureNames)
		require.Len(t, m.Trees, 1)
		require.Len(t, m.Trees[0].Nodes, 3)
		assert.False(t, m.Trees[0].Nodes[0].IsLeaf())
		assert.True(t, m.Trees[0].Nodes[1].IsLeaf())
		assert.Equal(t, []float64{0.22, 0.47, 0.65}, m.Boundaries)
		assert.Equal(t, Calibration{Scale: 1, Offset: 0}, m.Calibration)
	})

	t.Run("both encodings evaluate identically", func(t *testing.T) {
		flat, err := LoadModel(writeModelFile(t, flatModelJSON))
		require.NoError(t, err)
		nested, err := LoadModel(writeModelFile(t, nestedModelJSON))
		require.NoError(t, err)

		for _, churn := range []float64{0, 49.999, 50, 120} {
			a, err := evalTree(&flat.Trees[0], []float64{churn, 1})
			require.NoError(t, err)
			b, err := evalTree(&nested.Trees[0], []float64{churn, 1})
			require.NoError(t, err)
			assert.Equal(t, a, b, "encodings disagree at churn=%v", churn)
		}
	})

	t.Run("learner section supplies feature names", func(t *testing.T) {
		m, err := LoadModel(writeModelFile(t, `{
			"base_score": 0.1,
			"learner": {"feature_names": ["a", "b"]},
			"trees": [],
			"risk_thresholds": [0.2, 0.4, 0.6]
		}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, m.FeatureNames)
	})

	t.Run("explicit calibration", func(t *testing.T) {
		m, err := LoadModel(writeModelFile(t, `{
			"base_score": 0,
			"feature_names": ["a"],
			"trees": [],
			"risk_thresholds": [0.2, 0.4, 0.6],
			"calibration": {"scale": 0.9, "offset": 0.05}
		}`))
		require.NoError(t, err)
		assert.Equal(t, Calibration{Scale: 0.9, Offset: 0.05}, m.Calibration)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadModel(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot read model file")
	})

	t.Run("not json", func(t *testing.T) {
		_, err := LoadModel(writeModelFile(t, "not a model"))
		require.Error(t, err)
	})

	t.Run("no feature names", func(t *testing.T) {
		_, err := LoadModel(writeModelFile(t, `{
			"base_score": 0, "trees": [], "risk_thresholds": [0.2, 0.4, 0.6]
		}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no feature names")
	})

	t.Run("unrecognized tree encoding", func(t *testing.T) {
		_, err := LoadModel(writeModelFile(t, `{
			"base_score": 0,
			"feature_names": ["a"],
			"trees": [{"mystery": true}],
			"risk_thresholds": [0.2, 0.4, 0.6]
		}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tree 0")
	})

	t.Run("corrupt child ids rejected at load", func(t *testing.T) {
		_, err := LoadModel(writeModelFile(t, `{
			"base_score": 0,
			"feature_names": ["a"],
			"trees": [{
				"left_children": [-2],
				"right_children": [-2],
				"split_indices": [0],
				"split_conditions": [0],
				"base_weights": [0.5]
			}],
			"risk_thresholds": [0.2, 0.4, 0.6]
		}`))
		require.Error(t, err, "a dangling child id must never reach the evaluator")
		assert.Contains(t, err.Error(), "tree 0")
	})
}

func TestParseBaseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"scalar", `0.5`, 0.5, false},
		{"negative scalar", `-1.2`, -1.2, false},
		{"bracketed string", `"[0.5]"`, 0.5, false},
		{"plain string", `"0.25"`, 0.25, false},
		{"one-element array", `[0.5]`, 0.5, false},
		{"empty", ``, 0, false},
		{"two-element array", `[0.5, 0.6]`, 0, true},
		{"garbage string", `"[abc]"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBaseScore(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBoundaries(t *testing.T) {
	t.Run("three thresholds", func(t *testing.T) {
		b, err := parseBoundaries([]float64{0.2, 0.4, 0.6})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.2, 0.4, 0.6}, b)
	})

	t.Run("four thresholds drop the sentinel", func(t *testing.T) {
		b, err := parseBoundaries([]float64{0.2, 0.4, 0.6, 1.0})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.2, 0.4, 0.6}, b)
	})

	t.Run("too few", func(t *testing.T) {
		_, err := parseBoundaries([]float64{0.2, 0.4})
		require.Error(t, err)
	})

	t.Run("not ascending", func(t *testing.T) {
		_, err := parseBoundaries([]float64{0.6, 0.4, 0.2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ascending")
	})
}

func TestNormalizeFlatTree(t *testing.T) {
	t.Run("child index out of range", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{5},
			RightChildren:   []int{-1},
			SplitIndices:    []int{0},
			SplitConditions: []float64{0},
			BaseWeights:     []float64{0},
		})
		require.Error(t, err)
	})

	t.Run("mismatched array lengths", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{-1},
			RightChildren:   []int{-1, -1},
			SplitIndices:    []int{0},
			SplitConditions: []float64{0},
			BaseWeights:     []float64{0},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disagree")
	})

	t.Run("negative child id other than -1 rejected", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{-2},
			RightChildren:   []int{-2},
			SplitIndices:    []int{0},
			SplitConditions: []float64{0},
			BaseWeights:     []float64{0},
		})
		require.Error(t, err, "a negative child id must be caught at load, not at evaluation")
	})

	t.Run("one-sided leaf rejected", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{1, -1},
			RightChildren:   []int{-1, -1},
			SplitIndices:    []int{0, 0},
			SplitConditions: []float64{0, 0},
			BaseWeights:     []float64{0, 0},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one child")
	})

	t.Run("self-referencing node rejected", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{0, -1},
			RightChildren:   []int{1, -1},
			SplitIndices:    []int{0, 0},
			SplitConditions: []float64{0, 0},
			BaseWeights:     []float64{0, 0},
		})
		require.Error(t, err, "a cycle through the root must not load")
	})

	t.Run("backward child reference rejected", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{1, 0, -1},
			RightChildren:   []int{2, 2, -1},
			SplitIndices:    []int{0, 0, 0},
			SplitConditions: []float64{0, 0, 0},
			BaseWeights:     []float64{0, 0, 0},
		})
		require.Error(t, err, "a node pointing back at an ancestor never terminates")
	})

	t.Run("orphaned node rejected", func(t *testing.T) {
		_, err := normalizeFlatTree(&flatTree{
			LeftChildren:    []int{1, -1, -1},
			RightChildren:   []int{1, -1, -1},
			SplitIndices:    []int{0, 0, 0},
			SplitConditions: []float64{0, 0, 0},
			BaseWeights:     []float64{0, 0, 0},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "referenced")
	})
}

func TestNormalizeNestedTree(t *testing.T) {
	t.Run("one-sided node rejected", func(t *testing.T) {
		fi := 0
		_, err := normalizeNestedTree(&nestedNode{
			FeatureIndex: &fi,
			Left:         &nestedNode{Weight: 1},
		})
		require.Error(t, err)
	})

	t.Run("missing feature index rejected", func(t *testing.T) {
		_, err := normalizeNestedTree(&nestedNode{
			Left:  &nestedNode{Weight: 1},
			Right: &nestedNode{Weight: 2},
		})
		require.Error(t, err)
	})
}

func TestCalibrationApply(t *testing.T) {
	identity := Calibration{Scale: 1, Offset: 0}
	assert.Equal(t, 0.37, identity.Apply(0.37))

	shifted := Calibration{Scale: 2, Offset: 0.1}
	assert.Equal(t, 1.0, shifted.Apply(0.9), "clamped at 1")
	assert.InDelta(t, 0.5, shifted.Apply(0.2), 1e-12)

	negative := Calibration{Scale: 1, Offset: -0.5}
	assert.Equal(t, 0.0, negative.Apply(0.2), "clamped at 0")
}
