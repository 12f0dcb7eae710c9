// Package ensemble loads and evaluates serialized gradient-boosted tree models.
package ensemble

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Node is the normalized form of one tree node. Internal nodes carry a
// feature index, a split threshold and child indices; leaves carry a weight
// and -1 children.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Weight    float64
}

// IsLeaf reports whether the node terminates evaluation.
func (n *Node) IsLeaf() bool {
	return n.Left == -1
}

// Tree is one regression tree, rooted at Nodes[0].
type Tree struct {
	Nodes []Node
}

// Calibration is the optional post-processing stage applied to raw sigmoid
// scores before classification. Identity unless the model file says otherwise.
type Calibration struct {
	Scale  float64 `json:"scale"`
	Offset float64 `json:"offset"`
}

// Apply maps a raw score to its calibrated value, clamped to [0, 1].
func (c Calibration) Apply(score float64) float64 {
	v := score*c.Scale + c.Offset
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Model is the in-memory, read-only representation of a loaded ensemble.
type Model struct {
	BaseScore    float64
	FeatureNames []string
	Trees        []Tree
	Boundaries   []float64 // Three ascending bucket boundaries
	Calibration  Calibration
}

// modelFile mirrors the on-disk model structure. Trees and the base score
// are kept raw because they come in more than one historical encoding.
type modelFile struct {
	BaseScore      json.RawMessage   `json:"base_score"`
	FeatureNames   []string          `json:"feature_names"`
	Learner        *learnerSection   `json:"learner"`
	Trees          []json.RawMessage `json:"trees"`
	RiskThresholds []float64         `json:"risk_thresholds"`
	Calibration    *Calibration      `json:"calibration"`
}

// learnerSection covers model files that nest the feature-name list under a
// learner sub-structure.
type learnerSection struct {
	FeatureNames []string `json:"feature_names"`
}

// flatTree is the parallel-array tree encoding: arrays indexed by node id,
// with a left-child id of -1 marking a leaf.
type flatTree struct {
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	BaseWeights     []float64 `json:"base_weights"`
}

// nestedTree is the node-object tree encoding.
type nestedTree struct {
	Root *nestedNode `json:"root"`
}

type nestedNode struct {
	FeatureIndex *int        `json:"feature_index"`
	Threshold    float64     `json:"threshold"`
	Left         *nestedNode `json:"left"`
	Right        *nestedNode `json:"right"`
	Weight       float64     `json:"weight"`
}

// LoadModel reads and parses a model description from path. Partial or
// corrupt models are rejected outright; there is no partial acceptance.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read model file %q: %w", path, err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("model file %q is not a valid model description: %w", path, err)
	}

	m := &Model{}

	if m.BaseScore, err = parseBaseScore(mf.BaseScore); err != nil {
		return nil, fmt.Errorf("model file %q: %w", path, err)
	}

	m.FeatureNames = mf.FeatureNames
	if len(m.FeatureNames) == 0 && mf.Learner != nil {
		m.FeatureNames = mf.Learner.FeatureNames
	}
	if len(m.FeatureNames) == 0 {
		return nil, fmt.Errorf("model file %q carries no feature names", path)
	}

	for i, raw := range mf.Trees {
		tree, err := parseTree(raw)
		if err != nil {
			return nil, fmt.Errorf("model file %q: tree %d: %w", path, i, err)
		}
		m.Trees = append(m.Trees, tree)
	}

	if m.Boundaries, err = parseBoundaries(mf.RiskThresholds); err != nil {
		return nil, fmt.Errorf("model file %q: %w", path, err)
	}

	m.Calibration = Calibration{Scale: 1, Offset: 0}
	if mf.Calibration != nil {
		m.Calibration = *mf.Calibration
	}

	return m, nil
}

// parseBaseScore accepts a plain scalar or the historical one-element
// array-like string encoding ("[0.5]").
func parseBaseScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return scalar, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(s, "[")
		s = strings.TrimSuffix(s, "]")
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("base score %q is not numeric", s)
		}
		return v, nil
	}

	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 {
		return arr[0], nil
	}

	return 0, fmt.Errorf("unrecognized base score encoding: %s", string(raw))
}

// parseTree detects the serialization shape by structural probing and
// normalizes both encodings to the same evaluation contract. The evaluator
// never branches on shape.
func parseTree(raw json.RawMessage) (Tree, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Tree{}, fmt.Errorf("unparseable tree: %w", err)
	}

	if _, ok := probe["left_children"]; ok {
		var ft flatTree
		if err := json.Unmarshal(raw, &ft); err != nil {
			return Tree{}, fmt.Errorf("invalid parallel-array tree: %w", err)
		}
		return normalizeFlatTree(&ft)
	}

	if _, ok := probe["root"]; ok {
		var nt nestedTree
		if err := json.Unmarshal(raw, &nt); err != nil {
			return Tree{}, fmt.Errorf("invalid nested-node tree: %w", err)
		}
		if nt.Root == nil {
			return Tree{}, fmt.Errorf("nested-node tree has no root")
		}
		return normalizeNestedTree(nt.Root)
	}

	return Tree{}, fmt.Errorf("unrecognized tree encoding (expected parallel arrays or nested nodes)")
}

// normalizeFlatTree validates the parallel arrays and copies them into nodes.
func normalizeFlatTree(ft *flatTree) (Tree, error) {
	n := len(ft.LeftChildren)
	if n == 0 {
		return Tree{}, fmt.Errorf("tree has no nodes")
	}
	if len(ft.RightChildren) != n || len(ft.SplitIndices) != n ||
		len(ft.SplitConditions) != n || len(ft.BaseWeights) != n {
		return Tree{}, fmt.Errorf("parallel arrays disagree on node count")
	}

	nodes := make([]Node, n)
	for i := range n {
		left, right := ft.LeftChildren[i], ft.RightChildren[i]
		if (left == -1) != (right == -1) {
			return Tree{}, fmt.Errorf("node %d has exactly one child; a leaf must drop both", i)
		}
		// Children must point forward so every walk terminates at a leaf.
		if left != -1 && (left <= i || left >= n || right <= i || right >= n) {
			return Tree{}, fmt.Errorf("node %d references child outside the range %d..%d", i, i+1, n-1)
		}
		nodes[i] = Node{
			Feature:   ft.SplitIndices[i],
			Threshold: ft.SplitConditions[i],
			Left:      left,
			Right:     right,
			Weight:    ft.BaseWeights[i],
		}
	}

	// Every non-root node is the child of exactly one split.
	refs := make([]int, n)
	for i := range n {
		if nodes[i].Left != -1 {
			refs[nodes[i].Left]++
			refs[nodes[i].Right]++
		}
	}
	for i := 1; i < n; i++ {
		if refs[i] != 1 {
			return Tree{}, fmt.Errorf("node %d is referenced %d times as a child; expected exactly once", i, refs[i])
		}
	}

	return Tree{Nodes: nodes}, nil
}

// normalizeNestedTree flattens the node-object encoding. A node with no
// children is a leaf.
func normalizeNestedTree(root *nestedNode) (Tree, error) {
	var nodes []Node

	var walk func(nn *nestedNode) (int, error)
	walk = func(nn *nestedNode) (int, error) {
		idx := len(nodes)
		nodes = append(nodes, Node{Left: -1, Right: -1})

		if nn.Left == nil && nn.Right == nil {
			nodes[idx].Weight = nn.Weight
			return idx, nil
		}
		if nn.Left == nil || nn.Right == nil {
			return 0, fmt.Errorf("internal node must have both children")
		}
		if nn.FeatureIndex == nil {
			return 0, fmt.Errorf("internal node is missing its feature index")
		}

		left, err := walk(nn.Left)
		if err != nil {
			return 0, err
		}
		right, err := walk(nn.Right)
		if err != nil {
			return 0, err
		}

		nodes[idx].Feature = *nn.FeatureIndex
		nodes[idx].Threshold = nn.Threshold
		nodes[idx].Left = left
		nodes[idx].Right = right
		return idx, nil
	}

	if _, err := walk(root); err != nil {
		return Tree{}, err
	}
	return Tree{Nodes: nodes}, nil
}

// parseBoundaries validates the threshold list. Historical model files carry
// either the three bucket boundaries or four values whose trailing entry is
// a maximum sentinel; only the first three drive classification.
func parseBoundaries(thresholds []float64) ([]float64, error) {
	if len(thresholds) < 3 || len(thresholds) > 4 {
		return nil, fmt.Errorf("expected 3 or 4 risk thresholds, got %d", len(thresholds))
	}
	if !sort.Float64sAreSorted(thresholds) {
		return nil, fmt.Errorf("risk thresholds must be ascending: %v", thresholds)
	}
	boundaries := make([]float64, 3)
	copy(boundaries, thresholds[:3])
	return boundaries, nil
}
