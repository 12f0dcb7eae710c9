// Package schema has configs, models and global variables for all parts of decay.
package schema

import "time"

// FileAggregate holds the accumulated Git activity statistics for a single
// file within the analyzed window. It is created on the first observation of
// a path and mutated monotonically (sums and min/max only) while commits are
// folded in. Once aggregation completes it is treated as read-only.
type FileAggregate struct {
	Path            string              // Relative path to the file in the repository
	LinesAdded      int                 // Total lines added across all commits in the window
	LinesRemoved    int                 // Total lines removed across all commits in the window
	Commits         int                 // Number of commits touching this file
	Authors         map[string]struct{} // Distinct author identities (only the size matters downstream)
	BugCommits      int                 // Commits whose message matched bug-fix keywords
	FeatureCommits  int                 // Commits whose message matched feature keywords
	RefactorCommits int                 // Commits whose message matched refactor keywords
	FirstCommit     time.Time           // Earliest commit timestamp observed for this path
	LastCommit      time.Time           // Latest commit timestamp observed for this path
}

// AuthorCount returns the number of distinct authors seen for the file.
func (a *FileAggregate) AuthorCount() int {
	return len(a.Authors)
}

// AggregateOutput is the result of one aggregation pass: a mapping from file
// path to its aggregate. The map's lifetime is exactly one aggregator
// invocation.
type AggregateOutput struct {
	Files map[string]*FileAggregate
}

// FeatureVector is the fixed-order numeric representation of one
// FileAggregate plus its derived ratios. Field ordering is the contract the
// ensemble scorer depends on; see feature.Names for the canonical order.
type FeatureVector struct {
	Path string // Preserved for prediction identity, not a model feature

	LinesAdded          float64
	LinesDeleted        float64
	Commits             float64
	Authors             float64
	Churn               float64
	LinesPerAuthor      float64
	ChurnPerCommit      float64
	BugRatio            float64
	DaysActive          float64
	CommitsPerDay       float64
	NetLines            float64
	CodeStability       float64
	IsHighChurnCommit   float64
	BugCommitRate       float64
	AuthorConcentration float64
	LinesPerCommit      float64
	ChurnRate           float64
	ModificationRatio   float64
	ChurnPerAuthor      float64
	DeletionRate        float64
	CommitDensity       float64
	FeatureCommits      float64
}

// RiskPrediction is the final output for one file: the calibrated score, its
// risk level, and the raw pre-calibration score. Never mutated after creation.
type RiskPrediction struct {
	Path     string    `json:"path"`
	Score    float64   `json:"score"`
	RawScore float64   `json:"raw_score"`
	Level    RiskLevel `json:"level"`
}

// BatchStats summarizes the raw scores of one predict batch. Reported for
// observability only; it never feeds back into scoring.
type BatchStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// PredictOutput bundles the ranked predictions of one run with the batch
// statistics computed over the raw scores.
type PredictOutput struct {
	Predictions []RiskPrediction
	Stats       BatchStats
}

// RunRecord captures one archived predict run.
type RunRecord struct {
	RunID      int64
	StartTime  time.Time
	EndTime    *time.Time
	RepoPath   string
	Branch     string
	ModelPath  string
	TotalFiles int
}
