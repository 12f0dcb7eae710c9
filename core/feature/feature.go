// Package feature derives fixed-order numeric feature vectors from file aggregates.
package feature

import (
	"math"
	"sort"

	"github.com/decaylab/decay/schema"
)

// highChurnThreshold is the fixed churn-per-commit cutoff for the
// is_high_churn_commit indicator.
const highChurnThreshold = 50.0

// featureNames is the canonical ordered list of feature names. This ordering
// is the contract the ensemble scorer validates its model against; it must
// stay in lockstep with Values.
var featureNames = []string{
	"lines_added",
	"lines_deleted",
	"commits",
	"authors",
	"churn",
	"lines_per_author",
	"churn_per_commit",
	"bug_ratio",
	"days_active",
	"commits_per_day",
	"net_lines",
	"code_stability",
	"is_high_churn_commit",
	"bug_commit_rate",
	"author_concentration",
	"lines_per_commit",
	"churn_rate",
	"modification_ratio",
	"churn_per_author",
	"deletion_rate",
	"commit_density",
	"feature_commits",
}

// Names returns the canonical ordered feature names.
func Names() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// Count returns the number of features each vector carries.
func Count() int {
	return len(featureNames)
}

// Transform maps each aggregate into one FeatureVector, preserving path
// identity. All divisions are guarded against zero denominators by flooring
// counts to 1. The derived formulas are fixed; downstream model coefficients
// assume these exact definitions.
func Transform(output *schema.AggregateOutput) []schema.FeatureVector {
	vectors := make([]schema.FeatureVector, 0, len(output.Files))
	for _, fa := range output.Files {
		vectors = append(vectors, FromAggregate(fa))
	}
	// Map iteration order is random; sort for deterministic downstream output.
	sort.Slice(vectors, func(i, j int) bool {
		return vectors[i].Path < vectors[j].Path
	})
	return vectors
}

// FromAggregate derives the feature vector for a single aggregate.
func FromAggregate(fa *schema.FileAggregate) schema.FeatureVector {
	added := float64(fa.LinesAdded)
	deleted := float64(fa.LinesRemoved)
	commits := float64(fa.Commits)
	authors := float64(fa.AuthorCount())

	flooredCommits := math.Max(commits, 1)
	flooredAuthors := math.Max(authors, 1)

	churn := added + deleted
	churnPerCommit := churn / flooredCommits
	netLines := added - deleted
	daysActive := activeDays(fa)
	bugCommits := float64(fa.BugCommits)

	return schema.FeatureVector{
		Path: fa.Path,

		LinesAdded:          added,
		LinesDeleted:        deleted,
		Commits:             commits,
		Authors:             authors,
		Churn:               churn,
		LinesPerAuthor:      (added + deleted) / flooredAuthors,
		ChurnPerCommit:      churnPerCommit,
		BugRatio:            bugCommits / flooredCommits,
		DaysActive:          daysActive,
		CommitsPerDay:       commits / daysActive,
		NetLines:            netLines,
		CodeStability:       1 / (1 + churnPerCommit),
		IsHighChurnCommit:   boolToFloat(churnPerCommit > highChurnThreshold),
		BugCommitRate:       bugCommits / daysActive,
		AuthorConcentration: 1 / flooredAuthors,
		LinesPerCommit:      churn / flooredCommits,
		ChurnRate:           churn / math.Max(1, netLines),
		ModificationRatio:   deleted / math.Max(1, added),
		ChurnPerAuthor:      churn / flooredAuthors,
		DeletionRate:        deleted / math.Max(1, churn),
		CommitDensity:       commits / daysActive,
		FeatureCommits:      commits - bugCommits,
	}
}

// Values extracts the plain ordered numeric vector in the exact order
// declared by Names.
func Values(v *schema.FeatureVector) []float64 {
	return []float64{
		v.LinesAdded,
		v.LinesDeleted,
		v.Commits,
		v.Authors,
		v.Churn,
		v.LinesPerAuthor,
		v.ChurnPerCommit,
		v.BugRatio,
		v.DaysActive,
		v.CommitsPerDay,
		v.NetLines,
		v.CodeStability,
		v.IsHighChurnCommit,
		v.BugCommitRate,
		v.AuthorConcentration,
		v.LinesPerCommit,
		v.ChurnRate,
		v.ModificationRatio,
		v.ChurnPerAuthor,
		v.DeletionRate,
		v.CommitDensity,
		v.FeatureCommits,
	}
}

// activeDays returns the activity span in whole days, floored to 1.
func activeDays(fa *schema.FileAggregate) float64 {
	span := fa.LastCommit.Sub(fa.FirstCommit)
	days := math.Ceil(span.Hours() / 24)
	return math.Max(1, days)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
