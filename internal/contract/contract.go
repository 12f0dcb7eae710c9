// Package contract provides interfaces and shared utilities for decay's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/decaylab/decay/schema"
)

// GitClient defines the necessary operations for history aggregation.
// This allows the core pipeline to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// ResolveRef resolves a branch or reference name to a full commit hash.
	ResolveRef(ctx context.Context, repoPath string, ref string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path. Fails when the path is not inside a
	// working copy.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetHistoryLog returns the raw commit log output needed for per-file
	// aggregation: one header per commit (author, unix timestamp, subject)
	// interleaved with numstat lines. maxEntries <= 0 means unlimited and a
	// zero since time means no lower boundary.
	GetHistoryLog(ctx context.Context, repoPath, branch string, maxEntries int, since time.Time) ([]byte, error)
}

// CacheManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetArchiveStore() ArchiveStore
}

// CacheStore defines the interface for activity cache storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// ArchiveStore defines the interface for recording predict runs and their
// per-file predictions.
type ArchiveStore interface {
	// BeginRun creates a new run row and returns its unique ID.
	BeginRun(startTime time.Time, repoPath, branch, modelPath string) (int64, error)

	// EndRun updates the run with completion data.
	EndRun(runID int64, endTime time.Time, totalFiles int) error

	// RecordPrediction stores one file's prediction under the run.
	RecordPrediction(runID int64, p schema.RiskPrediction) error

	// ListRuns returns the archived runs, newest first.
	ListRuns(limit int) ([]schema.RunRecord, error)

	// ListPredictions returns the predictions stored for a run.
	ListPredictions(runID int64) ([]schema.RiskPrediction, error)

	// GetStatus returns status information about the archive store.
	GetStatus() (schema.ArchiveStatus, error)

	// Clear removes all archived runs and predictions.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}
