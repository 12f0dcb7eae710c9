// Package agg aggregates raw Git history into per-file activity summaries.
package agg

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
)

// Keyword sets used to classify commits from their lower-cased message.
// A commit may match several categories at once, or none.
var (
	bugKeywords      = []string{"fix", "bug", "patch", "hotfix", "bugfix"}
	featureKeywords  = []string{"feat", "feature", "add", "implement"}
	refactorKeywords = []string{"refactor", "clean", "improve"}
)

// sourceExtensions is the allow-list of file extensions treated as source
// code. Markup, config, image and docs files are excluded from aggregation.
var sourceExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".java": {}, ".c": {}, ".cc": {}, ".cpp": {}, ".h": {}, ".hpp": {},
	".cs": {}, ".rb": {}, ".php": {}, ".rs": {}, ".kt": {}, ".kts": {},
	".swift": {}, ".scala": {}, ".m": {}, ".mm": {}, ".sh": {}, ".pl": {},
	".lua": {}, ".ex": {}, ".exs": {}, ".erl": {}, ".clj": {}, ".hs": {},
}

// commitContext carries the state of the commit header currently being
// parsed. Every numstat line under the same header inherits it.
type commitContext struct {
	author     string
	timestamp  time.Time
	isBug      bool
	isFeature  bool
	isRefactor bool
	valid      bool
}

// Aggregate invokes the Git log facility once and folds its output into one
// FileAggregate per source file touched within the configured window.
// It returns an empty collection, not an error, when no source files are
// found; callers distinguish data sparsity from failure by the error value.
func Aggregate(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.AggregateOutput, error) {
	// Fail fast on a missing path, a non-repository, or an unknown branch.
	if err := contract.ValidateRepo(ctx, client, cfg.RepoPath, cfg.Branch); err != nil {
		return nil, err
	}

	out, err := client.GetHistoryLog(ctx, cfg.RepoPath, cfg.Branch, cfg.MaxCommits, cfg.StartTime)
	if err != nil {
		return nil, err
	}

	files := ParseHistory(out, cfg.Excludes)
	return &schema.AggregateOutput{Files: files}, nil
}

// ParseHistory processes the interleaved git log output. A line matching the
// commit-header shape resets the current commit context; a line matching the
// numstat shape is folded into the aggregate for its path using that context.
// Lines matching neither shape, including binary-file markers, are skipped
// without aborting the whole parse.
func ParseHistory(out []byte, excludes []string) map[string]*schema.FileAggregate {
	files := make(map[string]*schema.FileAggregate)
	var current commitContext

	for _, l := range strings.Split(string(out), "\n") {
		l = strings.Trim(l, " \t\r")

		if strings.HasPrefix(l, "--") {
			current = parseCommitHeader(l)
			continue
		}
		if l == "" {
			continue
		}

		path, add, del, ok := parseStatLine(l)
		if !ok {
			continue
		}
		if !IsSourceFile(path) || contract.ShouldIgnore(path, excludes) {
			continue
		}

		foldCommit(files, path, add, del, current)
	}

	return files
}

// parseCommitHeader extracts author, timestamp and category flags from a
// header line of the shape "--author|unixtime|subject".
func parseCommitHeader(line string) commitContext {
	parts := strings.SplitN(line[2:], "|", 3)
	if len(parts) != 3 {
		return commitContext{}
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return commitContext{}
	}

	msg := strings.ToLower(parts[2])
	return commitContext{
		author:     parts[0],
		timestamp:  time.Unix(ts, 0).UTC(),
		isBug:      matchesAny(msg, bugKeywords),
		isFeature:  matchesAny(msg, featureKeywords),
		isRefactor: matchesAny(msg, refactorKeywords),
		valid:      true,
	}
}

// matchesAny reports whether the message contains any of the keywords.
func matchesAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// parseStatLine parses a numstat line ("added\tremoved\tpath"). Lines whose
// numeric fields are non-numeric (e.g. the "-" markers git emits for binary
// files) are rejected.
func parseStatLine(line string) (path string, add, del int, ok bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return "", 0, 0, false
	}

	add, err := strconv.Atoi(parts[0])
	if err != nil || add < 0 {
		return "", 0, 0, false
	}
	del, err = strconv.Atoi(parts[1])
	if err != nil || del < 0 {
		return "", 0, 0, false
	}

	path = strings.TrimSpace(parts[2])
	if path == "" {
		return "", 0, 0, false
	}
	return path, add, del, true
}

// foldCommit updates the aggregate for a single path with the current commit
// context. Totals only grow and timestamps only widen, so folding is
// order-independent.
func foldCommit(files map[string]*schema.FileAggregate, path string, add, del int, current commitContext) {
	fa, exists := files[path]
	if !exists {
		fa = &schema.FileAggregate{
			Path:    path,
			Authors: make(map[string]struct{}),
		}
		files[path] = fa
	}

	fa.LinesAdded += add
	fa.LinesRemoved += del
	fa.Commits++

	if !current.valid {
		return
	}

	if current.author != "" {
		fa.Authors[current.author] = struct{}{}
	}
	if current.isBug {
		fa.BugCommits++
	}
	if current.isFeature {
		fa.FeatureCommits++
	}
	if current.isRefactor {
		fa.RefactorCommits++
	}
	if fa.FirstCommit.IsZero() || current.timestamp.Before(fa.FirstCommit) {
		fa.FirstCommit = current.timestamp
	}
	if current.timestamp.After(fa.LastCommit) {
		fa.LastCommit = current.timestamp
	}
}

// IsSourceFile reports whether the path carries a source-code extension.
func IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := sourceExtensions[ext]
	return ok
}
