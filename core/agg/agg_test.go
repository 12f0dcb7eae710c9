package agg

import (
	"context"
	"testing"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// sampleHistory models two commits touching the same file by different
// authors: a bug fix and a feature addition.
const sampleHistory = "--alice|1700000000|fix parser crash\n" +
	"10\t5\tparser.go\n" +
	"--bob|1700086400|add feature flag\n" +
	"20\t0\tparser.go\n"

func TestParseHistory(t *testing.T) {
	t.Run("two commits one file", func(t *testing.T) {
		files := ParseHistory([]byte(sampleHistory), nil)
		require.Len(t, files, 1)

		fa := files["parser.go"]
		require.NotNil(t, fa)
		assert.Equal(t, 30, fa.LinesAdded)
		assert.Equal(t, 5, fa.LinesRemoved)
		assert.Equal(t, 2, fa.Commits)
		assert.Equal(t, 2, fa.AuthorCount())
		assert.Equal(t, 1, fa.BugCommits)
		assert.Equal(t, 1, fa.FeatureCommits)
		assert.Equal(t, 0, fa.RefactorCommits)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), fa.FirstCommit)
		assert.Equal(t, time.Unix(1700086400, 0).UTC(), fa.LastCommit)
	})

	t.Run("commit order does not matter", func(t *testing.T) {
		reversed := "--bob|1700086400|add feature flag\n" +
			"20\t0\tparser.go\n" +
			"--alice|1700000000|fix parser crash\n" +
			"10\t5\tparser.go\n"

		a := ParseHistory([]byte(sampleHistory), nil)
		b := ParseHistory([]byte(reversed), nil)
		assert.Equal(t, a["parser.go"], b["parser.go"])
	})

	t.Run("binary markers are skipped", func(t *testing.T) {
		history := "--alice|1700000000|fix icons\n" +
			"-\t-\tlogo.png\n" +
			"3\t1\tmain.go\n"

		files := ParseHistory([]byte(history), nil)
		require.Len(t, files, 1)
		assert.Contains(t, files, "main.go")
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		history := "--alice|1700000000|fix\n" +
			"not a stat line\n" +
			"x\ty\tbroken.go\n" +
			"-4\t2\tnegative.go\n" +
			"5\t2\tgood.go\n"

		files := ParseHistory([]byte(history), nil)
		require.Len(t, files, 1)
		fa := files["good.go"]
		require.NotNil(t, fa)
		assert.Equal(t, 5, fa.LinesAdded)
		assert.Equal(t, 2, fa.LinesRemoved)
	})

	t.Run("non-source files are excluded", func(t *testing.T) {
		history := "--alice|1700000000|docs update\n" +
			"5\t0\tREADME.md\n" +
			"5\t0\tconfig.yaml\n" +
			"5\t0\tserver.go\n"

		files := ParseHistory([]byte(history), nil)
		require.Len(t, files, 1)
		assert.Contains(t, files, "server.go")
	})

	t.Run("excluded paths are dropped", func(t *testing.T) {
		history := "--alice|1700000000|add generated code\n" +
			"100\t0\tvendor/lib.go\n" +
			"5\t0\tapp.go\n"

		files := ParseHistory([]byte(history), []string{"vendor/"})
		require.Len(t, files, 1)
		assert.Contains(t, files, "app.go")
	})

	t.Run("empty input yields empty result", func(t *testing.T) {
		files := ParseHistory(nil, nil)
		assert.Empty(t, files)
	})

	t.Run("stats without header still counted", func(t *testing.T) {
		// A stat line before any header has no commit context; churn and
		// commit counts still accumulate, category counters do not.
		history := "7\t2\torphan.go\n"

		files := ParseHistory([]byte(history), nil)
		require.Len(t, files, 1)
		fa := files["orphan.go"]
		assert.Equal(t, 7, fa.LinesAdded)
		assert.Equal(t, 1, fa.Commits)
		assert.Equal(t, 0, fa.AuthorCount())
		assert.Equal(t, 0, fa.BugCommits)
	})
}

func TestParseCommitHeader(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		author     string
		isBug      bool
		isFeature  bool
		isRefactor bool
		valid      bool
	}{
		{"bug fix", "--alice|1700000000|Fix null pointer", "alice", true, false, false, true},
		{"feature", "--bob|1700000000|implement retries", "bob", false, true, false, true},
		{"refactor", "--carol|1700000000|clean up handlers", "carol", false, false, true, true},
		{"hotfix counts as bug", "--dave|1700000000|HOTFIX: rollback", "dave", true, false, false, true},
		{"multiple categories", "--erin|1700000000|fix and refactor the parser", "erin", true, false, true, true},
		{"no category", "--frank|1700000000|bump version", "frank", false, false, false, true},
		{"subject with pipes", "--grace|1700000000|fix: a|b|c", "grace", true, false, false, true},
		{"bad timestamp", "--henry|notanumber|fix", "", false, false, false, false},
		{"missing fields", "--broken", "", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := parseCommitHeader(tt.line)
			assert.Equal(t, tt.valid, cc.valid)
			assert.Equal(t, tt.author, cc.author)
			assert.Equal(t, tt.isBug, cc.isBug)
			assert.Equal(t, tt.isFeature, cc.isFeature)
			assert.Equal(t, tt.isRefactor, cc.isRefactor)
		})
	}
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("cmd/server/main.go"))
	assert.True(t, IsSourceFile("lib/util.py"))
	assert.True(t, IsSourceFile("UPPER.GO"))
	assert.False(t, IsSourceFile("README.md"))
	assert.False(t, IsSourceFile("Makefile"))
	assert.False(t, IsSourceFile("assets/logo.svg"))
	assert.False(t, IsSourceFile("config.json"))
}

func TestAggregate(t *testing.T) {
	t.Run("empty window returns empty output", func(t *testing.T) {
		cfg := &contract.Config{
			RepoPath: t.TempDir(),
			Branch:   "HEAD",
		}

		client := &contract.MockGitClient{}
		client.On("GetRepoRoot", mock.Anything, cfg.RepoPath).Return(cfg.RepoPath, nil)
		client.On("ResolveRef", mock.Anything, cfg.RepoPath, "HEAD").Return("abc123", nil)
		client.On("GetHistoryLog", mock.Anything, cfg.RepoPath, "HEAD", 0, time.Time{}).Return([]byte(""), nil)

		output, err := Aggregate(context.Background(), cfg, client)
		require.NoError(t, err)
		assert.Empty(t, output.Files)
	})

	t.Run("missing repo path fails", func(t *testing.T) {
		cfg := &contract.Config{
			RepoPath: "/definitely/not/a/repo",
			Branch:   "HEAD",
		}

		client := &contract.MockGitClient{}
		_, err := Aggregate(context.Background(), cfg, client)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})
}
