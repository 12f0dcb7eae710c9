package agg

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/internal/iocache"
	"github.com/decaylab/decay/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func cachedOutputJSON(t *testing.T) []byte {
	t.Helper()
	out := &schema.AggregateOutput{
		Files: map[string]*schema.FileAggregate{
			"cached.go": {
				Path:    "cached.go",
				Commits: 3,
				Authors: map[string]struct{}{"alice": {}},
			},
		},
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	return data
}

func newCachedTestClient(repoPath string) *contract.MockGitClient {
	client := &contract.MockGitClient{}
	client.On("GetRepoRoot", mock.Anything, repoPath).Return(repoPath, nil)
	client.On("ResolveRef", mock.Anything, repoPath, "HEAD").Return("abc123", nil)
	client.On("GetHistoryLog", mock.Anything, repoPath, "HEAD", 0, time.Time{}).
		Return([]byte(sampleHistory), nil)
	return client
}

func TestCachedAggregate(t *testing.T) {
	t.Run("nil manager falls through to aggregation", func(t *testing.T) {
		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}
		client := newCachedTestClient(cfg.RepoPath)

		out, err := CachedAggregate(context.Background(), cfg, client, nil)
		require.NoError(t, err)
		assert.Len(t, out.Files, 1)
	})

	t.Run("nil activity store falls through", func(t *testing.T) {
		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}
		client := newCachedTestClient(cfg.RepoPath)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetActivityStore").Return(nil)

		out, err := CachedAggregate(context.Background(), cfg, client, mgr)
		require.NoError(t, err)
		assert.Len(t, out.Files, 1)
	})

	t.Run("cache hit skips aggregation", func(t *testing.T) {
		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}

		client := &contract.MockGitClient{}
		client.On("ResolveRef", mock.Anything, cfg.RepoPath, "HEAD").Return("abc123", nil)

		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).
			Return(cachedOutputJSON(t), currentCacheVersion, time.Now().Unix(), nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetActivityStore").Return(store)

		out, err := CachedAggregate(context.Background(), cfg, client, mgr)
		require.NoError(t, err)
		require.Len(t, out.Files, 1)
		assert.Equal(t, 3, out.Files["cached.go"].Commits)
		client.AssertNotCalled(t, "GetHistoryLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("version mismatch misses", func(t *testing.T) {
		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}
		client := newCachedTestClient(cfg.RepoPath)

		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).
			Return(cachedOutputJSON(t), currentCacheVersion+1, time.Now().Unix(), nil)
		store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetActivityStore").Return(store)

		out, err := CachedAggregate(context.Background(), cfg, client, mgr)
		require.NoError(t, err)
		assert.Contains(t, out.Files, "parser.go")
		store.AssertCalled(t, "Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything)
	})

	t.Run("stale entry misses", func(t *testing.T) {
		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}
		client := newCachedTestClient(cfg.RepoPath)

		stale := time.Now().Add(-cacheMaxAge - time.Hour).Unix()
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).
			Return(cachedOutputJSON(t), currentCacheVersion, stale, nil)
		store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetActivityStore").Return(store)

		out, err := CachedAggregate(context.Background(), cfg, client, mgr)
		require.NoError(t, err)
		assert.Contains(t, out.Files, "parser.go")
	})

	t.Run("exclude change does not reuse the cached entry", func(t *testing.T) {
		const history = "--alice|1700000000|fix parser crash\n" +
			"10\t5\tparser.go\n" +
			"3\t1\tvendor/lib.go\n"

		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}
		client := &contract.MockGitClient{}
		client.On("GetRepoRoot", mock.Anything, cfg.RepoPath).Return(cfg.RepoPath, nil)
		client.On("ResolveRef", mock.Anything, cfg.RepoPath, "HEAD").Return("abc123", nil)
		client.On("GetHistoryLog", mock.Anything, cfg.RepoPath, "HEAD", 0, time.Time{}).
			Return([]byte(history), nil)

		store, err := iocache.NewCacheStore("decay_activity", schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetActivityStore").Return(store)

		first, err := CachedAggregate(context.Background(), cfg, client, mgr)
		require.NoError(t, err)
		assert.Contains(t, first.Files, "vendor/lib.go", "exclude-free run sees the vendored file")

		excluded := cfg.Clone()
		excluded.Excludes = []string{"vendor/"}
		second, err := CachedAggregate(context.Background(), excluded, client, mgr)
		require.NoError(t, err)
		assert.NotContains(t, second.Files, "vendor/lib.go", "excluded file must not ride in on a cached result")
		assert.Contains(t, second.Files, "parser.go")
	})

	t.Run("miss populates the cache", func(t *testing.T) {
		cfg := &contract.Config{RepoPath: t.TempDir(), Branch: "HEAD"}
		client := newCachedTestClient(cfg.RepoPath)

		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).Return([]byte(nil), 0, int64(0), sql.ErrNoRows)
		store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetActivityStore").Return(store)

		out, err := CachedAggregate(context.Background(), cfg, client, mgr)
		require.NoError(t, err)
		assert.Contains(t, out.Files, "parser.go")
		store.AssertExpectations(t)
	})
}

func TestGenerateCacheKey(t *testing.T) {
	base := &contract.Config{RepoPath: "/repo", Branch: "HEAD", SinceDays: 180, MaxCommits: 1000}

	client := &contract.MockGitClient{}
	client.On("ResolveRef", mock.Anything, "/repo", "HEAD").Return("abc123", nil)

	k1 := generateCacheKey(context.Background(), base, client)
	k2 := generateCacheKey(context.Background(), base, client)
	assert.Equal(t, k1, k2, "key must be deterministic")
	assert.Len(t, k1, 64, "key is a hex-encoded SHA-256 digest")

	other := *base
	other.SinceDays = 30
	k3 := generateCacheKey(context.Background(), &other, client)
	assert.NotEqual(t, k1, k3, "different windows produce different keys")

	withExcludes := base.Clone()
	withExcludes.Excludes = []string{"vendor/", "testdata/"}
	k4 := generateCacheKey(context.Background(), withExcludes, client)
	assert.NotEqual(t, k1, k4, "exclude patterns participate in the key")

	reordered := base.Clone()
	reordered.Excludes = []string{"testdata/", "vendor/"}
	k5 := generateCacheKey(context.Background(), reordered, client)
	assert.Equal(t, k4, k5, "pattern order must not change the key")
}
