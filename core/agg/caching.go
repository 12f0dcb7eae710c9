package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
)

// currentCacheVersion defines the version of the cache entry layout.
const currentCacheVersion = 1

// cacheMaxAge bounds how long a cached aggregation stays usable.
const cacheMaxAge = 7 * 24 * time.Hour

// CachedAggregate wraps Aggregate with the activity cache. On a miss, the
// computed output is stored under a key derived from the repository state and
// the analysis window.
func CachedAggregate(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.AggregateOutput, error) {
	if mgr == nil {
		return Aggregate(ctx, cfg, client)
	}
	activity := mgr.GetActivityStore()
	if activity == nil {
		return Aggregate(ctx, cfg, client)
	}

	key := generateCacheKey(ctx, cfg, client)

	if result := checkCacheHit(activity, key); result != nil {
		return result, nil
	}

	result, err := Aggregate(ctx, cfg, client)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		_ = activity.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return result, nil
}

// checkCacheHit attempts to retrieve and validate a cached result.
func checkCacheHit(activity contract.CacheStore, key string) *schema.AggregateOutput {
	data, version, ts, err := activity.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version != currentCacheVersion {
		return nil
	}
	if time.Since(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}

	var result schema.AggregateOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// generateCacheKey creates a unique key based on the analysis parameters.
// The resolved branch hash invalidates the cache when the repository moves.
// Exclude patterns are folded in because they are applied before the result
// is cached; the sort keeps the key independent of pattern order.
func generateCacheKey(ctx context.Context, cfg *contract.Config, client contract.GitClient) string {
	branchHash, err := client.ResolveRef(ctx, cfg.RepoPath, cfg.Branch)
	if err != nil {
		branchHash = ""
	}

	excludes := append([]string(nil), cfg.Excludes...)
	sort.Strings(excludes)

	key := fmt.Sprintf("%s:%s:%d:%d:%s:%s",
		cfg.RepoPath,
		cfg.Branch,
		cfg.SinceDays,
		cfg.MaxCommits,
		branchHash,
		strings.Join(excludes, ","),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
