package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/internal/iocache"
	mcp_internal "github.com/decaylab/decay/internal/mcp"
	"github.com/decaylab/decay/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callTool dispatches one request against a registered tool.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestMCPServerTools(t *testing.T) {
	baseCfg := &contract.Config{
		RepoPath: ".",
		Branch:   "HEAD",
	}

	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	for _, name := range []string{"predict_risk", "inspect_model", "list_runs"} {
		assert.NotNil(t, s.GetTool(name), "Tool %s should be registered", name)
	}
}

func TestHandlePredictRiskErrors(t *testing.T) {
	baseCfg := &contract.Config{
		RepoPath: "/definitely/not/a/repo",
		Branch:   "HEAD",
	}

	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	res := callTool(t, s, "predict_risk", map[string]any{})
	assert.True(t, res.IsError, "The response should indicate an error state")
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "prediction failed")
}

func TestHandleInspectModel(t *testing.T) {
	modelPath := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{
		"base_score": 0.1,
		"feature_names": ["churn", "commits"],
		"trees": [],
		"risk_thresholds": [0.22, 0.47, 0.65]
	}`), 0o644))

	baseCfg := &contract.Config{ModelPath: modelPath}

	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	t.Run("summarizes the configured model", func(t *testing.T) {
		res := callTool(t, s, "inspect_model", map[string]any{})
		require.False(t, res.IsError)

		var payload struct {
			Path         string    `json:"path"`
			BaseScore    float64   `json:"base_score"`
			TreeCount    int       `json:"tree_count"`
			FeatureNames []string  `json:"feature_names"`
			Boundaries   []float64 `json:"boundaries"`
		}
		text := res.Content[0].(mcp.TextContent).Text
		require.NoError(t, json.Unmarshal([]byte(text), &payload))
		assert.Equal(t, modelPath, payload.Path)
		assert.Equal(t, 0.1, payload.BaseScore)
		assert.Zero(t, payload.TreeCount)
		assert.Equal(t, []string{"churn", "commits"}, payload.FeatureNames)
		assert.Equal(t, []float64{0.22, 0.47, 0.65}, payload.Boundaries)
	})

	t.Run("missing model reports an error", func(t *testing.T) {
		res := callTool(t, s, "inspect_model", map[string]any{
			"model": filepath.Join(t.TempDir(), "absent.json"),
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "model load failed")
	})
}

func TestHandleListRuns(t *testing.T) {
	baseCfg := &contract.Config{}

	t.Run("unconfigured archive reports an error", func(t *testing.T) {
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetArchiveStore").Return(nil)

		s := mcp_internal.NewMCPServer(baseCfg, mgr)
		res := callTool(t, s, "list_runs", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "not configured")
	})

	t.Run("returns archived runs", func(t *testing.T) {
		start := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
		store := &iocache.MockArchiveStore{}
		store.On("ListRuns", 5).Return([]schema.RunRecord{
			{RunID: 9, StartTime: start, RepoPath: "/repo", Branch: "main", ModelPath: "model.json", TotalFiles: 12},
		}, nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetArchiveStore").Return(store)

		s := mcp_internal.NewMCPServer(baseCfg, mgr)
		res := callTool(t, s, "list_runs", map[string]any{"limit": 5.0})
		require.False(t, res.IsError)

		var runs []schema.RunRecord
		text := res.Content[0].(mcp.TextContent).Text
		require.NoError(t, json.Unmarshal([]byte(text), &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, int64(9), runs[0].RunID)
		assert.Equal(t, 12, runs[0].TotalFiles)
	})
}
