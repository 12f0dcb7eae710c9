package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/decaylab/decay/core"
	"github.com/decaylab/decay/core/ensemble"
	"github.com/decaylab/decay/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handlePredictRisk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if b := request.GetString("branch", ""); b != "" {
		cfg.Branch = b
	}
	if m := request.GetString("model", ""); m != "" {
		cfg.ModelPath = m
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	if s := request.GetFloat("min_score", 0); s > 0 {
		cfg.MinScore = s
	}

	ranked, stats, err := core.GetRiskResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}

	payload := map[string]any{
		"predictions": ranked,
		"stats":       stats,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleInspectModel(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modelPath := request.GetString("model", h.baseCfg.ModelPath)

	m, err := ensemble.LoadModel(modelPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("model load failed: %v", err)), nil
	}

	payload := map[string]any{
		"path":          modelPath,
		"base_score":    m.BaseScore,
		"tree_count":    len(m.Trees),
		"feature_names": m.FeatureNames,
		"boundaries":    m.Boundaries,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListRuns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetArchiveStore()
	if store == nil {
		return mcp.NewToolResultError("run archiving is not configured"), nil
	}

	limit := request.GetInt("limit", 0)
	runs, err := store.ListRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing runs failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
