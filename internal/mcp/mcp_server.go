// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/decaylab/decay/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Decay MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Decay Risk Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_risk ---
	s.AddTool(mcp.NewTool("predict_risk",
		mcp.WithDescription("Score a repository's files for maintenance risk using git history and a pre-trained model."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithString("branch", mcp.Description("Branch or reference to analyze. Defaults to HEAD.")),
		mcp.WithString("model", mcp.Description("Path to the model file. Defaults to the configured model.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithNumber("min_score", mcp.Description("Only return files scoring at or above this value (0 to 1).")),
	), h.handlePredictRisk)

	// --- 2. Tool: inspect_model ---
	s.AddTool(mcp.NewTool("inspect_model",
		mcp.WithDescription("Inspect a pre-trained risk model: base score, tree count, feature names and classification boundaries."),
		mcp.WithString("model", mcp.Description("Path to the model file. Defaults to the configured model.")),
	), h.handleInspectModel)

	// --- 3. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List archived predict runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of runs returned.")),
	), h.handleListRuns)

	return s
}

// StartMCPServer starts the Decay MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
