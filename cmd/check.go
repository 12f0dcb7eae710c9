package cmd

import (
	"github.com/decaylab/decay/core"
	"github.com/decaylab/decay/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo-path]",
	Short: "Enforce risk thresholds for CI/CD pipelines (fails build on violations)",
	Long: `Run the full prediction pipeline and fail with a non-zero exit code when
any file classifies at or above the gate level.

Designed specifically for CI/CD integration. The gate defaults to 'high', so
only the riskiest files break the build unless you tighten it.

Use cases:
- Pull request gates - block merges that push files into high risk
- Release validation - ensure no critical files before deployment
- Quality enforcement - maintain code health standards

Examples:
  # Fail when any file reaches high risk
  decay check --model risk_model.json

  # Stricter gate for a sensitive service
  decay check --model risk_model.json --fail-on moderate

  # Check a specific repository and window
  decay check /path/to/repo --model risk_model.json --since 30`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
