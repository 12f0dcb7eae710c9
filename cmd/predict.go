package cmd

import (
	"github.com/decaylab/decay/core"
	"github.com/decaylab/decay/internal/contract"
	"github.com/spf13/cobra"
)

// predictCmd performs file-level risk prediction.
var predictCmd = &cobra.Command{
	Use:   "predict [repo-path]",
	Short: "Show the top files ranked by predicted maintenance risk.",
	Long: `Aggregate Git history, derive per-file features and score them with a
pre-trained gradient-boosted tree model.

The pipeline runs in three stages:
- History aggregation: parses the commit log into per-file activity statistics
- Feature derivation: turns each file's statistics into a fixed-order vector
- Ensemble scoring: evaluates the model and classifies each file's risk level

Scores fall between 0 and 1, and each file is labeled minimal, low, moderate
or high based on the model's classification boundaries.

Examples:
  # Score the current repository with a model file
  decay predict --model risk_model.json

  # Only look at the last 90 days of history
  decay predict --model risk_model.json --since 90

  # Show the 50 riskiest files as JSON
  decay predict --model risk_model.json --limit 50 --output json

  # Hide files that score below 0.5
  decay predict --model risk_model.json --min-score 0.5

  # Export findings to CSV for tracking
  decay predict --model risk_model.json --output csv --output-file risk.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePredict(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run risk prediction", err)
		}
	},
}
