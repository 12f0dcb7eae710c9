package cmd

import (
	"github.com/decaylab/decay/core"
	"github.com/decaylab/decay/internal/contract"
	"github.com/spf13/cobra"
)

// featuresCmd renders the derived feature vectors without scoring them.
var featuresCmd = &cobra.Command{
	Use:   "features [repo-path]",
	Short: "Show the derived feature vectors the model would be fed.",
	Long: `Run the aggregation and feature stages only, then render the resulting
per-file vectors. No model file is needed.

Useful for:
- Inspecting exactly what the model sees for each file
- Exporting training data for a new model
- Debugging unexpected scores

Examples:
  # Print feature vectors as CSV
  decay features

  # Export vectors for training
  decay features --output csv --output-file features.csv

  # Inspect a single team's code
  decay features --exclude vendor/,docs/ --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFeatures(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot derive features", err)
		}
	},
}
