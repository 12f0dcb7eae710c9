package cmd

import (
	"github.com/decaylab/decay/core"
	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// modelSetup loads minimal configuration needed for model inspection.
// Model inspection does not touch a Git repository, so the full shared
// setup (which validates the repo path) is skipped.
func modelSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	cfg.ModelPath = viper.GetString("model")
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Precision = viper.GetInt("precision")

	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return err
	}
	cfg.UseColors = colors

	return nil
}

// modelSetupWrapper wraps modelSetup to provide PreRunE for the model command.
func modelSetupWrapper(_ *cobra.Command, _ []string) error {
	return modelSetup()
}

// modelCmd inspects a pre-trained model file.
var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect a pre-trained risk model file.",
	Long: `Load a model file and display its structure without scoring anything.

Displays:
- Base score and tree count
- The feature names the model expects, in order
- Classification boundaries for the risk levels

Use this to:
- Verify a model file parses before wiring it into CI
- Check that a model's feature contract matches this version of decay
- Compare boundaries across model revisions

Examples:
  # Inspect a model
  decay model --model risk_model.json

  # Machine-readable summary
  decay model --model risk_model.json --output json`,
	PreRunE: modelSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModelInfo(cfg); err != nil {
			contract.LogFatal("Cannot inspect model", err)
		}
	},
}
