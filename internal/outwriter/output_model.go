package outwriter

import (
	"fmt"
	"io"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
)

// ModelSummary is the render-ready description of a loaded ensemble.
type ModelSummary struct {
	Path         string    `json:"path"`
	BaseScore    float64   `json:"base_score"`
	TreeCount    int       `json:"tree_count"`
	FeatureNames []string  `json:"feature_names"`
	Boundaries   []float64 `json:"boundaries"`
}

// WriteModelInfo renders a model summary as text or JSON.
func WriteModelInfo(summary ModelSummary, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		fmtFloat := createFormatter(cfg.Precision)
		fmt.Fprintf(w, "Model: %s\n", summary.Path)
		fmt.Fprintf(w, "Base score: %s\n", fmtFloat(summary.BaseScore))
		fmt.Fprintf(w, "Trees: %d\n", summary.TreeCount)
		fmt.Fprintf(w, "Features (%d):\n", len(summary.FeatureNames))
		for i, name := range summary.FeatureNames {
			fmt.Fprintf(w, "  %2d. %s\n", i, name)
		}
		fmt.Fprintf(w, "Risk boundaries:")
		for i, b := range summary.Boundaries {
			fmt.Fprintf(w, " %s<=%s", schema.OrderedRiskLevels[i], fmtFloat(b))
		}
		fmt.Fprintf(w, " else %s\n", schema.OrderedRiskLevels[len(schema.OrderedRiskLevels)-1])
		return nil
	}, "Wrote model info")
}
