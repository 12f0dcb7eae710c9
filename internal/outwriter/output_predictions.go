package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/internal/parquet"
	"github.com/decaylab/decay/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePredictions outputs ranked risk predictions, dispatching based on the
// configured output format.
func WritePredictions(predictions []schema.RiskPrediction, stats schema.BatchStats, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionsJSON(w, predictions, stats)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionsCSV(w, predictions, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WritePredictions(cfg.OutputFile, predictions); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Printf("Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionsTable(w, predictions, stats, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writePredictionsTable generates and writes the human-readable table.
func writePredictionsTable(w io.Writer, predictions []schema.RiskPrediction, stats schema.BatchStats, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Score", "Raw", "Level"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	var data [][]string
	for i, p := range predictions {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(p.Path, getMaxTablePathWidth()),
			fmtFloat(p.Score),
			fmtFloat(p.RawScore),
			label(p.Level),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d of %d scored files (raw mean: %s, stddev: %s, min: %s, max: %s)\n",
		len(predictions), stats.Count, fmtFloat(stats.Mean), fmtFloat(stats.StdDev), fmtFloat(stats.Min), fmtFloat(stats.Max)); err != nil {
		return err
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Prediction completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
			return err
		}
	}
	return nil
}

// writePredictionsCSV writes the predictions in CSV format.
func writePredictionsCSV(w io.Writer, predictions []schema.RiskPrediction, fmtFloat func(float64) string) error {
	header := []string{"rank", "path", "score", "raw_score", "level"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, p := range predictions {
			rec := []string{
				strconv.Itoa(i + 1),
				p.Path,
				fmtFloat(p.Score),
				fmtFloat(p.RawScore),
				contract.GetPlainLabel(p.Level),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePredictionsJSON writes the predictions plus batch stats in JSON format.
func writePredictionsJSON(w io.Writer, predictions []schema.RiskPrediction, stats schema.BatchStats) error {
	type jsonPrediction struct {
		Rank int `json:"rank"`
		schema.RiskPrediction
	}

	ranked := make([]jsonPrediction, len(predictions))
	for i, p := range predictions {
		ranked[i] = jsonPrediction{Rank: i + 1, RiskPrediction: p}
	}

	return writeJSON(w, struct {
		Predictions []jsonPrediction  `json:"predictions"`
		Stats       schema.BatchStats `json:"stats"`
	}{Predictions: ranked, Stats: stats})
}
