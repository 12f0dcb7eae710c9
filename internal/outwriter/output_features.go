package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
)

// WriteFeatures outputs derived feature rows. names is the canonical feature
// ordering and each row carries the numeric values for one path in that
// exact order.
func WriteFeatures(names []string, paths []string, rows [][]float64, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFeaturesJSON(w, names, paths, rows)
		}, "Wrote JSON")
	default:
		// Feature dumps are wide; CSV is the default and only tabular form.
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFeaturesCSV(w, names, paths, rows, fmtFloat)
		}, "Wrote CSV")
	}
}

// writeFeaturesCSV writes one row per path with a leading path column.
func writeFeaturesCSV(w io.Writer, names []string, paths []string, rows [][]float64, fmtFloat func(float64) string) error {
	header := append([]string{"path"}, names...)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, row := range rows {
			rec := make([]string, 0, len(row)+1)
			rec = append(rec, paths[i])
			for _, v := range row {
				rec = append(rec, fmtFloat(v))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFeaturesJSON writes one object per path keyed by feature name.
func writeFeaturesJSON(w io.Writer, names []string, paths []string, rows [][]float64) error {
	type jsonRow struct {
		Path     string             `json:"path"`
		Features map[string]float64 `json:"features"`
	}

	output := make([]jsonRow, len(rows))
	for i, row := range rows {
		features := make(map[string]float64, len(names))
		for j, name := range names {
			features[name] = row[j]
		}
		output[i] = jsonRow{Path: paths[i], Features: features}
	}
	return writeJSON(w, output)
}
