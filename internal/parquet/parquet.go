// Package parquet exports prediction and archive data to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/decaylab/decay/schema"
	"github.com/parquet-go/parquet-go"
)

// PredictionRow represents one risk prediction in parquet form.
type PredictionRow struct {
	// FilePath is the relative path to the file in the repository
	FilePath string `parquet:"file_path,snappy"`

	// Score is the calibrated risk score used for classification
	Score float64 `parquet:"score,snappy"`

	// RawScore is the pre-calibration sigmoid score
	RawScore float64 `parquet:"raw_score,snappy"`

	// Level is the assigned risk category label
	Level string `parquet:"level,snappy"`
}

// RunRow represents one archived predict run in parquet form.
type RunRow struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RepoPath is the analyzed repository location
	RepoPath string `parquet:"repo_path,snappy"`

	// Branch is the analyzed branch reference
	Branch string `parquet:"branch,snappy"`

	// ModelPath is the model file used to score the run
	ModelPath string `parquet:"model_path,snappy"`

	// TotalFiles is the number of files scored in this run
	TotalFiles int32 `parquet:"total_files,snappy"`
}

// ArchivedPredictionRow represents one archived prediction joined to its run.
type ArchivedPredictionRow struct {
	// RunID identifies the archived run that produced this prediction
	RunID int64 `parquet:"run_id,snappy"`

	// FilePath is the relative path to the file in the repository
	FilePath string `parquet:"file_path,snappy"`

	// Score is the calibrated risk score used for classification
	Score float64 `parquet:"score,snappy"`

	// RawScore is the pre-calibration sigmoid score
	RawScore float64 `parquet:"raw_score,snappy"`

	// Level is the assigned risk category label
	Level string `parquet:"level,snappy"`
}

// WriteArchivedPredictions writes archived predictions to a parquet file at path.
func WriteArchivedPredictions(path string, rows []ArchivedPredictionRow) error {
	return writeRows(path, rows)
}

// WritePredictions writes predictions to a parquet file at path.
func WritePredictions(path string, predictions []schema.RiskPrediction) error {
	rows := make([]PredictionRow, len(predictions))
	for i, p := range predictions {
		rows[i] = PredictionRow{
			FilePath: p.Path,
			Score:    p.Score,
			RawScore: p.RawScore,
			Level:    string(p.Level),
		}
	}
	return writeRows(path, rows)
}

// WriteRuns writes archived run metadata to a parquet file at path.
func WriteRuns(path string, runs []schema.RunRecord) error {
	rows := make([]RunRow, len(runs))
	for i, r := range runs {
		rows[i] = RunRow{
			RunID:      r.RunID,
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			RepoPath:   r.RepoPath,
			Branch:     r.Branch,
			ModelPath:  r.ModelPath,
			TotalFiles: int32(r.TotalFiles),
		}
	}
	return writeRows(path, rows)
}

// writeRows writes any row slice to a parquet file.
func writeRows[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
