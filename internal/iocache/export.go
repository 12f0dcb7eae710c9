package iocache

import (
	"errors"
	"fmt"

	"github.com/decaylab/decay/internal/parquet"
)

// ExecuteArchiveExport exports archived run data to Parquet files.
func ExecuteArchiveExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetArchiveStore()
	if store == nil {
		return errors.New("archive store is not configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get archive status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no archived runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total prediction records: %d\n", status.TableSizes[archivePredictionsTable])

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Write runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRuns(runsFile, runs); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	// Collect predictions across all runs
	var rows []parquet.ArchivedPredictionRow
	for _, run := range runs {
		predictions, err := store.ListPredictions(run.RunID)
		if err != nil {
			return fmt.Errorf("failed to retrieve predictions for run %d: %w", run.RunID, err)
		}
		for _, p := range predictions {
			rows = append(rows, parquet.ArchivedPredictionRow{
				RunID:    run.RunID,
				FilePath: p.Path,
				Score:    p.Score,
				RawScore: p.RawScore,
				Level:    string(p.Level),
			})
		}
	}

	// Write predictions to Parquet
	predictionsFile := outputFile + ".predictions.parquet"
	if err := parquet.WriteArchivedPredictions(predictionsFile, rows); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	fmt.Printf("Exported %d prediction records to: %s\n", len(rows), predictionsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
