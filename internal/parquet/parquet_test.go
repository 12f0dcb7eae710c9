package parquet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/decaylab/decay/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.parquet")

	predictions := []schema.RiskPrediction{
		{Path: "parser.go", Score: 0.82, RawScore: 0.80, Level: schema.HighRisk},
		{Path: "util.go", Score: 0.15, RawScore: 0.14, Level: schema.MinimalRisk},
	}
	require.NoError(t, WritePredictions(path, predictions))

	rows, err := parquet.ReadFile[PredictionRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "parser.go", rows[0].FilePath)
	assert.Equal(t, 0.82, rows[0].Score)
	assert.Equal(t, "high", rows[0].Level)
	assert.Equal(t, "minimal", rows[1].Level)
}

func TestWriteRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")

	end := time.Now().UTC().Truncate(time.Millisecond)
	runs := []schema.RunRecord{
		{RunID: 1, StartTime: end.Add(-time.Minute), EndTime: &end, RepoPath: "/repo", Branch: "main", ModelPath: "model.json", TotalFiles: 42},
		{RunID: 2, StartTime: end, RepoPath: "/repo", Branch: "main", ModelPath: "model.json"},
	}
	require.NoError(t, WriteRuns(path, runs))

	rows, err := parquet.ReadFile[RunRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].RunID)
	assert.Equal(t, int32(42), rows[0].TotalFiles)
	require.NotNil(t, rows[0].EndTime)
	assert.True(t, rows[0].EndTime.Equal(end))
	assert.Nil(t, rows[1].EndTime, "unfinished runs keep a null end time")
}

func TestWriteArchivedPredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.parquet")

	in := []ArchivedPredictionRow{
		{RunID: 7, FilePath: "a.go", Score: 0.5, RawScore: 0.49, Level: "low"},
	}
	require.NoError(t, WriteArchivedPredictions(path, in))

	rows, err := parquet.ReadFile[ArchivedPredictionRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, in[0], rows[0])
}

func TestWriteRowsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WritePredictions(path, nil))

	rows, err := parquet.ReadFile[PredictionRow](path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
