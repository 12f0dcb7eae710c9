package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/decaylab/decay/internal/contract"
	"github.com/decaylab/decay/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withManagerStores temporarily installs stores on the global manager.
func withManagerStores(t *testing.T, archive contract.ArchiveStore) {
	t.Helper()
	prev := Manager
	Manager = &CacheStoreManager{archive: archive}
	t.Cleanup(func() { Manager = prev })
}

func TestExecuteArchiveExport(t *testing.T) {
	t.Run("requires an output file", func(t *testing.T) {
		err := ExecuteArchiveExport("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output-file is required")
	})

	t.Run("requires a configured archive", func(t *testing.T) {
		withManagerStores(t, nil)
		err := ExecuteArchiveExport("out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("rejects an empty archive", func(t *testing.T) {
		withManagerStores(t, newSQLiteArchiveStore(t))
		err := ExecuteArchiveExport(filepath.Join(t.TempDir(), "out"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no archived runs")
	})

	t.Run("writes runs and predictions files", func(t *testing.T) {
		store := newSQLiteArchiveStore(t)

		runID, err := store.BeginRun(time.Now().UTC(), "/repo", "main", "model.json")
		require.NoError(t, err)
		require.NoError(t, store.RecordPrediction(runID, schema.RiskPrediction{
			Path: "a.go", Score: 0.4, RawScore: 0.39, Level: schema.LowRisk,
		}))
		require.NoError(t, store.EndRun(runID, time.Now().UTC(), 1))

		withManagerStores(t, store)

		outputFile := filepath.Join(t.TempDir(), "export")
		require.NoError(t, ExecuteArchiveExport(outputFile))

		for _, suffix := range []string{".runs.parquet", ".predictions.parquet"} {
			info, err := os.Stat(outputFile + suffix)
			require.NoError(t, err, "expected %s%s", outputFile, suffix)
			assert.Positive(t, info.Size())
		}
	})
}
