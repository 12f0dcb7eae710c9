package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorCount(t *testing.T) {
	fa := &FileAggregate{}
	assert.Zero(t, fa.AuthorCount(), "nil author set counts zero")

	fa.Authors = map[string]struct{}{"alice": {}, "bob": {}}
	assert.Equal(t, 2, fa.AuthorCount())
}

func TestOrderedRiskLevels(t *testing.T) {
	require.Len(t, OrderedRiskLevels, 4)
	assert.Equal(t, MinimalRisk, OrderedRiskLevels[0])
	assert.Equal(t, HighRisk, OrderedRiskLevels[3])
}

func TestValidLookupTables(t *testing.T) {
	for _, mode := range []OutputMode{TextOut, CSVOut, JSONOut, ParquetOut} {
		_, ok := ValidOutputModes[mode]
		assert.True(t, ok, "mode %s must be valid", mode)
	}
	_, ok := ValidOutputModes[OutputMode("xml")]
	assert.False(t, ok)

	for _, backend := range []DatabaseBackend{SQLiteBackend, MySQLBackend, PostgreSQLBackend, NoneBackend} {
		_, ok := ValidDatabaseBackends[backend]
		assert.True(t, ok, "backend %s must be valid", backend)
	}
	_, ok = ValidDatabaseBackends[DatabaseBackend("redis")]
	assert.False(t, ok)
}

func TestRiskPredictionJSON(t *testing.T) {
	p := RiskPrediction{Path: "a.go", Score: 0.5, RawScore: 0.49, Level: ModerateRisk}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"a.go","score":0.5,"raw_score":0.49,"level":"moderate"}`, string(data))
}
