package schema

// Custom string types for type safety.
type (
	// RiskLevel represents one of the four ordered risk categories.
	RiskLevel string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and archiving.
	DatabaseBackend string
)

// All risk levels, in ascending order of severity.
const (
	MinimalRisk  RiskLevel = "minimal"
	LowRisk      RiskLevel = "low"
	ModerateRisk RiskLevel = "moderate"
	HighRisk     RiskLevel = "high"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// OrderedRiskLevels lists the four categories from lowest to highest.
var OrderedRiskLevels = []RiskLevel{MinimalRisk, LowRisk, ModerateRisk, HighRisk}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
