package contract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/decaylab/decay/schema"
)

// Default values for configuration.
const (
	DefaultBranch      = "HEAD"
	DefaultSinceDays   = 180
	DefaultMaxCommits  = 1000
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 3
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a predict run.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath   string
	Branch     string
	SinceDays  int       // Trailing window in days; 0 means unlimited
	StartTime  time.Time // Derived from SinceDays; zero means unlimited
	MaxCommits int       // Cap on history entries to inspect; 0 means unlimited
	ModelPath  string

	ResultLimit int
	MinScore    float64 // Drop predictions scoring below this value
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Excludes    []string

	CheckLevel schema.RiskLevel // Gate level for the check command

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	ArchiveBackend   schema.DatabaseBackend
	ArchiveDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Branch           string  `mapstructure:"branch"`
	Since            int     `mapstructure:"since"`
	MaxCommits       int     `mapstructure:"max-commits"`
	Model            string  `mapstructure:"model"`
	Limit            int     `mapstructure:"limit"`
	MinScore         float64 `mapstructure:"min-score"`
	Precision        int     `mapstructure:"precision"`
	Output           string  `mapstructure:"output"`
	OutputFile       string  `mapstructure:"output-file"`
	Exclude          string  `mapstructure:"exclude"`
	CacheBackend     string  `mapstructure:"cache-backend"`
	CacheDBConnect   string  `mapstructure:"cache-db-connect"`
	ArchiveBackend   string  `mapstructure:"archive-backend"`
	ArchiveDBConnect string  `mapstructure:"archive-db-connect"`
	Color            string  `mapstructure:"color"`

	// --- Fields from checkCmd.Flags() ---
	FailOn string `mapstructure:"fail-on"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeWindow(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ModelPath = input.Model
	cfg.OutputFile = input.OutputFile

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. MinScore Validation ---
	if input.MinScore < 0.0 || input.MinScore > 1.0 {
		return fmt.Errorf("min-score must be between 0.0 and 1.0 (received %.3f)", input.MinScore)
	}
	cfg.MinScore = input.MinScore

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 4. Check Gate Validation ---
	if input.FailOn != "" {
		level := schema.RiskLevel(strings.ToLower(input.FailOn))
		if !validRiskLevel(level) {
			return fmt.Errorf("invalid --fail-on level '%s'. must be minimal, low, moderate, high", input.FailOn)
		}
		cfg.CheckLevel = level
	}

	// --- 5. Backend Validation ---
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	// --- 6. Excludes Processing ---
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			trimmedP := strings.TrimSpace(p)
			if trimmedP != "" {
				cfg.Excludes = append(cfg.Excludes, trimmedP)
			}
		}
	}

	return nil
}

// validRiskLevel reports whether l is one of the four ordered categories.
func validRiskLevel(l schema.RiskLevel) bool {
	for _, level := range schema.OrderedRiskLevels {
		if l == level {
			return true
		}
	}
	return false
}

// validateBackendConfigs validates cache and archive backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Archive Backend Validation ---
	cfg.ArchiveBackend = schema.DatabaseBackend(strings.ToLower(input.ArchiveBackend))
	if cfg.ArchiveBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.ArchiveBackend]; !ok {
			return fmt.Errorf("invalid archive backend '%s'. must be sqlite, mysql, postgresql, none", input.ArchiveBackend)
		}
		cfg.ArchiveDBConnect = input.ArchiveDBConnect
		if err := ValidateDatabaseConnectionString(cfg.ArchiveBackend, cfg.ArchiveDBConnect); err != nil {
			return err
		}

		// Cache and archive must not share the same SQLite file
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.ArchiveBackend == schema.SQLiteBackend {
			cacheDBPath := cfg.CacheDBConnect
			if cacheDBPath == "" {
				cacheDBPath = GetCacheDBFilePath()
			}
			archiveDBPath := cfg.ArchiveDBConnect
			if archiveDBPath == "" {
				archiveDBPath = GetArchiveDBFilePath()
			}
			if cacheDBPath == archiveDBPath {
				return fmt.Errorf("cache and archive storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
			}
		}
	}

	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// processTimeWindow derives the analysis window from the raw inputs.
func processTimeWindow(cfg *Config, input *ConfigRawInput) error {
	if input.Since < 0 {
		return fmt.Errorf("since must be zero or a positive number of days (received %d)", input.Since)
	}
	cfg.SinceDays = input.Since
	if input.Since > 0 {
		cfg.StartTime = time.Now().Add(-time.Duration(input.Since) * 24 * time.Hour)
	}

	if input.MaxCommits < 0 {
		return fmt.Errorf("max-commits must be zero or positive (received %d)", input.MaxCommits)
	}
	cfg.MaxCommits = input.MaxCommits

	cfg.Branch = strings.TrimSpace(input.Branch)
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}

	return nil
}

// resolveRepoPath resolves and validates the Git repository location.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = filepath.Clean(absSearchPath)

	return ValidateRepo(ctx, client, cfg.RepoPath, cfg.Branch)
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
