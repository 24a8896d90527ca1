package sheetsql

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// JobConfig is the YAML description of one conversion job: the target table,
// the column mappings, and the optional lookup set. Parse it with
// LoadJobConfig or ParseJobConfig, then resolve it with Resolve.
type JobConfig struct {
	// Table is the target table name
	Table string `yaml:"table"`
	// Database selects the dialect; defaults to postgresql
	Database string `yaml:"database"`
	// Mode selects insert, update, or upsert; defaults to insert
	Mode string `yaml:"mode"`
	// BatchSize is rows per batched statement; 0 means the default
	BatchSize int `yaml:"batch_size"`
	// Transaction wraps the output in BEGIN/COMMIT
	Transaction bool `yaml:"transaction"`
	// ConflictKeys is the upsert conflict target
	ConflictKeys []string `yaml:"conflict_keys"`
	// OnConflict selects "do update" or "do nothing" for upsert mode
	OnConflict string `yaml:"on_conflict"`
	// TrimStrings strips whitespace from character-typed cells
	TrimStrings *bool `yaml:"trim_strings"`
	// CastTypes enables per-type coercion
	CastTypes *bool `yaml:"cast_types"`
	// IgnoreNulls omits blank cells from UPDATE assignments
	IgnoreNulls bool `yaml:"ignore_nulls"`
	// Columns are the column mappings, in output order
	Columns []ColumnConfig `yaml:"columns"`
	// Lookups configures the enrichment pass
	Lookups LookupSetConfig `yaml:"lookups"`
}

// ColumnConfig is one column mapping in YAML form.
type ColumnConfig struct {
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	Type     string `yaml:"type"`
	Primary  bool   `yaml:"primary_key"`
	Nullable *bool  `yaml:"nullable"`
	Unique   bool   `yaml:"unique"`
	Default  string `yaml:"default"`
	Skip     bool   `yaml:"skip"`
}

// LookupSetConfig is the YAML form of a lookup set.
type LookupSetConfig struct {
	Enabled     bool           `yaml:"enabled"`
	PreviewOnly bool           `yaml:"preview_only"`
	Rules       []LookupConfig `yaml:"rules"`
}

// LookupConfig is one lookup rule in YAML form.
type LookupConfig struct {
	ID             string            `yaml:"id"`
	Source         string            `yaml:"source"`
	Target         string            `yaml:"target"`
	Type           string            `yaml:"type"`
	Values         map[string]string `yaml:"values"`
	Sheet          string            `yaml:"sheet"`
	KeyColumn      string            `yaml:"key_column"`
	ValueColumn    string            `yaml:"value_column"`
	Default        string            `yaml:"default"`
	CaseSensitive  bool              `yaml:"case_sensitive"`
	TrimKeys       *bool             `yaml:"trim_keys"`
	AllowOverwrite bool              `yaml:"allow_overwrite"`
}

// LoadJobConfig reads and parses a YAML job config from a file.
func LoadJobConfig(path string) (*JobConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to open config %s: %w", path, err)
	}
	defer f.Close()
	return ParseJobConfig(f)
}

// ParseJobConfig parses a YAML job config from a reader.
func ParseJobConfig(r io.Reader) (*JobConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to read config: %w", err)
	}
	var cfg JobConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("sheetsql: failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for structural problems: unknown database,
// mode, conflict action, or column type names, missing table or columns,
// duplicate targets, and mode-specific key requirements.
func (c *JobConfig) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("sheetsql: config is missing table name")
	}
	if _, err := ParseDatabaseType(valueOr(c.Database, string(DatabasePostgreSQL))); err != nil {
		return err
	}
	mode, err := ParseStatementMode(c.Mode)
	if err != nil {
		return err
	}
	if _, err := ParseConflictAction(c.OnConflict); err != nil {
		return err
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("sheetsql: config has no columns")
	}

	pkCount := 0
	seenTargets := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Source == "" {
			return fmt.Errorf("sheetsql: column %d is missing source", i)
		}
		target := valueOr(col.Target, col.Source)
		if seenTargets[target] {
			return fmt.Errorf("sheetsql: duplicate target column %q", target)
		}
		seenTargets[target] = true
		if col.Type != "" {
			if _, err := ParseColumnType(col.Type); err != nil {
				return err
			}
		}
		if col.Primary && !col.Skip {
			pkCount++
		}
	}

	switch mode {
	case ModeUpdate:
		if pkCount != 1 {
			return fmt.Errorf("%w: UPDATE mode requires exactly one primary key column", ErrMissingPrimaryKey)
		}
	case ModeUpsert:
		if len(c.ConflictKeys) == 0 && pkCount == 0 {
			return fmt.Errorf("%w: UPSERT mode requires conflict_keys or a primary key column", ErrMissingConflictKeys)
		}
	}

	for i, rule := range c.Lookups.Rules {
		if rule.Source == "" || rule.Target == "" {
			return fmt.Errorf("sheetsql: lookup %d is missing source or target", i)
		}
		srcType, err := ParseLookupSourceType(valueOr(rule.Type, "inline"))
		if err != nil {
			return err
		}
		if srcType == LookupSourceSheet && (rule.Sheet == "" || rule.KeyColumn == "" || rule.ValueColumn == "") {
			return fmt.Errorf("sheetsql: lookup %d needs sheet, key_column, and value_column", i)
		}
	}
	return nil
}

// SQLConfig resolves the generation settings. Validate must have passed.
func (c *JobConfig) SQLConfig() SQLConfig {
	cfg := NewSQLConfig(c.Table)
	cfg.Database, _ = ParseDatabaseType(valueOr(c.Database, string(DatabasePostgreSQL)))
	cfg.Mode, _ = ParseStatementMode(c.Mode)
	cfg.OnConflictAction, _ = ParseConflictAction(c.OnConflict)
	cfg.ConflictKeys = append([]string(nil), c.ConflictKeys...)
	if c.BatchSize > 0 {
		cfg.BatchSize = c.BatchSize
	}
	cfg.WrapInTransaction = c.Transaction
	cfg.TrimStrings = boolOr(c.TrimStrings, true)
	cfg.CastTypes = boolOr(c.CastTypes, true)
	cfg.IgnoreNullValues = c.IgnoreNulls
	return cfg
}

// Mappings resolves the column mappings. Columns default to TEXT, nullable,
// with the target named after the source.
func (c *JobConfig) Mappings() []ColumnMapping {
	mappings := make([]ColumnMapping, 0, len(c.Columns))
	for _, col := range c.Columns {
		if col.Skip {
			continue
		}
		colType := ColumnTypeText
		if col.Type != "" {
			colType, _ = ParseColumnType(col.Type)
		}
		mappings = append(mappings, ColumnMapping{
			SourceColumn: col.Source,
			TargetColumn: valueOr(col.Target, col.Source),
			DataType:     colType,
			IsPrimaryKey: col.Primary,
			IsNullable:   boolOr(col.Nullable, !col.Primary),
			IsUnique:     col.Unique,
			DefaultValue: col.Default,
		})
	}
	return mappings
}

// LookupSet resolves the lookup set. Rules without an id get "lookup_<n>".
func (c *JobConfig) LookupSet() VLookupSet {
	set := VLookupSet{
		Enabled:     c.Lookups.Enabled,
		PreviewOnly: c.Lookups.PreviewOnly,
	}
	for i, rule := range c.Lookups.Rules {
		srcType, _ := ParseLookupSourceType(valueOr(rule.Type, "inline"))
		cfg := VLookupConfig{
			ID:             valueOr(rule.ID, fmt.Sprintf("lookup_%d", i+1)),
			SourceColumn:   rule.Source,
			TargetColumn:   rule.Target,
			SourceType:     srcType,
			InlineMap:      rule.Values,
			DefaultValue:   rule.Default,
			CaseSensitive:  rule.CaseSensitive,
			TrimKeys:       boolOr(rule.TrimKeys, true),
			AllowOverwrite: rule.AllowOverwrite,
		}
		if srcType == LookupSourceSheet {
			cfg.SheetLookup = &SheetLookup{
				SheetName:   rule.Sheet,
				KeyColumn:   rule.KeyColumn,
				ValueColumn: rule.ValueColumn,
			}
		}
		set.Lookups = append(set.Lookups, cfg)
	}
	return set
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
