package sheetsql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StatementMode selects the kind of data statement the generator emits.
type StatementMode int

const (
	// ModeInsert emits batched INSERT statements
	ModeInsert StatementMode = iota
	// ModeUpdate emits one UPDATE statement per row, keyed by the primary key
	ModeUpdate
	// ModeUpsert emits batched insert-or-update statements
	ModeUpsert
)

// String returns the mode label used in output headers.
func (m StatementMode) String() string {
	switch m {
	case ModeUpdate:
		return "UPDATE"
	case ModeUpsert:
		return "UPSERT"
	default:
		return "INSERT"
	}
}

// ParseStatementMode resolves a configuration string to a StatementMode.
func ParseStatementMode(name string) (StatementMode, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INSERT", "":
		return ModeInsert, nil
	case "UPDATE":
		return ModeUpdate, nil
	case "UPSERT":
		return ModeUpsert, nil
	default:
		return ModeInsert, fmt.Errorf("sheetsql: unknown statement mode %q", name)
	}
}

// ConflictAction selects what an UPSERT does when a conflict key matches.
type ConflictAction int

const (
	// ConflictDoUpdate updates every non-key column on conflict
	ConflictDoUpdate ConflictAction = iota
	// ConflictDoNothing skips conflicting rows
	ConflictDoNothing
)

// String returns the action label.
func (a ConflictAction) String() string {
	if a == ConflictDoNothing {
		return "DO NOTHING"
	}
	return "DO UPDATE"
}

// ParseConflictAction resolves a configuration string to a ConflictAction.
func ParseConflictAction(name string) (ConflictAction, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DO UPDATE", "":
		return ConflictDoUpdate, nil
	case "DO NOTHING":
		return ConflictDoNothing, nil
	default:
		return ConflictDoUpdate, fmt.Errorf("sheetsql: unknown conflict action %q", name)
	}
}

// SQLConfig configures one generation run.
type SQLConfig struct {
	// TableName is the target table
	TableName string
	// Mode selects INSERT, UPDATE, or UPSERT generation
	Mode StatementMode
	// Database selects the dialect
	Database DatabaseType
	// ConflictKeys is the UPSERT conflict target; falls back to the
	// primary-key mappings when empty
	ConflictKeys []string
	// BatchSize is the number of rows per batched statement
	BatchSize int
	// WrapInTransaction surrounds all statements with BEGIN/COMMIT
	WrapInTransaction bool
	// OnConflictAction selects DO UPDATE or DO NOTHING for UPSERT mode
	OnConflictAction ConflictAction
	// TrimStrings strips surrounding whitespace from character-typed cells
	TrimStrings bool
	// CastTypes enables per-type coercion; when false every value is
	// formatted as TEXT
	CastTypes bool
	// IgnoreNullValues omits blank cells from UPDATE assignments
	IgnoreNullValues bool
}

// NewSQLConfig returns a config with the package defaults.
func NewSQLConfig(tableName string) SQLConfig {
	return SQLConfig{
		TableName:   tableName,
		Mode:        ModeInsert,
		Database:    DatabasePostgreSQL,
		BatchSize:   DefaultBatchSize,
		TrimStrings: true,
		CastTypes:   true,
	}
}

// GenerateOptions tunes one GenerateSQL call.
type GenerateOptions struct {
	// IncludeCreateTable emits a CREATE TABLE statement before the data
	IncludeCreateTable bool
	// CreateIfNotExists adds IF NOT EXISTS to the CREATE TABLE
	CreateIfNotExists bool
	// IncludeHeader emits the leading comment block
	IncludeHeader bool
	// SourceFile names the input file in the comment block
	SourceFile string
	// Timestamp overrides the generation time in the comment block;
	// the zero value means time.Now()
	Timestamp time.Time
}

// GenerateResult is the outcome of one generation run.
type GenerateResult struct {
	// SQL is the full newline-separated statement text
	SQL string
	// Statements holds each emitted statement individually
	Statements []string
	// RowCount is the number of input rows processed
	RowCount int
	// Errors holds the non-fatal findings raised during generation
	Errors []ValidationError
}

// Generator turns mapped rows into SQL text for one dialect. Construct with
// NewGenerator; the zero value is not usable.
type Generator struct {
	dialect Dialect
	config  SQLConfig
}

// NewGenerator resolves the configured dialect from the registry and
// normalizes the config. A nil registry uses the built-in dialects.
func NewGenerator(registry *DialectRegistry, config SQLConfig) (*Generator, error) {
	if registry == nil {
		registry = NewDialectRegistry()
	}
	dialect, err := registry.Dialect(config.Database)
	if err != nil {
		return nil, err
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	return &Generator{dialect: dialect, config: config}, nil
}

// Dialect returns the resolved dialect.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// boundColumn is an active mapping resolved to a source column position.
// An index of -1 means the source column was not found; its cells read as
// blank.
type boundColumn struct {
	mapping ColumnMapping
	index   int
}

// bindMappings resolves active mappings against the input header, reporting
// unresolvable source columns as file-level errors.
func bindMappings(headers Header, mappings []ColumnMapping, errs *[]ValidationError) []boundColumn {
	active := activeMappings(mappings)
	bound := make([]boundColumn, 0, len(active))
	for _, m := range active {
		idx, err := headerIndex(headers, "", m.SourceColumn)
		if err != nil {
			*errs = append(*errs, ValidationError{
				Row:      0,
				Column:   m.SourceColumn,
				Message:  fmt.Sprintf("source column %q not found", m.SourceColumn),
				Severity: SeverityError,
			})
			idx = -1
		}
		bound = append(bound, boundColumn{mapping: m, index: idx})
	}
	return bound
}

// cellAt reads the bound cell from a row; out-of-range reads are blank.
func (b boundColumn) cellAt(row Record) string {
	if b.index < 0 || b.index >= len(row) {
		return ""
	}
	return row[b.index]
}

// formatCell renders one cell per the mapping's type and the config's
// coercion flags.
func (g *Generator) formatCell(m ColumnMapping, raw string) string {
	if g.config.TrimStrings && m.DataType.isCharacterType() {
		raw = strings.TrimSpace(raw)
	}
	colType := m.DataType
	if !g.config.CastTypes {
		colType = ColumnTypeText
	}
	return g.dialect.FormatValue(raw, colType)
}

// GenerateSQL turns mapped rows into batched SQL text. Data errors (NOT NULL
// violations) are reported but never stop generation; the offending cell is
// emitted as NULL. Configuration errors (unknown dialect, UPSERT without
// conflict keys) are returned as errors and produce no output.
func (g *Generator) GenerateSQL(headers Header, rows []Record, mappings []ColumnMapping, opts GenerateOptions) (*GenerateResult, error) {
	result := &GenerateResult{
		Statements: []string{},
		Errors:     []ValidationError{},
		RowCount:   len(rows),
	}

	bound := bindMappings(headers, mappings, &result.Errors)
	if len(bound) == 0 {
		result.SQL = g.renderSQL(result.Statements, result.RowCount, opts)
		return result, nil
	}

	var statements []string
	if opts.IncludeCreateTable {
		statements = append(statements, g.GenerateCreateTable(mappings, opts.CreateIfNotExists))
	}

	var dataStatements []string
	switch g.config.Mode {
	case ModeUpdate:
		dataStatements = g.generateUpdates(bound, rows, &result.Errors)
	case ModeUpsert:
		upserts, err := g.generateUpserts(bound, rows, &result.Errors)
		if err != nil {
			return nil, err
		}
		dataStatements = upserts
	default:
		dataStatements = g.generateInserts(bound, rows, &result.Errors)
	}

	statements = append(statements, dataStatements...)
	if g.config.WrapInTransaction && len(statements) > 0 {
		wrapped := make([]string, 0, len(statements)+2)
		wrapped = append(wrapped, g.dialect.BeginTransaction())
		wrapped = append(wrapped, statements...)
		wrapped = append(wrapped, g.dialect.CommitTransaction())
		statements = wrapped
	}

	result.Statements = statements
	result.SQL = g.renderSQL(statements, result.RowCount, opts)
	return result, nil
}

// renderSQL joins statements into the final text, with the optional leading
// comment block.
func (g *Generator) renderSQL(statements []string, rowCount int, opts GenerateOptions) string {
	var b strings.Builder
	if opts.IncludeHeader {
		b.WriteString(g.headerComment(rowCount, opts))
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(statements, "\n\n"))
	return b.String()
}

// headerComment builds the leading comment block.
func (g *Generator) headerComment(rowCount int, opts GenerateOptions) string {
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString("-- Generated by sheetsql\n")
	b.WriteString("-- Database: " + g.dialect.DisplayName() + "\n")
	if opts.SourceFile != "" {
		b.WriteString("-- File: " + opts.SourceFile + "\n")
	}
	b.WriteString("-- Rows: " + strconv.Itoa(rowCount) + "\n")
	b.WriteString("-- Mode: " + g.config.Mode.String() + "\n")
	b.WriteString("-- Generated: " + ts.Format(time.RFC3339) + "\n")
	return b.String()
}

// GenerateCreateTable emits the DDL for the active mappings: one column per
// mapping with NOT NULL, DEFAULT, and UNIQUE as configured, plus a PRIMARY
// KEY constraint when any mapping is marked primary key.
func (g *Generator) GenerateCreateTable(mappings []ColumnMapping, ifNotExists bool) string {
	active := activeMappings(mappings)

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(g.dialect.QuoteIdentifier(g.config.TableName))
	b.WriteString(" (\n")

	lines := make([]string, 0, len(active)+1)
	var pkColumns []string
	for _, m := range active {
		line := "  " + g.dialect.QuoteIdentifier(m.TargetColumn) + " " + m.DataType.String()
		if !m.IsNullable {
			line += " NOT NULL"
		}
		if m.DefaultValue != "" {
			line += " DEFAULT " + g.dialect.FormatValue(m.DefaultValue, m.DataType)
		}
		if m.IsUnique {
			line += " UNIQUE"
		}
		lines = append(lines, line)
		if m.IsPrimaryKey {
			pkColumns = append(pkColumns, g.dialect.QuoteIdentifier(m.TargetColumn))
		}
	}
	if len(pkColumns) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(pkColumns, ", ")+")")
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);")
	return b.String()
}

// formatRow renders one row's cells for the bound columns, raising a NOT
// NULL finding for blank cells in non-nullable columns. The row is still
// emitted with NULL in that position.
func (g *Generator) formatRow(bound []boundColumn, row Record, rowIdx int, errs *[]ValidationError) []string {
	values := make([]string, len(bound))
	for i, b := range bound {
		raw := b.cellAt(row)
		if isBlank(raw) && !b.mapping.IsNullable {
			*errs = append(*errs, ValidationError{
				Row:      rowIdx + 2,
				Column:   b.mapping.TargetColumn,
				Value:    raw,
				Message:  "null value in non-nullable column",
				Severity: SeverityError,
			})
		}
		values[i] = g.formatCell(b.mapping, raw)
	}
	return values
}

// quotedTargets returns the quoted target column list for bound columns.
func (g *Generator) quotedTargets(bound []boundColumn) []string {
	columns := make([]string, len(bound))
	for i, b := range bound {
		columns[i] = g.dialect.QuoteIdentifier(b.mapping.TargetColumn)
	}
	return columns
}

// batchTuples renders one batch of rows as value tuples.
func (g *Generator) batchTuples(bound []boundColumn, rows []Record, offset int, errs *[]ValidationError) []string {
	tuples := make([]string, len(rows))
	for i, row := range rows {
		tuples[i] = g.dialect.FormatBatchValues(g.formatRow(bound, row, offset+i, errs))
	}
	return tuples
}

// generateInserts emits one INSERT statement per batch of config.BatchSize
// rows. Batch boundaries are purely row-count based.
func (g *Generator) generateInserts(bound []boundColumn, rows []Record, errs *[]ValidationError) []string {
	table := g.dialect.QuoteIdentifier(g.config.TableName)
	columns := g.quotedTargets(bound)

	var statements []string
	for start := 0; start < len(rows); start += g.config.BatchSize {
		end := min(start+g.config.BatchSize, len(rows))
		tuples := g.batchTuples(bound, rows[start:end], start, errs)
		statements = append(statements, g.dialect.BuildInsert(table, columns, tuples))
	}
	return statements
}

// generateUpserts emits batched insert-or-update statements. The conflict
// target is config.ConflictKeys, falling back to the primary-key mappings;
// having neither is a configuration error.
func (g *Generator) generateUpserts(bound []boundColumn, rows []Record, errs *[]ValidationError) ([]string, error) {
	conflictKeys := append([]string(nil), g.config.ConflictKeys...)
	if len(conflictKeys) == 0 {
		for _, b := range bound {
			if b.mapping.IsPrimaryKey {
				conflictKeys = append(conflictKeys, b.mapping.TargetColumn)
			}
		}
	}
	if len(conflictKeys) == 0 {
		return nil, ErrMissingConflictKeys
	}

	isKey := make(map[string]bool, len(conflictKeys))
	for _, k := range conflictKeys {
		isKey[k] = true
	}

	quotedKeys := make([]string, len(conflictKeys))
	for i, k := range conflictKeys {
		quotedKeys[i] = g.dialect.QuoteIdentifier(k)
	}
	var updateColumns []string
	for _, b := range bound {
		if !isKey[b.mapping.TargetColumn] {
			updateColumns = append(updateColumns, g.dialect.QuoteIdentifier(b.mapping.TargetColumn))
		}
	}

	table := g.dialect.QuoteIdentifier(g.config.TableName)
	columns := g.quotedTargets(bound)
	doNothing := g.config.OnConflictAction == ConflictDoNothing

	var statements []string
	for start := 0; start < len(rows); start += g.config.BatchSize {
		end := min(start+g.config.BatchSize, len(rows))
		tuples := g.batchTuples(bound, rows[start:end], start, errs)
		statements = append(statements, g.dialect.BuildUpsert(table, columns, tuples, quotedKeys, updateColumns, doNothing))
	}
	return statements, nil
}

// generateUpdates emits one UPDATE per row keyed by the single primary-key
// mapping. A missing or ambiguous primary key is reported as a file-level
// finding and no statements are produced; the call itself does not fail.
func (g *Generator) generateUpdates(bound []boundColumn, rows []Record, errs *[]ValidationError) []string {
	var pk *boundColumn
	pkCount := 0
	for i := range bound {
		if bound[i].mapping.IsPrimaryKey {
			pk = &bound[i]
			pkCount++
		}
	}
	if pkCount != 1 {
		*errs = append(*errs, ValidationError{
			Row:      0,
			Column:   g.config.TableName,
			Message:  "UPDATE mode requires exactly one primary key mapping",
			Severity: SeverityError,
		})
		return nil
	}

	table := g.dialect.QuoteIdentifier(g.config.TableName)
	pkColumn := g.dialect.QuoteIdentifier(pk.mapping.TargetColumn)

	var statements []string
	for rowIdx, row := range rows {
		var assignments []string
		for _, b := range bound {
			if b.mapping.IsPrimaryKey {
				continue
			}
			raw := b.cellAt(row)
			if isBlank(raw) {
				if !b.mapping.IsNullable {
					*errs = append(*errs, ValidationError{
						Row:      rowIdx + 2,
						Column:   b.mapping.TargetColumn,
						Value:    raw,
						Message:  "null value in non-nullable column",
						Severity: SeverityError,
					})
				}
				if g.config.IgnoreNullValues {
					continue
				}
			}
			assignments = append(assignments,
				g.dialect.QuoteIdentifier(b.mapping.TargetColumn)+" = "+g.formatCell(b.mapping, raw))
		}
		if len(assignments) == 0 {
			continue
		}
		where := pkColumn + " = " + g.formatCell(pk.mapping, pk.cellAt(row))
		statements = append(statements, g.dialect.BuildUpdate(table, assignments, where))
	}
	return statements
}
