package sheetsql

import (
	"fmt"
	"strings"
)

// Defaults shared across the pipeline.
const (
	// DefaultBatchSize is the number of rows per generated INSERT statement.
	// The value is deliberately the single canonical default for the package.
	DefaultBatchSize = 1000
	// MaxSampleSize limits how many values are sampled for type inference
	MaxSampleSize = 1000
	// DefaultConfidenceThreshold is the minimum fraction of sampled values
	// that must match a type rule for the rule to be accepted
	DefaultConfidenceThreshold = 0.95
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// Header is an ordered sequence of column names.
type Header []string

// newHeader creates a new Header.
func newHeader(h []string) Header {
	return Header(h)
}

// Equal compares two headers element by element.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// clone returns an independent copy of the header.
func (h Header) clone() Header {
	return append(Header(nil), h...)
}

// Record is one row of cells. An empty cell is the package's NULL.
type Record []string

// newRecord creates a new Record.
func newRecord(r []string) Record {
	return Record(r)
}

// Equal compares two records element by element.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// clone returns an independent copy of the record.
func (r Record) clone() Record {
	return append(Record(nil), r...)
}

// Sheet is a named rectangular block of data: a header row plus records.
// Parsers pad ragged rows with empty cells up to the header length; rows
// longer than the header keep their extra cells. A Sheet is never mutated
// after construction; the VLOOKUP engine returns new rows rather than
// editing a Sheet in place.
type Sheet struct {
	// Name identifies the sheet (worksheet name, or file-derived table name)
	Name string
	// Headers is the first row of the source data
	Headers Header
	// Rows holds every data row after the header
	Rows []Record
}

// NewSheet creates a Sheet, padding each row with empty cells up to the
// header length.
func NewSheet(name string, headers Header, rows []Record) *Sheet {
	padded := make([]Record, len(rows))
	for i, row := range rows {
		if len(row) >= len(headers) {
			padded[i] = row
			continue
		}
		p := make(Record, len(headers))
		copy(p, row)
		padded[i] = p
	}
	return &Sheet{
		Name:    name,
		Headers: headers,
		Rows:    padded,
	}
}

// RowCount returns the number of data rows.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// Cell returns the value at (row, col), or the empty string when either
// index is out of range. Missing cells are NULL.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnType is a target SQL column type.
type ColumnType int

const (
	// ColumnTypeText represents the TEXT column type (catch-all)
	ColumnTypeText ColumnType = iota
	// ColumnTypeVarchar represents the VARCHAR column type
	ColumnTypeVarchar
	// ColumnTypeChar represents the CHAR column type
	ColumnTypeChar
	// ColumnTypeInteger represents a 32-bit INTEGER column type
	ColumnTypeInteger
	// ColumnTypeBigInt represents the BIGINT column type
	ColumnTypeBigInt
	// ColumnTypeDecimal represents the DECIMAL/NUMERIC column type
	ColumnTypeDecimal
	// ColumnTypeBoolean represents the BOOLEAN column type
	ColumnTypeBoolean
	// ColumnTypeDate represents the DATE column type
	ColumnTypeDate
	// ColumnTypeTime represents the TIME column type
	ColumnTypeTime
	// ColumnTypeTimestamp represents the TIMESTAMP column type
	ColumnTypeTimestamp
	// ColumnTypeTimestampTZ represents the TIMESTAMPTZ column type
	ColumnTypeTimestampTZ
	// ColumnTypeJSON represents the JSON column type
	ColumnTypeJSON
	// ColumnTypeJSONB represents the JSONB column type
	ColumnTypeJSONB
	// ColumnTypeUUID represents the UUID column type
	ColumnTypeUUID
)

// String returns the SQL type name.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeVarchar:
		return "VARCHAR"
	case ColumnTypeChar:
		return "CHAR"
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeBigInt:
		return "BIGINT"
	case ColumnTypeDecimal:
		return "DECIMAL"
	case ColumnTypeBoolean:
		return "BOOLEAN"
	case ColumnTypeDate:
		return "DATE"
	case ColumnTypeTime:
		return "TIME"
	case ColumnTypeTimestamp:
		return "TIMESTAMP"
	case ColumnTypeTimestampTZ:
		return "TIMESTAMPTZ"
	case ColumnTypeJSON:
		return "JSON"
	case ColumnTypeJSONB:
		return "JSONB"
	case ColumnTypeUUID:
		return "UUID"
	default:
		return "TEXT"
	}
}

// ParseColumnType resolves a SQL type name (case-insensitive) to a ColumnType.
func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TEXT", "":
		return ColumnTypeText, nil
	case "VARCHAR":
		return ColumnTypeVarchar, nil
	case "CHAR":
		return ColumnTypeChar, nil
	case "INTEGER", "INT":
		return ColumnTypeInteger, nil
	case "BIGINT":
		return ColumnTypeBigInt, nil
	case "DECIMAL", "NUMERIC", "REAL":
		return ColumnTypeDecimal, nil
	case "BOOLEAN", "BOOL":
		return ColumnTypeBoolean, nil
	case "DATE":
		return ColumnTypeDate, nil
	case "TIME":
		return ColumnTypeTime, nil
	case "TIMESTAMP":
		return ColumnTypeTimestamp, nil
	case "TIMESTAMPTZ":
		return ColumnTypeTimestampTZ, nil
	case "JSON":
		return ColumnTypeJSON, nil
	case "JSONB":
		return ColumnTypeJSONB, nil
	case "UUID":
		return ColumnTypeUUID, nil
	default:
		return ColumnTypeText, fmt.Errorf("sheetsql: unknown column type %q", name)
	}
}

// isCharacterType reports whether the type holds free-form text.
func (ct ColumnType) isCharacterType() bool {
	switch ct {
	case ColumnTypeText, ColumnTypeVarchar, ColumnTypeChar:
		return true
	default:
		return false
	}
}

// ColumnMapping maps a source spreadsheet column to a target SQL column with
// its type and constraints. A mapping with an empty TargetColumn is inactive
// and does not participate in validation or generation.
type ColumnMapping struct {
	// SourceColumn is the spreadsheet header name this mapping reads from
	SourceColumn string
	// TargetColumn is the SQL column name; empty means the mapping is inactive
	TargetColumn string
	// DataType is the target SQL type for value coercion
	DataType ColumnType
	// IsPrimaryKey marks the column as part of the table primary key
	IsPrimaryKey bool
	// IsNullable allows NULL values; false makes blank cells a violation
	IsNullable bool
	// IsUnique requires distinct values across the whole dataset
	IsUnique bool
	// DefaultValue is emitted in CREATE TABLE as the column DEFAULT
	DefaultValue string
}

// IsActive reports whether the mapping participates in generation.
func (m ColumnMapping) IsActive() bool {
	return strings.TrimSpace(m.TargetColumn) != ""
}

// activeMappings filters mappings down to those with a target column.
func activeMappings(mappings []ColumnMapping) []ColumnMapping {
	active := make([]ColumnMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.IsActive() {
			active = append(active, m)
		}
	}
	return active
}

// Severity ranks a validation finding.
type Severity int

const (
	// SeverityError marks a finding that a strict consumer should reject
	SeverityError Severity = iota
	// SeverityWarning marks a finding that is tolerable but suspect
	SeverityWarning
)

// String returns the severity label.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// ValidationError is one constraint or coercion finding. Row is the 1-indexed
// display row (header row included, so data row 0 reports as row 2); Row 0
// means the finding applies to the whole file or configuration.
type ValidationError struct {
	Row      int
	Column   string
	Value    string
	Message  string
	Severity Severity
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("sheetsql: %s: %s", e.Column, e.Message)
	}
	return fmt.Sprintf("sheetsql: row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// TableName is a sanitizable SQL table name.
type TableName struct {
	value string
}

// NewTableName creates a TableName, falling back to "table" for blank input.
func NewTableName(name string) TableName {
	if strings.TrimSpace(name) == "" {
		return TableName{value: "table"}
	}
	return TableName{value: strings.TrimSpace(name)}
}

// String returns the table name.
func (tn TableName) String() string {
	return tn.value
}

// Sanitize returns a copy with characters invalid in bare SQL identifiers
// replaced or removed.
func (tn TableName) Sanitize() TableName {
	result := strings.ReplaceAll(tn.value, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sanitized.WriteRune(r)
		}
	}

	final := sanitized.String()
	if len(final) > 0 && final[0] >= '0' && final[0] <= '9' {
		final = "table_" + final
	}
	if final == "" {
		final = "table"
	}
	return TableName{value: final}
}

// validateColumnNames checks for duplicate column names and returns an error
// if found. Comparison trims surrounding whitespace but stays case-sensitive.
func validateColumnNames(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		trimmed := strings.TrimSpace(col)
		if seen[trimmed] {
			return fmt.Errorf("%w: %s", errDuplicateColumnName, col)
		}
		seen[trimmed] = true
	}
	return nil
}

// isBlank reports whether a cell is NULL for pipeline purposes: empty or
// whitespace-only.
func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
