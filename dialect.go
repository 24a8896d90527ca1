package sheetsql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DatabaseType identifies a target database product.
type DatabaseType string

const (
	// DatabasePostgreSQL targets PostgreSQL
	DatabasePostgreSQL DatabaseType = "postgresql"
	// DatabaseMySQL targets MySQL
	DatabaseMySQL DatabaseType = "mysql"
)

// ParseDatabaseType resolves a configuration string to a DatabaseType.
func ParseDatabaseType(name string) (DatabaseType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgresql", "postgres", "":
		return DatabasePostgreSQL, nil
	case "mysql":
		return DatabaseMySQL, nil
	default:
		return "", fmt.Errorf("sheetsql: unknown database type %q", name)
	}
}

// Dialect supplies the SQL syntax primitives specific to one database
// product. Implementations are pure: every method is a function of its
// arguments with no hidden state.
type Dialect interface {
	// Name returns the registry key of the dialect
	Name() DatabaseType
	// DisplayName returns the human-readable product name for output headers
	DisplayName() string
	// QuoteIdentifier quotes a table or column name when required
	QuoteIdentifier(name string) string
	// FormatValue renders one cell as a SQL literal for the given type
	FormatValue(value string, colType ColumnType) string
	// FormatBatchValues renders one row's formatted values as a tuple
	FormatBatchValues(values []string) string
	// BuildInsert assembles a batched INSERT statement
	BuildInsert(table string, columns []string, tuples []string) string
	// BuildUpdate assembles a single-row UPDATE statement
	BuildUpdate(table string, assignments []string, where string) string
	// BuildUpsert assembles a batched insert-or-update statement
	BuildUpsert(table string, columns []string, tuples []string, conflictKeys []string, updateColumns []string, doNothing bool) string
	// BeginTransaction returns the statement opening a transaction
	BeginTransaction() string
	// CommitTransaction returns the statement committing a transaction
	CommitTransaction() string
	// RollbackTransaction returns the statement rolling back a transaction
	RollbackTransaction() string
	// CreateSavepoint returns the statement creating a named savepoint
	CreateSavepoint(name string) string
	// RollbackToSavepoint returns the statement rolling back to a savepoint
	RollbackToSavepoint(name string) string
}

// DialectRegistry maps database types to dialects. It is explicitly
// constructed and passed to the generator; there is no package-level
// mutable registry.
type DialectRegistry struct {
	dialects map[DatabaseType]Dialect
}

// NewDialectRegistry creates a registry with the built-in PostgreSQL and
// MySQL dialects registered.
func NewDialectRegistry() *DialectRegistry {
	r := &DialectRegistry{dialects: make(map[DatabaseType]Dialect)}
	r.Register(&postgresDialect{})
	r.Register(&mysqlDialect{})
	return r
}

// Register adds or replaces a dialect under its own name.
func (r *DialectRegistry) Register(d Dialect) {
	r.dialects[d.Name()] = d
}

// Dialect returns the dialect registered for the database type.
func (r *DialectRegistry) Dialect(db DatabaseType) (Dialect, error) {
	if d, ok := r.dialects[db]; ok {
		return d, nil
	}
	return nil, &DialectNotFoundError{Database: db}
}

// needsQuoting reports whether an identifier cannot appear bare: reserved
// words, uppercase letters, a leading digit, or any character outside
// [a-zA-Z0-9_].
func needsQuoting(name string, reserved map[string]bool) bool {
	if name == "" || reserved[strings.ToLower(name)] {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		case r >= 'A' && r <= 'Z':
			return true
		default:
			return true
		}
	}
	return false
}

// truthyTokens are the boolean cell values that map to TRUE. Any other
// non-blank value in a BOOLEAN column maps to FALSE, never NULL.
var truthyTokens = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true, "t": true,
}

// formatTypedValue is the per-type coercion core shared by the dialects.
// quote escapes a raw string and wraps it in single quotes, in whatever way
// the dialect requires. Unparseable values degrade to NULL by policy.
func formatTypedValue(value string, colType ColumnType, quote func(string) string) string {
	if isBlank(value) {
		return "NULL"
	}
	trimmed := strings.TrimSpace(value)

	switch colType {
	case ColumnTypeInteger, ColumnTypeBigInt:
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return "NULL"
		}
		return strconv.FormatInt(v, 10)

	case ColumnTypeDecimal:
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return "NULL"
		}
		return d.String()

	case ColumnTypeBoolean:
		if truthyTokens[strings.ToLower(trimmed)] {
			return "TRUE"
		}
		return "FALSE"

	case ColumnTypeDate, ColumnTypeTime, ColumnTypeTimestamp, ColumnTypeTimestampTZ:
		// No semantic date validation at format time; that is the
		// validation engine's concern.
		return quote(trimmed)

	case ColumnTypeJSON, ColumnTypeJSONB:
		if !json.Valid([]byte(trimmed)) {
			return "NULL"
		}
		return quote(trimmed)

	case ColumnTypeUUID:
		if !isUUIDValue(trimmed) {
			return "NULL"
		}
		return quote(strings.ToLower(trimmed))

	default:
		return quote(value)
	}
}

// buildInsertStatement assembles the INSERT used by both dialects.
func buildInsertStatement(table string, columns []string, tuples []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES\n")
	b.WriteString(strings.Join(tuples, ",\n"))
	return b.String()
}
