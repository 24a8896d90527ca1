package sheetsql

import (
	"strings"
)

// pgReservedWords are PostgreSQL reserved words that must be quoted as
// identifiers.
var pgReservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "authorization": true, "between": true,
	"binary": true, "both": true, "case": true, "cast": true, "check": true,
	"collate": true, "column": true, "constraint": true, "create": true, "cross": true,
	"current_date": true, "current_role": true, "current_time": true,
	"current_timestamp": true, "current_user": true, "default": true, "deferrable": true,
	"desc": true, "distinct": true, "do": true, "else": true, "end": true, "except": true,
	"false": true, "fetch": true, "for": true, "foreign": true, "freeze": true,
	"from": true, "full": true, "grant": true, "group": true, "having": true,
	"ilike": true, "in": true, "initially": true, "inner": true, "intersect": true,
	"into": true, "is": true, "isnull": true, "join": true, "lateral": true,
	"leading": true, "left": true, "like": true, "limit": true, "localtime": true,
	"localtimestamp": true, "natural": true, "not": true, "notnull": true, "null": true,
	"offset": true, "on": true, "only": true, "or": true, "order": true, "outer": true,
	"overlaps": true, "placing": true, "primary": true, "references": true,
	"returning": true, "right": true, "select": true, "session_user": true,
	"similar": true, "some": true, "symmetric": true, "table": true, "then": true,
	"to": true, "trailing": true, "true": true, "union": true, "unique": true,
	"user": true, "using": true, "variadic": true, "verbose": true, "when": true,
	"where": true, "window": true, "with": true,
}

// postgresDialect implements Dialect for PostgreSQL.
type postgresDialect struct{}

// Name returns the registry key.
func (d *postgresDialect) Name() DatabaseType {
	return DatabasePostgreSQL
}

// DisplayName returns the product name used in output headers.
func (d *postgresDialect) DisplayName() string {
	return "PostgreSQL"
}

// QuoteIdentifier double-quotes identifiers that cannot appear bare,
// doubling embedded quotes.
func (d *postgresDialect) QuoteIdentifier(name string) string {
	if !needsQuoting(name, pgReservedWords) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteString escapes a raw string for PostgreSQL: NUL bytes stripped,
// backslashes escaped, single quotes doubled.
func (d *postgresDialect) quoteString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return "'" + s + "'"
}

// FormatValue renders one cell as a PostgreSQL literal.
func (d *postgresDialect) FormatValue(value string, colType ColumnType) string {
	return formatTypedValue(value, colType, d.quoteString)
}

// FormatBatchValues renders one row's formatted values as a tuple.
func (d *postgresDialect) FormatBatchValues(values []string) string {
	return "(" + strings.Join(values, ", ") + ")"
}

// BuildInsert assembles a batched INSERT statement.
func (d *postgresDialect) BuildInsert(table string, columns []string, tuples []string) string {
	return buildInsertStatement(table, columns, tuples) + ";"
}

// BuildUpdate assembles one UPDATE statement.
func (d *postgresDialect) BuildUpdate(table string, assignments []string, where string) string {
	return "UPDATE " + table + " SET " + strings.Join(assignments, ", ") + " WHERE " + where + ";"
}

// BuildUpsert assembles INSERT ... ON CONFLICT. With doNothing set, conflicts
// are ignored; otherwise every non-key column is updated from EXCLUDED.
func (d *postgresDialect) BuildUpsert(table string, columns []string, tuples []string, conflictKeys []string, updateColumns []string, doNothing bool) string {
	var b strings.Builder
	b.WriteString(buildInsertStatement(table, columns, tuples))
	b.WriteString("\nON CONFLICT (")
	b.WriteString(strings.Join(conflictKeys, ", "))
	b.WriteString(")")

	if doNothing || len(updateColumns) == 0 {
		b.WriteString(" DO NOTHING;")
		return b.String()
	}

	assignments := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		assignments[i] = col + " = EXCLUDED." + col
	}
	b.WriteString(" DO UPDATE SET ")
	b.WriteString(strings.Join(assignments, ", "))
	b.WriteString(";")
	return b.String()
}

// BeginTransaction returns the transaction opener.
func (d *postgresDialect) BeginTransaction() string {
	return "BEGIN;"
}

// CommitTransaction returns the transaction commit.
func (d *postgresDialect) CommitTransaction() string {
	return "COMMIT;"
}

// RollbackTransaction returns the transaction rollback.
func (d *postgresDialect) RollbackTransaction() string {
	return "ROLLBACK;"
}

// CreateSavepoint returns a named savepoint statement.
func (d *postgresDialect) CreateSavepoint(name string) string {
	return "SAVEPOINT " + d.QuoteIdentifier(name) + ";"
}

// RollbackToSavepoint returns a rollback-to-savepoint statement.
func (d *postgresDialect) RollbackToSavepoint(name string) string {
	return "ROLLBACK TO SAVEPOINT " + d.QuoteIdentifier(name) + ";"
}
