package sheetsql

import (
	"strings"
)

// mysqlReservedWords are MySQL reserved words that must be quoted as
// identifiers.
var mysqlReservedWords = map[string]bool{
	"add": true, "all": true, "alter": true, "and": true, "as": true, "asc": true,
	"before": true, "between": true, "bigint": true, "binary": true, "blob": true,
	"both": true, "by": true, "case": true, "change": true, "char": true,
	"character": true, "check": true, "collate": true, "column": true,
	"condition": true, "constraint": true, "continue": true, "convert": true,
	"create": true, "cross": true, "current_date": true, "current_time": true,
	"current_timestamp": true, "current_user": true, "database": true,
	"databases": true, "decimal": true, "declare": true, "default": true,
	"delete": true, "desc": true, "describe": true, "distinct": true, "div": true,
	"double": true, "drop": true, "each": true, "else": true, "enclosed": true,
	"exists": true, "explain": true, "false": true, "fetch": true, "float": true,
	"for": true, "force": true, "foreign": true, "from": true, "fulltext": true,
	"generated": true, "grant": true, "group": true, "having": true, "if": true,
	"ignore": true, "in": true, "index": true, "inner": true, "insert": true,
	"int": true, "integer": true, "interval": true, "into": true, "is": true,
	"join": true, "key": true, "keys": true, "kill": true, "leading": true,
	"left": true, "like": true, "limit": true, "lines": true, "load": true,
	"localtime": true, "localtimestamp": true, "lock": true, "long": true,
	"match": true, "mod": true, "natural": true, "not": true, "null": true,
	"numeric": true, "on": true, "optimize": true, "option": true, "or": true,
	"order": true, "outer": true, "primary": true, "procedure": true, "range": true,
	"read": true, "real": true, "references": true, "regexp": true, "rename": true,
	"repeat": true, "replace": true, "require": true, "restrict": true,
	"return": true, "revoke": true, "right": true, "schema": true, "select": true,
	"set": true, "show": true, "smallint": true, "table": true, "terminated": true,
	"then": true, "to": true, "trailing": true, "trigger": true, "true": true,
	"union": true, "unique": true, "unsigned": true, "update": true, "usage": true,
	"use": true, "using": true, "values": true, "varchar": true, "when": true,
	"where": true, "while": true, "with": true, "write": true, "xor": true,
}

// mysqlDialect implements Dialect for MySQL.
type mysqlDialect struct{}

// Name returns the registry key.
func (d *mysqlDialect) Name() DatabaseType {
	return DatabaseMySQL
}

// DisplayName returns the product name used in output headers.
func (d *mysqlDialect) DisplayName() string {
	return "MySQL"
}

// QuoteIdentifier backtick-quotes identifiers that cannot appear bare,
// doubling embedded backticks.
func (d *mysqlDialect) QuoteIdentifier(name string) string {
	if !needsQuoting(name, mysqlReservedWords) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quoteString escapes a raw string for MySQL: NUL bytes stripped, backslashes
// and single quotes backslash-escaped.
func (d *mysqlDialect) quoteString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

// FormatValue renders one cell as a MySQL literal.
func (d *mysqlDialect) FormatValue(value string, colType ColumnType) string {
	return formatTypedValue(value, colType, d.quoteString)
}

// FormatBatchValues renders one row's formatted values as a tuple.
func (d *mysqlDialect) FormatBatchValues(values []string) string {
	return "(" + strings.Join(values, ", ") + ")"
}

// BuildInsert assembles a batched INSERT statement.
func (d *mysqlDialect) BuildInsert(table string, columns []string, tuples []string) string {
	return buildInsertStatement(table, columns, tuples) + ";"
}

// BuildUpdate assembles one UPDATE statement.
func (d *mysqlDialect) BuildUpdate(table string, assignments []string, where string) string {
	return "UPDATE " + table + " SET " + strings.Join(assignments, ", ") + " WHERE " + where + ";"
}

// BuildUpsert assembles the MySQL insert-or-update form. MySQL has no
// conflict target; the conflict keys are implied by the table's unique
// indexes. With doNothing set, the statement verb becomes INSERT IGNORE;
// otherwise ON DUPLICATE KEY UPDATE rewrites every non-key column from
// VALUES().
func (d *mysqlDialect) BuildUpsert(table string, columns []string, tuples []string, _ []string, updateColumns []string, doNothing bool) string {
	insert := buildInsertStatement(table, columns, tuples)
	if doNothing || len(updateColumns) == 0 {
		return strings.Replace(insert, "INSERT INTO", "INSERT IGNORE INTO", 1) + ";"
	}

	assignments := make([]string, len(updateColumns))
	for i, col := range updateColumns {
		assignments[i] = col + " = VALUES(" + col + ")"
	}
	return insert + "\nON DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ") + ";"
}

// BeginTransaction returns the transaction opener.
func (d *mysqlDialect) BeginTransaction() string {
	return "START TRANSACTION;"
}

// CommitTransaction returns the transaction commit.
func (d *mysqlDialect) CommitTransaction() string {
	return "COMMIT;"
}

// RollbackTransaction returns the transaction rollback.
func (d *mysqlDialect) RollbackTransaction() string {
	return "ROLLBACK;"
}

// CreateSavepoint returns a named savepoint statement.
func (d *mysqlDialect) CreateSavepoint(name string) string {
	return "SAVEPOINT " + d.QuoteIdentifier(name) + ";"
}

// RollbackToSavepoint returns a rollback-to-savepoint statement.
func (d *mysqlDialect) RollbackToSavepoint(name string) string {
	return "ROLLBACK TO SAVEPOINT " + d.QuoteIdentifier(name) + ";"
}
