package sheetsql

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error values returned by the package.
var (
	// errDuplicateColumnName is returned when an input contains duplicate column names
	errDuplicateColumnName = errors.New("duplicate column name")

	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("sheetsql: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("sheetsql: unsupported file format")

	// ErrNoSheets indicates that no sheets were provided to a context or pipeline
	ErrNoSheets = errors.New("sheetsql: no sheets provided")

	// ErrNoActiveMappings indicates that no mapping has a non-empty target column
	ErrNoActiveMappings = errors.New("sheetsql: no active column mappings")

	// ErrMissingPrimaryKey indicates UPDATE mode without a single primary-key mapping
	ErrMissingPrimaryKey = errors.New("sheetsql: UPDATE mode requires exactly one primary key mapping")

	// ErrMissingConflictKeys indicates UPSERT mode without conflict keys or a primary key
	ErrMissingConflictKeys = errors.New("sheetsql: UPSERT mode requires conflict keys")

	// ErrUnsupportedLookupSource indicates a lookup source type with no implementation
	ErrUnsupportedLookupSource = errors.New("sheetsql: unsupported lookup source type")
)

// SheetNotFoundError is returned when a sheet name cannot be resolved.
// Available lists the sheet names that do exist, in declaration order.
type SheetNotFoundError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *SheetNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("sheetsql: sheet %q not found (no sheets loaded)", e.Name)
	}
	return fmt.Sprintf("sheetsql: sheet %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ColumnNotFoundError is returned when a column name cannot be resolved
// against a sheet header, even after case- and whitespace-insensitive matching.
type ColumnNotFoundError struct {
	Sheet     string
	Column    string
	Available []string
}

// Error implements the error interface.
func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("sheetsql: column %q not found in sheet %q (available: %s)",
		e.Column, e.Sheet, strings.Join(e.Available, ", "))
}

// ColumnIndexError is returned when a column index is out of header bounds.
type ColumnIndexError struct {
	Sheet string
	Index int
	Width int
}

// Error implements the error interface.
func (e *ColumnIndexError) Error() string {
	return fmt.Sprintf("sheetsql: column index %d out of range in sheet %q (header has %d columns)",
		e.Index, e.Sheet, e.Width)
}

// DialectNotFoundError is returned when a database type has no registered dialect.
type DialectNotFoundError struct {
	Database DatabaseType
}

// Error implements the error interface.
func (e *DialectNotFoundError) Error() string {
	return fmt.Sprintf("sheetsql: no dialect registered for database type %q", e.Database)
}

// LookupErrorKind is the closed taxonomy of lookup resolution failures.
type LookupErrorKind int

const (
	// LookupErrParse covers failures outside the named kinds below
	LookupErrParse LookupErrorKind = iota
	// LookupErrMissingSheet means the configured lookup sheet does not exist
	LookupErrMissingSheet
	// LookupErrMissingColumn means a source, key, or value column does not exist
	LookupErrMissingColumn
	// LookupErrUnsupportedSource means the lookup source type has no implementation
	LookupErrUnsupportedSource
)

// String returns the wire representation of the error kind.
func (k LookupErrorKind) String() string {
	switch k {
	case LookupErrMissingSheet:
		return "missing_sheet"
	case LookupErrMissingColumn:
		return "missing_column"
	case LookupErrUnsupportedSource:
		return "unsupported_source"
	default:
		return "parse_error"
	}
}

// LookupError describes why one lookup configuration could not be applied.
type LookupError struct {
	LookupID string
	Kind     LookupErrorKind
	Message  string
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("sheetsql: lookup %s: %s: %s", e.LookupID, e.Kind, e.Message)
}

// classifyLookupError converts an error raised during processor construction
// into a LookupError with a tagged kind. Classification inspects the error's
// type, never its message text.
func classifyLookupError(lookupID string, err error) LookupError {
	kind := LookupErrParse

	var sheetErr *SheetNotFoundError
	var columnErr *ColumnNotFoundError
	switch {
	case errors.As(err, &sheetErr):
		kind = LookupErrMissingSheet
	case errors.As(err, &columnErr):
		kind = LookupErrMissingColumn
	case errors.Is(err, ErrUnsupportedLookupSource):
		kind = LookupErrUnsupportedSource
	}

	return LookupError{
		LookupID: lookupID,
		Kind:     kind,
		Message:  err.Error(),
	}
}
