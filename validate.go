package sheetsql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidateOptions tunes one ValidateData call.
type ValidateOptions struct {
	// StrictTypes reports type mismatches as errors instead of warnings
	StrictTypes bool
	// MaxErrors caps the number of accumulated findings; 0 means unlimited
	MaxErrors int
	// CheckConstraints enables whole-dataset UNIQUE checks
	CheckConstraints bool
}

// ValidationResult is the outcome of an independent validation pass.
type ValidationResult struct {
	// Valid is true when no error-severity finding was recorded
	Valid bool
	// Errors holds every finding, errors and warnings alike
	Errors []ValidationError
	// QualityScore is the percentage of valid cells, rounded
	QualityScore int
	// RowCount is the number of rows examined
	RowCount int
}

// ValidateType reports whether a value conforms structurally to a column
// type. The checks mirror the inference rules: same UUID/date/boolean
// patterns, same integer range cuts, same JSON parse trial. Blank values
// always conform; NOT NULL is a separate concern.
func ValidateType(value string, colType ColumnType) bool {
	if isBlank(value) {
		return true
	}
	value = strings.TrimSpace(value)

	switch colType {
	case ColumnTypeInteger:
		return isIntegerValue(value)
	case ColumnTypeBigInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err == nil
	case ColumnTypeDecimal:
		return isDecimalValue(value)
	case ColumnTypeBoolean:
		return isBooleanValue(value)
	case ColumnTypeDate:
		return isDateValue(value)
	case ColumnTypeTime:
		return isTimeValue(value)
	case ColumnTypeTimestamp, ColumnTypeTimestampTZ:
		return isTimestampValue(value) || isDateValue(value)
	case ColumnTypeJSON, ColumnTypeJSONB:
		return isJSONValue(value)
	case ColumnTypeUUID:
		return isUUIDValue(value)
	default:
		return true
	}
}

// CheckDuplicates finds every value that appears in more than one row of a
// column and returns the offending row indexes (zero-based) per value.
func CheckDuplicates(rows []Record, columnIndex int) map[string][]int {
	seen := make(map[string][]int)
	for i, row := range rows {
		if columnIndex >= len(row) || isBlank(row[columnIndex]) {
			continue
		}
		seen[row[columnIndex]] = append(seen[row[columnIndex]], i)
	}

	duplicates := make(map[string][]int)
	for value, indexes := range seen {
		if len(indexes) > 1 {
			duplicates[value] = indexes
		}
	}
	return duplicates
}

// ValidateData checks rows against column constraints independent of SQL
// generation: NOT NULL, type conformance, and (optionally) UNIQUE across the
// whole dataset. Findings accumulate up to opts.MaxErrors; each duplicate
// occurrence is reported individually.
func ValidateData(headers Header, rows []Record, mappings []ColumnMapping, opts ValidateOptions) ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		RowCount: len(rows),
	}

	active := activeMappings(mappings)
	if len(active) == 0 {
		result.QualityScore = 100
		return result
	}

	type boundMapping struct {
		mapping ColumnMapping
		index   int
	}
	bound := make([]boundMapping, 0, len(active))
	for _, m := range active {
		idx, err := headerIndex(headers, "", m.SourceColumn)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Row:      0,
				Column:   m.SourceColumn,
				Message:  fmt.Sprintf("source column %q not found", m.SourceColumn),
				Severity: SeverityError,
			})
			result.Valid = false
			continue
		}
		bound = append(bound, boundMapping{mapping: m, index: idx})
	}

	capReached := func() bool {
		return opts.MaxErrors > 0 && len(result.Errors) >= opts.MaxErrors
	}

	totalCells := 0
	invalidCells := 0

rowLoop:
	for rowIdx, row := range rows {
		for _, b := range bound {
			totalCells++

			value := ""
			if b.index < len(row) {
				value = row[b.index]
			}
			displayRow := rowIdx + 2 // +1 header row, +1 one-based display

			if isBlank(value) {
				if !b.mapping.IsNullable {
					invalidCells++
					result.Valid = false
					if capReached() {
						break rowLoop
					}
					result.Errors = append(result.Errors, ValidationError{
						Row:      displayRow,
						Column:   b.mapping.TargetColumn,
						Value:    value,
						Message:  "null value in non-nullable column",
						Severity: SeverityError,
					})
				}
				continue
			}

			if !ValidateType(value, b.mapping.DataType) {
				invalidCells++
				severity := SeverityWarning
				if opts.StrictTypes {
					severity = SeverityError
					result.Valid = false
				}
				if capReached() {
					break rowLoop
				}
				result.Errors = append(result.Errors, ValidationError{
					Row:      displayRow,
					Column:   b.mapping.TargetColumn,
					Value:    value,
					Message:  fmt.Sprintf("value does not conform to type %s", b.mapping.DataType),
					Severity: severity,
				})
			}
		}
	}

	if opts.CheckConstraints {
		for _, b := range bound {
			if !b.mapping.IsUnique || capReached() {
				continue
			}
			duplicates := CheckDuplicates(rows, b.index)
			if len(duplicates) == 0 {
				continue
			}
			// Occurrences are reported in row order so repeated runs
			// produce the same finding sequence.
			for rowIdx, row := range rows {
				if b.index >= len(row) {
					continue
				}
				value := row[b.index]
				if _, ok := duplicates[value]; !ok {
					continue
				}
				if capReached() {
					break
				}
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Row:      rowIdx + 2,
					Column:   b.mapping.TargetColumn,
					Value:    value,
					Message:  fmt.Sprintf("duplicate value %q in unique column", value),
					Severity: SeverityError,
				})
			}
		}
	}

	if totalCells == 0 {
		result.QualityScore = 100
	} else {
		result.QualityScore = int(math.Round(float64(totalCells-invalidCells) / float64(totalCells) * 100))
	}
	return result
}
