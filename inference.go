package sheetsql

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// uuidPattern is the canonical 8-4-4-4-12 hex form. uuid.Parse accepts URN
// and braced variants too, so the regex gates before parsing.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// booleanTokens are the cell values accepted as booleans, case-insensitive.
var booleanTokens = map[string]bool{
	"true": true, "false": false,
	"1": true, "0": false,
	"yes": true, "no": false,
	"y": true, "n": false,
	"t": true, "f": false,
}

// integerPattern matches any integer string regardless of magnitude.
var integerPattern = regexp.MustCompile(`^[+-]?\d+$`)

// datePattern matches ISO dates; time.Parse rejects impossible dates after
// the pattern gate.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// timePattern matches time-of-day values with optional seconds and fraction.
var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`)

// timestampPatterns match combined date+time values. Each pattern carries the
// layouts tried against it, most common first.
var timestampPatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	// ISO8601 with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "01/02/2006 15:04:05"},
	},
}

// isUUIDValue reports whether the value is a canonical UUID.
func isUUIDValue(value string) bool {
	if !uuidPattern.MatchString(value) {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// isBooleanValue reports whether the value is an accepted boolean token.
func isBooleanValue(value string) bool {
	_, ok := booleanTokens[strings.ToLower(value)]
	return ok
}

// isIntegerValue reports whether the value fits a signed 32-bit integer.
func isIntegerValue(value string) bool {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false
	}
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// isBigIntValue reports whether the value is any integer string.
func isBigIntValue(value string) bool {
	return integerPattern.MatchString(value)
}

// isDecimalValue reports whether the value is numeric, exponents included.
func isDecimalValue(value string) bool {
	_, err := decimal.NewFromString(value)
	return err == nil
}

// isTimestampValue reports whether the value is a combined date+time.
func isTimestampValue(value string) bool {
	for _, tp := range timestampPatterns {
		if tp.pattern.MatchString(value) {
			for _, format := range tp.formats {
				if _, err := time.Parse(format, value); err == nil {
					return true
				}
			}
		}
	}
	return false
}

// isDateValue reports whether the value is a YYYY-MM-DD date.
func isDateValue(value string) bool {
	if !datePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// isTimeValue reports whether the value is a time of day.
func isTimeValue(value string) bool {
	if !timePattern.MatchString(value) {
		return false
	}
	for _, format := range []string{"15:04:05", "15:04:05.000", "3:04:05", "15:04", "3:04"} {
		if _, err := time.Parse(format, value); err == nil {
			return true
		}
	}
	return false
}

// isJSONValue reports whether the value parses as a JSON object or array.
// JSON primitives ("42", "true") do not count; they belong to narrower types.
func isJSONValue(value string) bool {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid([]byte(trimmed))
}

// typeRule pairs a column type with its membership test.
type typeRule struct {
	colType ColumnType
	match   func(string) bool
}

// inferenceRules is ordered most-specific first. Ordering matters: UUID must
// run before TEXT, and INTEGER before BIGINT before DECIMAL, so that a
// purely-numeric-looking column gets the narrowest type that fits.
var inferenceRules = []typeRule{
	{ColumnTypeUUID, isUUIDValue},
	{ColumnTypeBoolean, isBooleanValue},
	{ColumnTypeInteger, isIntegerValue},
	{ColumnTypeBigInt, isBigIntValue},
	{ColumnTypeDecimal, isDecimalValue},
	{ColumnTypeTimestampTZ, isTimestampValue},
	{ColumnTypeDate, isDateValue},
	{ColumnTypeTime, isTimeValue},
	{ColumnTypeJSONB, isJSONValue},
}

// InferredType is the outcome of column type inference: the chosen type and
// the fraction of sampled values that matched its rule.
type InferredType struct {
	Type       ColumnType
	Confidence float64
}

// InferColumnType picks the best-fit SQL type for a column. Non-blank values
// are sampled (up to MaxSampleSize) and each rule is evaluated in priority
// order; the first rule whose match fraction reaches the confidence threshold
// wins. A column with no usable samples is TEXT with confidence 1.
func InferColumnType(values []string) InferredType {
	samples := make([]string, 0, min(len(values), MaxSampleSize))
	for _, value := range sampleValues(values) {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		samples = append(samples, value)
	}

	if len(samples) == 0 {
		return InferredType{Type: ColumnTypeText, Confidence: 1}
	}

	for _, rule := range inferenceRules {
		matched := 0
		for _, value := range samples {
			if rule.match(value) {
				matched++
			}
		}
		confidence := float64(matched) / float64(len(samples))
		if confidence >= DefaultConfidenceThreshold {
			return InferredType{Type: rule.colType, Confidence: confidence}
		}
	}

	// TEXT is the catch-all: every value matches.
	return InferredType{Type: ColumnTypeText, Confidence: 1}
}

// sampleValues caps the inference input at MaxSampleSize rows, stepping
// through the full range so the sample represents the whole column rather
// than just its head.
func sampleValues(values []string) []string {
	if len(values) <= MaxSampleSize {
		return values
	}
	step := len(values) / MaxSampleSize
	if step < 1 {
		step = 1
	}
	samples := make([]string, 0, MaxSampleSize)
	for i := 0; i < len(values) && len(samples) < MaxSampleSize; i += step {
		samples = append(samples, values[i])
	}
	return samples
}

// ColumnAnalysis is the full inference output for one column. Produced once
// per import and never mutated.
type ColumnAnalysis struct {
	// Name is the header name of the column
	Name string
	// Index is the zero-based column position
	Index int
	// SampleValues holds up to MaxSampleSize non-blank values
	SampleValues []string
	// NullCount counts empty cells
	NullCount int
	// EmptyStringCount counts whitespace-only (but non-empty) cells
	EmptyStringCount int
	// TotalCount is the number of rows examined
	TotalCount int
	// UniqueValues is the set of distinct non-blank values
	UniqueValues map[string]struct{}
	// DetectedType is the inferred SQL type
	DetectedType ColumnType
	// Confidence is the match fraction for DetectedType, in [0, 1]
	Confidence float64
}

// IsPrimaryKeyCandidate reports whether the column could serve as a primary
// key: no nulls, all values distinct, and a key-friendly detected type.
func (a ColumnAnalysis) IsPrimaryKeyCandidate() bool {
	if a.NullCount > 0 || a.EmptyStringCount > 0 || a.TotalCount == 0 {
		return false
	}
	if len(a.UniqueValues) != a.TotalCount {
		return false
	}
	switch a.DetectedType {
	case ColumnTypeInteger, ColumnTypeBigInt, ColumnTypeUUID, ColumnTypeText:
		return true
	default:
		return false
	}
}

// AnalyzeColumn builds the ColumnAnalysis for one column's values.
func AnalyzeColumn(name string, index int, values []string) ColumnAnalysis {
	analysis := ColumnAnalysis{
		Name:         name,
		Index:        index,
		TotalCount:   len(values),
		UniqueValues: make(map[string]struct{}),
	}

	for _, value := range values {
		switch {
		case value == "":
			analysis.NullCount++
		case strings.TrimSpace(value) == "":
			analysis.EmptyStringCount++
		default:
			analysis.UniqueValues[value] = struct{}{}
			if len(analysis.SampleValues) < MaxSampleSize {
				analysis.SampleValues = append(analysis.SampleValues, value)
			}
		}
	}

	inferred := InferColumnType(values)
	analysis.DetectedType = inferred.Type
	analysis.Confidence = inferred.Confidence
	return analysis
}

// AnalyzeSheet runs column analysis over every column of a sheet.
func AnalyzeSheet(sheet *Sheet) []ColumnAnalysis {
	if len(sheet.Headers) == 0 {
		return nil
	}

	analyses := make([]ColumnAnalysis, len(sheet.Headers))
	for i, name := range sheet.Headers {
		values := make([]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			if i < len(row) {
				values = append(values, row[i])
			} else {
				values = append(values, "")
			}
		}
		analyses[i] = AnalyzeColumn(name, i, values)
	}
	return analyses
}

// SchemaQualityScore is the percentage of non-null cells across the sheet,
// rounded to the nearest integer. A sheet with no cells scores 100.
func SchemaQualityScore(sheet *Sheet) int {
	total := 0
	nonNull := 0
	for _, row := range sheet.Rows {
		for i := range sheet.Headers {
			total++
			if i < len(row) && !isBlank(row[i]) {
				nonNull++
			}
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(nonNull) / float64(total) * 100))
}

// MappingsFromAnalyses builds default column mappings from inference output.
// Target columns start equal to source columns; merging user overrides on top
// is the caller's concern.
func MappingsFromAnalyses(analyses []ColumnAnalysis) []ColumnMapping {
	mappings := make([]ColumnMapping, len(analyses))
	for i, a := range analyses {
		mappings[i] = ColumnMapping{
			SourceColumn: a.Name,
			TargetColumn: a.Name,
			DataType:     a.DetectedType,
			IsNullable:   true,
		}
	}
	return mappings
}
