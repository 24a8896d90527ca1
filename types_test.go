package sheetsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSheet(t *testing.T) {
	t.Parallel()

	t.Run("pads short rows", func(t *testing.T) {
		t.Parallel()

		sheet := NewSheet("t", Header{"a", "b", "c"}, []Record{{"1"}, {"1", "2", "3", "4"}})
		assert.Equal(t, Record{"1", "", ""}, sheet.Rows[0])
		// Longer rows are never truncated.
		assert.Equal(t, Record{"1", "2", "3", "4"}, sheet.Rows[1])
	})

	t.Run("row count and cell access", func(t *testing.T) {
		t.Parallel()

		sheet := NewSheet("t", Header{"a", "b"}, []Record{{"1", "2"}})
		assert.Equal(t, 1, sheet.RowCount())
		assert.Equal(t, "2", sheet.Cell(0, 1))
		// Out-of-range reads are blank, not a panic.
		assert.Equal(t, "", sheet.Cell(5, 0))
		assert.Equal(t, "", sheet.Cell(0, 9))
	})
}

func TestHeaderRecordEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, Header{"a", "b"}.Equal(Header{"a", "b"}))
	assert.False(t, Header{"a", "b"}.Equal(Header{"a"}))
	assert.False(t, Header{"a", "b"}.Equal(Header{"a", "c"}))
	assert.True(t, Record{"1"}.Equal(Record{"1"}))
	assert.False(t, Record{"1"}.Equal(Record{"2"}))
}

func TestColumnTypeRoundTrip(t *testing.T) {
	t.Parallel()

	types := []ColumnType{
		ColumnTypeText, ColumnTypeVarchar, ColumnTypeChar, ColumnTypeInteger,
		ColumnTypeBigInt, ColumnTypeDecimal, ColumnTypeBoolean, ColumnTypeDate,
		ColumnTypeTime, ColumnTypeTimestamp, ColumnTypeTimestampTZ,
		ColumnTypeJSON, ColumnTypeJSONB, ColumnTypeUUID,
	}
	for _, ct := range types {
		parsed, err := ParseColumnType(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, parsed)
	}

	_, err := ParseColumnType("BLOB")
	assert.Error(t, err)

	// Common aliases resolve.
	parsed, err := ParseColumnType("int")
	require.NoError(t, err)
	assert.Equal(t, ColumnTypeInteger, parsed)
	parsed, err = ParseColumnType("numeric")
	require.NoError(t, err)
	assert.Equal(t, ColumnTypeDecimal, parsed)
}

func TestColumnMapping_IsActive(t *testing.T) {
	t.Parallel()

	assert.True(t, ColumnMapping{TargetColumn: "x"}.IsActive())
	assert.False(t, ColumnMapping{TargetColumn: ""}.IsActive())
	assert.False(t, ColumnMapping{TargetColumn: "  "}.IsActive())

	mappings := []ColumnMapping{
		{TargetColumn: "a"},
		{TargetColumn: ""},
		{TargetColumn: "b"},
	}
	assert.Len(t, activeMappings(mappings), 2)
}

func TestTableName_Sanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "orders", want: "orders"},
		{input: "monthly sales", want: "monthly_sales"},
		{input: "my-table.v2", want: "my_table_v2"},
		{input: "2024data", want: "table_2024data"},
		{input: "日本語", want: "table"},
		{input: "", want: "table"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, NewTableName(tt.input).Sanitize().String())
		})
	}
}

func TestValidateColumnNames(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateColumnNames([]string{"a", "b", "c"}))
	assert.Error(t, validateColumnNames([]string{"a", "a"}))
	// Whitespace variants collide; case variants do not.
	assert.Error(t, validateColumnNames([]string{"a", " a "}))
	assert.NoError(t, validateColumnNames([]string{"a", "A"}))
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	rowErr := ValidationError{Row: 3, Column: "id", Message: "bad"}
	assert.Contains(t, rowErr.Error(), "row 3")

	fileErr := ValidationError{Row: 0, Column: "id", Message: "missing"}
	assert.NotContains(t, fileErr.Error(), "row")
}
