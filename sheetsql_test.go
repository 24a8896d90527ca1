package sheetsql

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conversionJob() *JobConfig {
	return &JobConfig{
		Table:    "orders",
		Database: "postgresql",
		Columns: []ColumnConfig{
			{Source: "order_id", Type: "INTEGER", Primary: true},
			{Source: "product_code", Type: "TEXT"},
			{Source: "product_name", Type: "TEXT"},
			{Source: "qty", Type: "INTEGER"},
		},
		Lookups: LookupSetConfig{
			Enabled: true,
			Rules: []LookupConfig{{
				ID:          "product_name",
				Source:      "product_code",
				Target:      "product_name",
				Type:        "sheet",
				Sheet:       "Products",
				KeyColumn:   "code",
				ValueColumn: "name",
				Default:     "UNKNOWN",
			}},
		},
	}
}

func conversionContext(t *testing.T) *SheetContext {
	t.Helper()

	orders := NewSheet("Orders",
		Header{"order_id", "product_code", "qty"},
		[]Record{
			{"1", "A1", "2"},
			{"2", "B2", "1"},
			{"3", "ZZ", "4"},
		})
	products := NewSheet("Products",
		Header{"code", "name"},
		[]Record{
			{"A1", "Widget"},
			{"B2", "Gadget"},
		})

	ctx, err := NewSheetContext([]*Sheet{orders, products}, "Orders")
	require.NoError(t, err)
	return ctx
}

func TestConvert(t *testing.T) {
	t.Parallel()

	result, err := Convert(context.Background(), conversionContext(t), conversionJob())
	require.NoError(t, err)

	// The primary sheet gained the lookup column.
	assert.Equal(t, Header{"order_id", "product_code", "qty", "product_name"}, result.Sheet.Headers)
	require.Len(t, result.Lookup.Stats, 1)
	assert.Equal(t, 2, result.Lookup.Stats[0].Matched)
	assert.Equal(t, 1, result.Lookup.Stats[0].Unmatched)

	assert.True(t, result.Validation.Valid)

	assert.Contains(t, result.SQL, "-- Generated by sheetsql")
	assert.Contains(t, result.SQL, "INSERT INTO orders (order_id, product_code, product_name, qty) VALUES")
	assert.Contains(t, result.SQL, "(1, 'A1', 'Widget', 2)")
	assert.Contains(t, result.SQL, "(3, 'ZZ', 'UNKNOWN', 4)")
	assert.Equal(t, 3, result.Generation.RowCount)
}

func TestConvert_previewOnly(t *testing.T) {
	t.Parallel()

	job := conversionJob()
	job.Lookups.PreviewOnly = true

	result, err := Convert(context.Background(), conversionContext(t), job)
	require.NoError(t, err)
	assert.Empty(t, result.SQL)
	assert.Empty(t, result.Generation.Statements)
	// Enrichment and validation still ran.
	assert.Contains(t, result.Sheet.Headers, "product_name")
	assert.Equal(t, 3, result.Validation.RowCount)
}

func TestConvert_lookupFailureAborts(t *testing.T) {
	t.Parallel()

	job := conversionJob()
	job.Lookups.Rules[0].Sheet = "Inventory"

	_, err := Convert(context.Background(), conversionContext(t), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup failed")
	assert.Contains(t, err.Error(), "missing_sheet")
}

func TestConvert_invalidJob(t *testing.T) {
	t.Parallel()

	job := conversionJob()
	job.Table = ""

	_, err := Convert(context.Background(), conversionContext(t), job)
	assert.ErrorContains(t, err, "missing table name")
}

func TestConvert_nilContext(t *testing.T) {
	t.Parallel()

	_, err := Convert(context.Background(), nil, conversionJob())
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestConvert_cancelled(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Convert(cancelled, conversionContext(t), conversionJob())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvert_upsertEndToEnd(t *testing.T) {
	t.Parallel()

	job := conversionJob()
	job.Mode = "upsert"
	job.ConflictKeys = []string{"order_id"}
	job.Transaction = true

	result, err := Convert(context.Background(), conversionContext(t), job)
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "BEGIN;")
	assert.Contains(t, result.SQL, "ON CONFLICT (order_id) DO UPDATE SET")
	assert.Contains(t, result.SQL, "COMMIT;")
	// BEGIN comes before the data, COMMIT after.
	assert.Less(t, strings.Index(result.SQL, "BEGIN;"), strings.Index(result.SQL, "INSERT INTO"))
	assert.Greater(t, strings.Index(result.SQL, "COMMIT;"), strings.Index(result.SQL, "INSERT INTO"))
}
