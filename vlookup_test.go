package sheetsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordersProductsContext(t *testing.T) (*Sheet, *SheetContext) {
	t.Helper()

	orders := NewSheet("Orders",
		Header{"order_id", "product_code", "qty"},
		[]Record{
			{"1", "A1", "2"},
			{"2", "B2", "1"},
			{"3", "C3", "5"},
			{"4", "", "1"},
		})
	products := NewSheet("Products",
		Header{"code", "product_name"},
		[]Record{
			{"A1", "Widget"},
			{"B2", "Gadget"},
		})

	ctx, err := NewSheetContext([]*Sheet{orders, products}, "Orders")
	require.NoError(t, err)
	return orders, ctx
}

func TestApplyVLookups_sheetSource(t *testing.T) {
	t.Parallel()

	orders, ctx := ordersProductsContext(t)
	set := VLookupSet{
		Enabled: true,
		Lookups: []VLookupConfig{{
			ID:           "product_name",
			SourceColumn: "product_code",
			TargetColumn: "product_name",
			SourceType:   LookupSourceSheet,
			SheetLookup: &SheetLookup{
				SheetName:   "Products",
				KeyColumn:   "code",
				ValueColumn: "product_name",
			},
			DefaultValue: "UNKNOWN",
			TrimKeys:     true,
		}},
	}

	result := ApplyVLookups(orders, set, ctx, LookupOptions{})
	require.Empty(t, result.Errors)
	assert.Equal(t, Header{"order_id", "product_code", "qty", "product_name"}, result.Headers)
	require.Len(t, result.Rows, 4)
	assert.Equal(t, "Widget", result.Rows[0][3])
	assert.Equal(t, "Gadget", result.Rows[1][3])
	assert.Equal(t, "UNKNOWN", result.Rows[2][3])
	assert.Equal(t, "UNKNOWN", result.Rows[3][3])

	require.Len(t, result.Stats, 1)
	stats := result.Stats[0]
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, 1, stats.NullInputs)

	// The input sheet is never mutated.
	assert.Equal(t, Header{"order_id", "product_code", "qty"}, orders.Headers)
	assert.Len(t, orders.Rows[0], 3)
}

func TestApplyVLookups_inlineSource(t *testing.T) {
	t.Parallel()

	sheet := NewSheet("t", Header{"status"}, []Record{{"A"}, {"i"}, {"x"}})
	set := VLookupSet{
		Enabled: true,
		Lookups: []VLookupConfig{{
			ID:           "status_label",
			SourceColumn: "status",
			TargetColumn: "status_label",
			SourceType:   LookupSourceInline,
			InlineMap:    map[string]string{"a": "Active", "i": "Inactive"},
			TrimKeys:     true,
		}},
	}

	result := ApplyVLookups(sheet, set, nil, LookupOptions{})
	require.Empty(t, result.Errors)
	// Case-insensitive by default: "A" matches the "a" key.
	assert.Equal(t, "Active", result.Rows[0][1])
	assert.Equal(t, "Inactive", result.Rows[1][1])
	assert.Equal(t, "", result.Rows[2][1])
	assert.Equal(t, 2, result.Stats[0].Matched)
	assert.Equal(t, 1, result.Stats[0].Unmatched)
}

func TestApplyVLookups_caseSensitive(t *testing.T) {
	t.Parallel()

	sheet := NewSheet("t", Header{"k"}, []Record{{"A"}, {"a"}})
	set := VLookupSet{
		Enabled: true,
		Lookups: []VLookupConfig{{
			ID:            "v",
			SourceColumn:  "k",
			TargetColumn:  "v",
			SourceType:    LookupSourceInline,
			InlineMap:     map[string]string{"a": "lower"},
			CaseSensitive: true,
		}},
	}

	result := ApplyVLookups(sheet, set, nil, LookupOptions{})
	require.Empty(t, result.Errors)
	assert.Equal(t, "", result.Rows[0][1])
	assert.Equal(t, "lower", result.Rows[1][1])
}

func TestApplyVLookups_disabled(t *testing.T) {
	t.Parallel()

	sheet := NewSheet("t", Header{"a"}, []Record{{"1"}})
	set := VLookupSet{
		Enabled: false,
		Lookups: []VLookupConfig{{
			ID: "x", SourceColumn: "a", TargetColumn: "b",
			SourceType: LookupSourceInline, InlineMap: map[string]string{"1": "one"},
		}},
	}

	result := ApplyVLookups(sheet, set, nil, LookupOptions{})
	assert.Equal(t, Header{"a"}, result.Headers)
	assert.Equal(t, []Record{{"1"}}, result.Rows)
	assert.Empty(t, result.Stats)
	assert.Empty(t, result.Errors)
}

func TestApplyVLookups_existingTargetColumn(t *testing.T) {
	t.Parallel()

	sheet := NewSheet("t",
		Header{"k", "label"},
		[]Record{{"a", "keep me"}, {"b", ""}})
	lookup := VLookupConfig{
		ID: "label", SourceColumn: "k", TargetColumn: "label",
		SourceType: LookupSourceInline,
		InlineMap:  map[string]string{"a": "Alpha", "b": "Beta"},
	}

	t.Run("without overwrite", func(t *testing.T) {
		t.Parallel()

		set := VLookupSet{Enabled: true, Lookups: []VLookupConfig{lookup}}
		result := ApplyVLookups(sheet, set, nil, LookupOptions{})
		require.Empty(t, result.Errors)
		// Header is not duplicated and populated cells survive.
		assert.Equal(t, Header{"k", "label"}, result.Headers)
		assert.Equal(t, "keep me", result.Rows[0][1])
		assert.Equal(t, "Beta", result.Rows[1][1])
	})

	t.Run("with overwrite", func(t *testing.T) {
		t.Parallel()

		overwriting := lookup
		overwriting.AllowOverwrite = true
		set := VLookupSet{Enabled: true, Lookups: []VLookupConfig{overwriting}}
		result := ApplyVLookups(sheet, set, nil, LookupOptions{})
		require.Empty(t, result.Errors)
		assert.Equal(t, "Alpha", result.Rows[0][1])
	})
}

func TestApplyVLookups_chainedLookups(t *testing.T) {
	t.Parallel()

	// A later lookup may not read an earlier lookup's output; both read the
	// original sheet. Targets still accumulate in declaration order.
	sheet := NewSheet("t", Header{"code"}, []Record{{"a"}})
	set := VLookupSet{
		Enabled: true,
		Lookups: []VLookupConfig{
			{
				ID: "first", SourceColumn: "code", TargetColumn: "name",
				SourceType: LookupSourceInline, InlineMap: map[string]string{"a": "Alpha"},
			},
			{
				ID: "second", SourceColumn: "code", TargetColumn: "upper",
				SourceType: LookupSourceInline, InlineMap: map[string]string{"a": "ALPHA"},
			},
		},
	}

	result := ApplyVLookups(sheet, set, nil, LookupOptions{})
	require.Empty(t, result.Errors)
	assert.Equal(t, Header{"code", "name", "upper"}, result.Headers)
	assert.Equal(t, Record{"a", "Alpha", "ALPHA"}, result.Rows[0])
}

func TestApplyVLookups_idempotent(t *testing.T) {
	t.Parallel()

	orders, ctx := ordersProductsContext(t)
	set := VLookupSet{
		Enabled: true,
		Lookups: []VLookupConfig{{
			ID: "name", SourceColumn: "product_code", TargetColumn: "product_name",
			SourceType: LookupSourceSheet,
			SheetLookup: &SheetLookup{
				SheetName: "Products", KeyColumn: "code", ValueColumn: "product_name",
			},
		}},
	}

	first := ApplyVLookups(orders, set, ctx, LookupOptions{})
	second := ApplyVLookups(orders, set, ctx, LookupOptions{})
	assert.Equal(t, first, second)
}

func TestApplyVLookups_errors(t *testing.T) {
	t.Parallel()

	orders, ctx := ordersProductsContext(t)

	tests := []struct {
		name     string
		lookup   VLookupConfig
		wantKind LookupErrorKind
	}{
		{
			name: "missing lookup sheet",
			lookup: VLookupConfig{
				ID: "bad", SourceColumn: "product_code", TargetColumn: "x",
				SourceType: LookupSourceSheet,
				SheetLookup: &SheetLookup{
					SheetName: "Inventory", KeyColumn: "code", ValueColumn: "name",
				},
			},
			wantKind: LookupErrMissingSheet,
		},
		{
			name: "missing key column",
			lookup: VLookupConfig{
				ID: "bad", SourceColumn: "product_code", TargetColumn: "x",
				SourceType: LookupSourceSheet,
				SheetLookup: &SheetLookup{
					SheetName: "Products", KeyColumn: "missing", ValueColumn: "product_name",
				},
			},
			wantKind: LookupErrMissingColumn,
		},
		{
			name: "missing source column",
			lookup: VLookupConfig{
				ID: "bad", SourceColumn: "missing", TargetColumn: "x",
				SourceType: LookupSourceInline, InlineMap: map[string]string{},
			},
			wantKind: LookupErrMissingColumn,
		},
		{
			name: "file source unsupported",
			lookup: VLookupConfig{
				ID: "bad", SourceColumn: "product_code", TargetColumn: "x",
				SourceType: LookupSourceFile,
			},
			wantKind: LookupErrUnsupportedSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set := VLookupSet{Enabled: true, Lookups: []VLookupConfig{tt.lookup}}
			result := ApplyVLookups(orders, set, ctx, LookupOptions{})
			require.Len(t, result.Errors, 1)
			assert.Equal(t, "bad", result.Errors[0].LookupID)
			assert.Equal(t, tt.wantKind, result.Errors[0].Kind)
			// Remaining lookups still run; here there are none, so rows pass
			// through with the extended header.
			assert.Len(t, result.Rows, 4)
		})
	}
}

func TestApplyVLookups_failFast(t *testing.T) {
	t.Parallel()

	orders, ctx := ordersProductsContext(t)
	set := VLookupSet{
		Enabled: true,
		Lookups: []VLookupConfig{
			{
				ID: "good", SourceColumn: "product_code", TargetColumn: "name",
				SourceType: LookupSourceSheet,
				SheetLookup: &SheetLookup{
					SheetName: "Products", KeyColumn: "code", ValueColumn: "product_name",
				},
			},
			{
				ID: "bad", SourceColumn: "product_code", TargetColumn: "x",
				SourceType: LookupSourceSheet,
				SheetLookup: &SheetLookup{
					SheetName: "Inventory", KeyColumn: "code", ValueColumn: "name",
				},
			},
		},
	}

	result := ApplyVLookups(orders, set, ctx, LookupOptions{FailFast: true})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, LookupErrMissingSheet, result.Errors[0].Kind)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Headers)
	assert.Empty(t, result.Stats)
}

func TestBuildLookupTable_duplicateKeysLastWins(t *testing.T) {
	t.Parallel()

	products := NewSheet("Products",
		Header{"code", "name"},
		[]Record{
			{"A1", "First"},
			{"A1", "Second"},
			{"", "Skipped"},
		})
	ctx, err := NewSheetContext([]*Sheet{products}, "Products")
	require.NoError(t, err)

	cfg := VLookupConfig{
		ID: "x", SourceType: LookupSourceSheet,
		SheetLookup: &SheetLookup{
			SheetName: "Products", KeyColumn: "code", ValueColumn: "name",
		},
	}
	table, err := buildLookupTable(cfg, ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a1": "Second"}, table)
}
