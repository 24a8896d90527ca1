package sheetsql_test

import (
	"fmt"
	"log"

	"github.com/sheetsql/sheetsql"
)

// ExampleGenerator_GenerateSQL demonstrates turning in-memory rows into
// batched INSERT statements with the default PostgreSQL dialect.
func ExampleGenerator_GenerateSQL() {
	headers := sheetsql.Header{"id", "name"}
	rows := []sheetsql.Record{
		{"1", "Alice"},
		{"2", "Bob"},
	}
	mappings := []sheetsql.ColumnMapping{
		{SourceColumn: "id", TargetColumn: "id", DataType: sheetsql.ColumnTypeInteger, IsPrimaryKey: true},
		{SourceColumn: "name", TargetColumn: "name", DataType: sheetsql.ColumnTypeText, IsNullable: true},
	}

	gen, err := sheetsql.NewGenerator(nil, sheetsql.NewSQLConfig("users"))
	if err != nil {
		log.Fatal(err)
	}

	result, err := gen.GenerateSQL(headers, rows, mappings, sheetsql.GenerateOptions{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result.SQL)
	// Output:
	// INSERT INTO "users" ("id", "name") VALUES
	// (1, 'Alice'),
	// (2, 'Bob');
}

// ExampleApplyVLookups demonstrates enriching rows from an inline lookup
// table and reading the per-lookup match statistics.
func ExampleApplyVLookups() {
	orders := sheetsql.NewSheet("orders", sheetsql.Header{"id", "code"}, []sheetsql.Record{
		{"1", "A1"},
		{"2", "ZZ"},
	})
	ctx, err := sheetsql.NewSheetContext([]*sheetsql.Sheet{orders}, "orders")
	if err != nil {
		log.Fatal(err)
	}

	set := sheetsql.VLookupSet{
		Enabled: true,
		Lookups: []sheetsql.VLookupConfig{
			{
				ID:           "product_name",
				SourceColumn: "code",
				TargetColumn: "product",
				SourceType:   sheetsql.LookupSourceInline,
				InlineMap:    map[string]string{"A1": "Widget"},
				DefaultValue: "UNKNOWN",
				TrimKeys:     true,
			},
		},
	}

	result := sheetsql.ApplyVLookups(orders, set, ctx, sheetsql.LookupOptions{})
	for _, row := range result.Rows {
		fmt.Println(row)
	}
	stats := result.Stats[0]
	fmt.Printf("matched=%d unmatched=%d\n", stats.Matched, stats.Unmatched)
	// Output:
	// [1 A1 Widget]
	// [2 ZZ UNKNOWN]
	// matched=1 unmatched=1
}

// ExampleAnalyzeColumn demonstrates confidence-scored type inference over a
// single column.
func ExampleAnalyzeColumn() {
	values := []string{"10", "25", "31", ""}
	analysis := sheetsql.AnalyzeColumn("quantity", 0, values)
	fmt.Printf("%s confidence=%.2f nulls=%d\n", analysis.DetectedType, analysis.Confidence, analysis.NullCount)
	// Output:
	// INTEGER confidence=1.00 nulls=1
}
