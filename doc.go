// Package sheetsql converts spreadsheet data (CSV, TSV, XLSX, Parquet) into
// SQL statements for PostgreSQL and MySQL without touching a live database.
//
// The pipeline is fully in-memory and synchronous: a parser turns files into
// Sheet values, a schema inference engine assigns confidence-scored SQL types
// to each column, an optional VLOOKUP engine enriches rows from other sheets,
// a validation engine reports constraint violations, and a dialect-aware
// generator emits batched INSERT, UPDATE, or UPSERT statements as plain text.
//
// # Features
//
//   - Multi-sheet XLSX, CSV, TSV, and Parquet input
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Confidence-scored column type inference (UUID, BOOLEAN, INTEGER, BIGINT,
//     DECIMAL, DATE, TIME, TIMESTAMPTZ, JSONB, TEXT)
//   - Cross-sheet VLOOKUP enrichment with per-lookup match statistics
//   - Row validation (NOT NULL, type conformance, UNIQUE)
//   - Batched SQL generation with per-dialect quoting, escaping, and
//     conflict handling
//
// # Basic Usage
//
//	job, err := sheetsql.LoadJobConfig("job.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sheetsql.ConvertFile(ctx, job, "orders.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.SQL)
//
// # Advanced Usage
//
// For multiple input sources, use the builder:
//
//	sctx, err := sheetsql.NewSheetBuilder().
//	    AddPath("orders.csv").
//	    AddPath("products.tsv.gz").
//	    SetPrimary("orders").
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sheetsql.Convert(ctx, sctx, job)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Cell Model
//
// Cells are strings. The empty string is the NULL of this package: parsers pad
// ragged rows with empty cells, the VLOOKUP engine writes empty cells for
// missing defaults, and the generator emits the NULL literal for blank values.
// Value coercion is deliberately lossy: a cell that cannot be parsed as its
// mapped type (an invalid UUID, malformed JSON) becomes NULL in the output and
// is reported through the validation engine, never a panic or a hard error.
package sheetsql
