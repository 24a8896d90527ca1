package sheetsql

import (
	"context"
	"fmt"
)

// ConvertResult is the outcome of a full conversion run: the enriched
// primary sheet, the per-stage reports, and the generated SQL.
type ConvertResult struct {
	// Sheet is the primary sheet after lookup enrichment
	Sheet *Sheet
	// Lookup reports the enrichment pass
	Lookup LookupResult
	// Validation reports the data checks against the mappings
	Validation ValidationResult
	// Generation reports the SQL build; zero when PreviewOnly is set
	Generation GenerateResult
	// SQL is the generated statement text; empty when PreviewOnly is set
	SQL string
}

// Convert runs the full pipeline over a sheet context: lookup enrichment on
// the primary sheet, validation against the job's column mappings, and SQL
// generation. Lookup construction failures abort the run; validation
// findings are reported but only stop generation when the caller inspects
// them. When the job's lookup set is marked preview-only the SQL stage is
// skipped.
func Convert(ctx context.Context, sheetCtx *SheetContext, job *JobConfig) (*ConvertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sheetCtx == nil {
		return nil, ErrNoSheets
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	primary := sheetCtx.Primary()
	set := job.LookupSet()
	lookup := ApplyVLookups(primary, set, sheetCtx, LookupOptions{FailFast: true})
	if len(lookup.Errors) > 0 {
		return nil, fmt.Errorf("sheetsql: lookup failed: %s", lookup.Errors[0].Error())
	}

	enriched := NewSheet(primary.Name, lookup.Headers, lookup.Rows)
	result := &ConvertResult{
		Sheet:  enriched,
		Lookup: lookup,
	}

	mappings := job.Mappings()
	if len(activeMappings(mappings)) == 0 {
		return nil, ErrNoActiveMappings
	}
	result.Validation = ValidateData(enriched.Headers, enriched.Rows, mappings, ValidateOptions{})

	if set.Enabled && set.PreviewOnly {
		return result, nil
	}

	generator, err := NewGenerator(nil, job.SQLConfig())
	if err != nil {
		return nil, err
	}
	generation, err := generator.GenerateSQL(enriched.Headers, enriched.Rows, mappings, GenerateOptions{
		IncludeHeader: true,
	})
	if err != nil {
		return nil, err
	}
	result.Generation = *generation
	result.SQL = generation.SQL
	return result, nil
}

// ConvertFile loads input files, builds a sheet context with the first
// file's first sheet as primary, and runs Convert over it.
func ConvertFile(ctx context.Context, job *JobConfig, paths ...string) (*ConvertResult, error) {
	sheetCtx, err := NewSheetBuilder().AddPaths(paths...).Build(ctx)
	if err != nil {
		return nil, err
	}
	return Convert(ctx, sheetCtx, job)
}
