package sheetsql

import (
	"fmt"
	"strings"
)

// LookupSourceType identifies where a lookup table comes from.
type LookupSourceType int

const (
	// LookupSourceInline builds the lookup table from literal key/value pairs
	LookupSourceInline LookupSourceType = iota
	// LookupSourceSheet builds the lookup table from another sheet's columns
	LookupSourceSheet
	// LookupSourceFile is declared for configuration compatibility but has no
	// implementation; using it is an error
	LookupSourceFile
)

// String returns the configuration name of the source type.
func (t LookupSourceType) String() string {
	switch t {
	case LookupSourceSheet:
		return "sheet"
	case LookupSourceFile:
		return "file"
	default:
		return "inline"
	}
}

// ParseLookupSourceType resolves a configuration string to a source type.
func ParseLookupSourceType(name string) (LookupSourceType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "inline", "":
		return LookupSourceInline, nil
	case "sheet":
		return LookupSourceSheet, nil
	case "file":
		return LookupSourceFile, nil
	default:
		return LookupSourceInline, fmt.Errorf("sheetsql: unknown lookup source type %q", name)
	}
}

// SheetLookup names the sheet and columns a sheet-sourced lookup reads from.
type SheetLookup struct {
	SheetName   string
	KeyColumn   string
	ValueColumn string
}

// VLookupConfig is one key-based enrichment rule: read a key from
// SourceColumn, resolve it through a lookup table, write the result to
// TargetColumn. Configs are authored by the caller and never mutated by the
// engine.
type VLookupConfig struct {
	// ID identifies the lookup in stats and errors
	ID string
	// SourceColumn is the main-sheet column the key is read from
	SourceColumn string
	// TargetColumn receives the looked-up value; appended to the header when absent
	TargetColumn string
	// SourceType selects inline, sheet, or file sourcing
	SourceType LookupSourceType
	// InlineMap holds literal key/value pairs for inline sourcing
	InlineMap map[string]string
	// SheetLookup configures sheet sourcing
	SheetLookup *SheetLookup
	// DefaultValue is written for null inputs and unmatched keys; empty means NULL
	DefaultValue string
	// CaseSensitive disables key lowercasing during normalization
	CaseSensitive bool
	// TrimKeys strips surrounding whitespace from keys during normalization
	TrimKeys bool
	// AllowOverwrite permits replacing a non-blank value in an existing target column
	AllowOverwrite bool
}

// VLookupSet is the ordered collection of lookups for one import session.
type VLookupSet struct {
	Enabled     bool
	Lookups     []VLookupConfig
	PreviewOnly bool
}

// LookupStats counts outcomes for one lookup across all rows.
type LookupStats struct {
	LookupID     string
	SourceColumn string
	TargetColumn string
	TotalRows    int
	Matched      int
	Unmatched    int
	NullInputs   int
}

// LookupOptions tunes one ApplyVLookups call.
type LookupOptions struct {
	// Disabled forces passthrough regardless of the set's Enabled flag
	Disabled bool
	// FailFast returns only errors, with no transformed rows, when any
	// lookup fails to construct
	FailFast bool
}

// LookupResult is the outcome of applying a lookup set: enriched rows and
// headers, per-lookup statistics, and construction errors.
type LookupResult struct {
	Rows    []Record
	Headers Header
	Stats   []LookupStats
	Errors  []LookupError
}

// lookupProcessor is one compiled lookup: resolved column positions plus the
// normalized key table.
type lookupProcessor struct {
	config       VLookupConfig
	sourceIndex  int
	targetIndex  int
	targetExists bool
	table        map[string]string
}

// normalizeKey applies the lookup's trim and case rules to a key. The same
// rule is used for building the table and for probing it.
func (cfg VLookupConfig) normalizeKey(key string) string {
	if cfg.TrimKeys {
		key = strings.TrimSpace(key)
	}
	if !cfg.CaseSensitive {
		key = strings.ToLower(key)
	}
	return key
}

// buildLookupTable materializes the key→value map for one config.
// Sheet-sourced tables scan the lookup sheet once, skipping rows with blank
// keys; a duplicate key keeps the last occurrence.
func buildLookupTable(cfg VLookupConfig, ctx *SheetContext) (map[string]string, error) {
	switch cfg.SourceType {
	case LookupSourceInline:
		table := make(map[string]string, len(cfg.InlineMap))
		for k, v := range cfg.InlineMap {
			table[cfg.normalizeKey(k)] = v
		}
		return table, nil

	case LookupSourceSheet:
		if cfg.SheetLookup == nil {
			return nil, fmt.Errorf("sheetsql: lookup %s: sheet lookup configuration missing", cfg.ID)
		}
		if ctx == nil {
			return nil, &SheetNotFoundError{Name: cfg.SheetLookup.SheetName}
		}
		sheet, err := ctx.Sheet(cfg.SheetLookup.SheetName)
		if err != nil {
			return nil, err
		}
		keyIdx, err := columnIndex(sheet, cfg.SheetLookup.KeyColumn)
		if err != nil {
			return nil, err
		}
		valueIdx, err := columnIndex(sheet, cfg.SheetLookup.ValueColumn)
		if err != nil {
			return nil, err
		}

		table := make(map[string]string, len(sheet.Rows))
		for _, row := range sheet.Rows {
			if keyIdx >= len(row) || isBlank(row[keyIdx]) {
				continue
			}
			value := ""
			if valueIdx < len(row) {
				value = row[valueIdx]
			}
			table[cfg.normalizeKey(row[keyIdx])] = value
		}
		return table, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLookupSource, cfg.SourceType)
	}
}

// ApplyVLookups applies a lookup set to a sheet's rows and returns enriched
// rows, extended headers, per-lookup stats, and structured errors. The
// function is pure: identical inputs produce identical results, and the input
// sheet is never mutated.
func ApplyVLookups(sheet *Sheet, set VLookupSet, ctx *SheetContext, opts LookupOptions) LookupResult {
	if opts.Disabled || !set.Enabled || len(set.Lookups) == 0 {
		return LookupResult{
			Rows:    copyRows(sheet.Rows, len(sheet.Headers)),
			Headers: sheet.Headers.clone(),
			Stats:   []LookupStats{},
			Errors:  []LookupError{},
		}
	}

	// Output headers: input headers plus any target columns not already
	// present, appended in lookup declaration order, de-duplicated exactly.
	headers := sheet.Headers.clone()
	for _, cfg := range set.Lookups {
		if !containsExact(headers, cfg.TargetColumn) {
			headers = append(headers, cfg.TargetColumn)
		}
	}

	processors := make([]*lookupProcessor, 0, len(set.Lookups))
	lookupErrs := make([]LookupError, 0)
	for _, cfg := range set.Lookups {
		proc, err := buildProcessor(cfg, sheet, headers, ctx)
		if err != nil {
			lookupErrs = append(lookupErrs, classifyLookupError(cfg.ID, err))
			continue
		}
		processors = append(processors, proc)
	}

	if opts.FailFast && len(lookupErrs) > 0 {
		return LookupResult{
			Rows:    []Record{},
			Headers: Header{},
			Stats:   []LookupStats{},
			Errors:  lookupErrs,
		}
	}

	stats := make([]LookupStats, len(processors))
	for i, proc := range processors {
		stats[i] = LookupStats{
			LookupID:     proc.config.ID,
			SourceColumn: proc.config.SourceColumn,
			TargetColumn: proc.config.TargetColumn,
		}
	}

	rows := copyRows(sheet.Rows, len(headers))
	for _, row := range rows {
		for i, proc := range processors {
			stats[i].TotalRows++

			input := ""
			if proc.sourceIndex < len(row) {
				input = row[proc.sourceIndex]
			}

			var output string
			switch {
			case isBlank(input):
				output = proc.config.DefaultValue
				stats[i].NullInputs++
			default:
				if value, ok := proc.table[proc.config.normalizeKey(input)]; ok {
					output = value
					stats[i].Matched++
				} else {
					output = proc.config.DefaultValue
					stats[i].Unmatched++
				}
			}

			if proc.targetExists && !proc.config.AllowOverwrite && !isBlank(row[proc.targetIndex]) {
				continue
			}
			row[proc.targetIndex] = output
		}
	}

	return LookupResult{Rows: rows, Headers: headers, Stats: stats, Errors: lookupErrs}
}

// buildProcessor resolves one config's column positions and lookup table.
func buildProcessor(cfg VLookupConfig, sheet *Sheet, headers Header, ctx *SheetContext) (*lookupProcessor, error) {
	sourceIdx, err := columnIndex(sheet, cfg.SourceColumn)
	if err != nil {
		return nil, err
	}
	targetIdx, err := headerIndex(headers, sheet.Name, cfg.TargetColumn)
	if err != nil {
		return nil, err
	}

	table, err := buildLookupTable(cfg, ctx)
	if err != nil {
		return nil, err
	}

	return &lookupProcessor{
		config:       cfg,
		sourceIndex:  sourceIdx,
		targetIndex:  targetIdx,
		targetExists: containsExact(sheet.Headers, cfg.TargetColumn),
		table:        table,
	}, nil
}

// copyRows deep-copies rows, extending each with empty cells up to width.
// The extension never truncates longer rows.
func copyRows(rows []Record, width int) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		w := width
		if len(row) > w {
			w = len(row)
		}
		r := make(Record, w)
		copy(r, row)
		out[i] = r
	}
	return out
}

// containsExact reports whether the header holds the exact name.
func containsExact(headers Header, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
