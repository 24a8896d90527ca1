package sheetsql

import (
	"strings"
)

// SheetContext indexes parsed sheets by name and resolves column references
// for the VLOOKUP engine. Built once per import; read-only afterwards.
type SheetContext struct {
	sheets  map[string]*Sheet
	order   []string
	primary string
}

// NewSheetContext builds a context from parsed sheets. The primary sheet is
// the one enrichment and generation operate on; it must be present.
func NewSheetContext(sheets []*Sheet, primary string) (*SheetContext, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	ctx := &SheetContext{
		sheets:  make(map[string]*Sheet, len(sheets)),
		order:   make([]string, 0, len(sheets)),
		primary: primary,
	}
	for _, sheet := range sheets {
		if _, exists := ctx.sheets[sheet.Name]; exists {
			continue
		}
		ctx.sheets[sheet.Name] = sheet
		ctx.order = append(ctx.order, sheet.Name)
	}

	if _, ok := ctx.sheets[primary]; !ok {
		return nil, &SheetNotFoundError{Name: primary, Available: ctx.order}
	}
	return ctx, nil
}

// Sheet returns the sheet with the given name. The error enumerates the
// sheets that do exist.
func (c *SheetContext) Sheet(name string) (*Sheet, error) {
	if sheet, ok := c.sheets[name]; ok {
		return sheet, nil
	}
	return nil, &SheetNotFoundError{Name: name, Available: c.SheetNames()}
}

// HasSheet reports whether the named sheet exists.
func (c *SheetContext) HasSheet(name string) bool {
	_, ok := c.sheets[name]
	return ok
}

// SheetNames returns all sheet names in declaration order.
func (c *SheetContext) SheetNames() []string {
	return append([]string(nil), c.order...)
}

// Primary returns the primary sheet.
func (c *SheetContext) Primary() *Sheet {
	return c.sheets[c.primary]
}

// ColumnIndex resolves a column name against a sheet header: exact match
// first, then case- and whitespace-insensitive.
func (c *SheetContext) ColumnIndex(sheet *Sheet, column string) (int, error) {
	return columnIndex(sheet, column)
}

// ColumnName returns the header name at the given index, bounds-checked.
func (c *SheetContext) ColumnName(sheet *Sheet, index int) (string, error) {
	if index < 0 || index >= len(sheet.Headers) {
		return "", &ColumnIndexError{Sheet: sheet.Name, Index: index, Width: len(sheet.Headers)}
	}
	return sheet.Headers[index], nil
}

// columnIndex resolves a column name against a header, tolerating case and
// surrounding whitespace differences. Exact matches win so that headers
// differing only in case stay addressable.
func columnIndex(sheet *Sheet, column string) (int, error) {
	for i, h := range sheet.Headers {
		if h == column {
			return i, nil
		}
	}

	want := strings.ToLower(strings.TrimSpace(column))
	for i, h := range sheet.Headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, nil
		}
	}

	return -1, &ColumnNotFoundError{
		Sheet:     sheet.Name,
		Column:    column,
		Available: append([]string(nil), sheet.Headers...),
	}
}

// headerIndex is columnIndex against a bare header, for callers that work on
// enriched row sets rather than a Sheet.
func headerIndex(headers Header, sheetName, column string) (int, error) {
	return columnIndex(&Sheet{Name: sheetName, Headers: headers}, column)
}
