package sheetsql

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// OutputFormat is a sheet export format.
type OutputFormat int

const (
	// OutputFormatCSV is comma-separated output
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV is tab-separated output
	OutputFormatTSV
	// OutputFormatXLSX is Excel workbook output
	OutputFormatXLSX
)

// String returns the format name.
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the format's file extension.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatTSV:
		return extTSV
	case OutputFormatXLSX:
		return extXLSX
	default:
		return extCSV
	}
}

// WriteOptions configures sheet and SQL exports.
//
//	opts := sheetsql.NewWriteOptions().
//		WithFormat(sheetsql.OutputFormatTSV).
//		WithCompression(sheetsql.CompressionGZ)
type WriteOptions struct {
	// Format selects the sheet export format
	Format OutputFormat
	// Compression selects the compression codec for writing
	Compression CompressionType
}

// NewWriteOptions returns options with the defaults: CSV, no compression.
func NewWriteOptions() WriteOptions {
	return WriteOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat returns a copy with the export format set.
func (o WriteOptions) WithFormat(format OutputFormat) WriteOptions {
	o.Format = format
	return o
}

// WithCompression returns a copy with the compression codec set.
func (o WriteOptions) WithCompression(compression CompressionType) WriteOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the combined format and compression extension.
func (o WriteOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// WriteSQL writes generated SQL text to a writer through the requested
// compression codec.
func WriteSQL(w io.Writer, sql string, compression CompressionType) error {
	writer, cleanup, err := compression.newCompressor(w)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, sql); err != nil {
		_ = cleanup()
		return fmt.Errorf("sheetsql: failed to write SQL: %w", err)
	}
	return cleanup()
}

// WriteSQLFile writes generated SQL text to a file. Compression is detected
// from the path suffix.
func WriteSQLFile(path, sql string) error {
	writer, cleanup, err := createCompressedFile(path, DetectCompressionType(path))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(writer, sql); err != nil {
		_ = cleanup()
		return fmt.Errorf("sheetsql: failed to write SQL to %s: %w", path, err)
	}
	return cleanup()
}

// SaveSheet writes a sheet to a file per the options. The path's extension
// is taken as given; the options control format and compression.
func SaveSheet(sheet *Sheet, path string, opts WriteOptions) error {
	if opts.Format == OutputFormatXLSX {
		if opts.Compression != CompressionNone {
			return fmt.Errorf("sheetsql: xlsx output does not support compression")
		}
		return SaveSheetXLSX(sheet, path)
	}

	writer, cleanup, err := createCompressedFile(path, opts.Compression)
	if err != nil {
		return err
	}
	delimiter := rune(csvDelimiter)
	if opts.Format == OutputFormatTSV {
		delimiter = tsvDelimiter
	}
	if err := writeDelimited(writer, sheet, delimiter); err != nil {
		_ = cleanup()
		return err
	}
	return cleanup()
}

// SaveSheetCSV writes a sheet as an uncompressed CSV file.
func SaveSheetCSV(sheet *Sheet, path string) error {
	return SaveSheet(sheet, path, NewWriteOptions())
}

// writeDelimited streams a sheet's header and rows through a csv.Writer.
func writeDelimited(w io.Writer, sheet *Sheet, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := csvWriter.Write(sheet.Headers); err != nil {
		return fmt.Errorf("sheetsql: failed to write header: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("sheetsql: failed to write row: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("sheetsql: failed to flush output: %w", err)
	}
	return nil
}

// SaveSheetXLSX writes a sheet as a single-worksheet Excel workbook named
// after the sheet.
func SaveSheetXLSX(sheet *Sheet, path string) error {
	workbook := excelize.NewFile()
	defer func() {
		_ = workbook.Close()
	}()

	const defaultSheet = "Sheet1"
	if sheet.Name != defaultSheet {
		if err := workbook.SetSheetName(defaultSheet, sheet.Name); err != nil {
			return fmt.Errorf("sheetsql: failed to name sheet %s: %w", sheet.Name, err)
		}
	}

	writeRow := func(rowIdx int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return fmt.Errorf("sheetsql: failed to resolve cell: %w", err)
		}
		values := make([]any, len(cells))
		for i, v := range cells {
			values[i] = v
		}
		if err := workbook.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("sheetsql: failed to write row %d: %w", rowIdx, err)
		}
		return nil
	}

	if err := writeRow(1, sheet.Headers); err != nil {
		return err
	}
	for i, row := range sheet.Rows {
		if err := writeRow(i+2, row); err != nil {
			return err
		}
	}

	if err := workbook.SaveAs(path); err != nil {
		return fmt.Errorf("sheetsql: failed to save workbook %s: %w", path, err)
	}
	return nil
}
