package sheetsql

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileType is a supported input format, before compression.
type FileType int

const (
	// FileTypeCSV is a comma-separated file
	FileTypeCSV FileType = iota
	// FileTypeTSV is a tab-separated file
	FileTypeTSV
	// FileTypeXLSX is an Excel workbook
	FileTypeXLSX
	// FileTypeParquet is an Apache Parquet file
	FileTypeParquet
	// FileTypeUnsupported is anything else
	FileTypeUnsupported
)

// File extensions
const (
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extXLSX    = ".xlsx"
	extParquet = ".parquet"
)

// Extension returns the file extension for the format.
func (ft FileType) Extension() string {
	switch ft {
	case FileTypeCSV:
		return extCSV
	case FileTypeTSV:
		return extTSV
	case FileTypeXLSX:
		return extXLSX
	case FileTypeParquet:
		return extParquet
	default:
		return ""
	}
}

// DetectFileType detects the format from a path, looking through any
// compression extension.
func DetectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(stripCompressionExtension(path)))
	switch ext {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extXLSX:
		return FileTypeXLSX
	case extParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// IsSupportedFile reports whether the path has a supported extension,
// with or without a compression suffix.
func IsSupportedFile(path string) bool {
	return DetectFileType(path) != FileTypeUnsupported
}

// supportedFileExtPatterns returns glob patterns for every supported
// format and compression combination.
func supportedFileExtPatterns() []string {
	baseExts := []string{extCSV, extTSV, extXLSX, extParquet}
	compressionExts := []string{"", extGZ, extBZ2, extXZ, extZSTD}

	var patterns []string
	for _, baseExt := range baseExts {
		for _, compressionExt := range compressionExts {
			patterns = append(patterns, "*"+baseExt+compressionExt)
		}
	}
	return patterns
}

// sheetNameFromPath derives a sheet name from a file path: the base name
// with compression and format extensions removed, sanitized for SQL use.
func sheetNameFromPath(path string) string {
	base := filepath.Base(stripCompressionExtension(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return NewTableName(base).Sanitize().String()
}

// file is one input file resolved to a format and compression codec.
type file struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// newFile resolves a path's format and compression from its extensions.
func newFile(path string) *file {
	return &file{
		path:        path,
		fileType:    DetectFileType(path),
		compression: DetectCompressionType(path),
	}
}

// ParseFile reads a spreadsheet file into sheets. CSV, TSV, and Parquet
// files produce one sheet named after the file; XLSX workbooks produce one
// sheet per worksheet, named after the worksheet. Compression is detected
// from the path.
func ParseFile(path string) ([]*Sheet, error) {
	f := newFile(path)
	switch f.fileType {
	case FileTypeCSV:
		return f.parseDelimited(csvDelimiter)
	case FileTypeTSV:
		return f.parseDelimited(tsvDelimiter)
	case FileTypeXLSX:
		return f.parseXLSX()
	case FileTypeParquet:
		return f.parseParquet()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseReader reads spreadsheet data from a reader. The reader must deliver
// uncompressed bytes; name labels the resulting sheet for CSV, TSV, and
// Parquet input.
func ParseReader(r io.Reader, fileType FileType, name string) ([]*Sheet, error) {
	switch fileType {
	case FileTypeCSV:
		sheet, err := parseDelimitedReader(r, csvDelimiter, name)
		if err != nil {
			return nil, err
		}
		return []*Sheet{sheet}, nil
	case FileTypeTSV:
		sheet, err := parseDelimitedReader(r, tsvDelimiter, name)
		if err != nil {
			return nil, err
		}
		return []*Sheet{sheet}, nil
	case FileTypeXLSX:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("sheetsql: failed to read input: %w", err)
		}
		return parseXLSXBytes(data)
	case FileTypeParquet:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("sheetsql: failed to read input: %w", err)
		}
		sheet, err := parseParquetBytes(data, name)
		if err != nil {
			return nil, err
		}
		return []*Sheet{sheet}, nil
	default:
		return nil, fmt.Errorf("%w: file type %d", ErrUnsupportedFormat, fileType)
	}
}

// parseDelimited parses a CSV or TSV file with compression support.
func (f *file) parseDelimited(delimiter rune) ([]*Sheet, error) {
	reader, cleanup, err := openCompressedFile(f.path)
	if err != nil {
		return nil, err
	}
	defer cleanup() //nolint:errcheck // read path, close errors are unactionable

	sheet, err := parseDelimitedReader(reader, delimiter, sheetNameFromPath(f.path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, f.path)
	}
	return []*Sheet{sheet}, nil
}

// parseDelimitedReader parses delimiter-separated rows into a sheet. The
// first row is the header; ragged data rows are padded by NewSheet. Rows may
// have varying field counts, so the reader's per-record check is disabled.
func parseDelimitedReader(r io.Reader, delimiter rune, name string) (*Sheet, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to parse input: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyData
	}

	if err := validateColumnNames(records[0]); err != nil {
		return nil, err
	}

	rows := make([]Record, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		rows = append(rows, newRecord(records[i]))
	}
	return NewSheet(name, newHeader(records[0]), rows), nil
}

// parseXLSX parses an XLSX workbook with compression support. Compressed
// workbooks are buffered; excelize needs random access.
func (f *file) parseXLSX() ([]*Sheet, error) {
	if f.compression == CompressionNone {
		xlsxFile, err := excelize.OpenFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("sheetsql: failed to open workbook %s: %w", f.path, err)
		}
		defer func() {
			_ = xlsxFile.Close()
		}()
		return sheetsFromWorkbook(xlsxFile)
	}

	reader, cleanup, err := openCompressedFile(f.path)
	if err != nil {
		return nil, err
	}
	defer cleanup() //nolint:errcheck // read path, close errors are unactionable

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to read workbook %s: %w", f.path, err)
	}
	return parseXLSXBytes(data)
}

// parseXLSXBytes parses an in-memory XLSX workbook.
func parseXLSXBytes(data []byte) ([]*Sheet, error) {
	xlsxFile, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to open workbook: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close()
	}()
	return sheetsFromWorkbook(xlsxFile)
}

// sheetsFromWorkbook reads every worksheet into a Sheet. Worksheets without
// a header row are skipped; a workbook with no usable worksheets is an
// error.
func sheetsFromWorkbook(xlsxFile *excelize.File) ([]*Sheet, error) {
	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, ErrNoSheets
	}

	sheets := make([]*Sheet, 0, len(sheetNames))
	for _, sheetName := range sheetNames {
		rows, err := xlsxFile.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheetsql: failed to read sheet %s: %w", sheetName, err)
		}
		if len(rows) == 0 {
			continue
		}
		if err := validateColumnNames(rows[0]); err != nil {
			return nil, fmt.Errorf("%w (sheet %s)", err, sheetName)
		}

		dataRows := make([]Record, 0, len(rows)-1)
		for i := 1; i < len(rows); i++ {
			dataRows = append(dataRows, newRecord(rows[i]))
		}
		sheets = append(sheets, NewSheet(sheetName, newHeader(rows[0]), dataRows))
	}
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	return sheets, nil
}

// parseParquet parses a Parquet file with compression support.
func (f *file) parseParquet() ([]*Sheet, error) {
	reader, cleanup, err := openCompressedFile(f.path)
	if err != nil {
		return nil, err
	}
	defer cleanup() //nolint:errcheck // read path, close errors are unactionable

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to read parquet file %s: %w", f.path, err)
	}
	sheet, err := parseParquetBytes(data, sheetNameFromPath(f.path))
	if err != nil {
		return nil, err
	}
	return []*Sheet{sheet}, nil
}
