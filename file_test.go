package sheetsql

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want FileType
	}{
		{path: "data.csv", want: FileTypeCSV},
		{path: "data.tsv", want: FileTypeTSV},
		{path: "data.xlsx", want: FileTypeXLSX},
		{path: "data.parquet", want: FileTypeParquet},
		{path: "data.CSV", want: FileTypeCSV},
		{path: "data.csv.gz", want: FileTypeCSV},
		{path: "data.tsv.bz2", want: FileTypeTSV},
		{path: "data.xlsx.xz", want: FileTypeXLSX},
		{path: "data.parquet.zst", want: FileTypeParquet},
		{path: "data.txt", want: FileTypeUnsupported},
		{path: "data.csv.rar", want: FileTypeUnsupported},
		{path: "data", want: FileTypeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, DetectFileType(tt.path))
			assert.Equal(t, tt.want != FileTypeUnsupported, IsSupportedFile(tt.path))
		})
	}
}

func TestSheetNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "orders.csv", want: "orders"},
		{path: "/data/monthly sales.xlsx", want: "monthly_sales"},
		{path: "report.csv.gz", want: "report"},
		{path: "2024-q1.tsv", want: "table_2024_q1"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, sheetNameFromPath(tt.path))
		})
	}
}

func TestParseFile_csv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.csv")
	content := "id,name,amount\n1,alice,10.5\n2,bob,20\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	sheets, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	sheet := sheets[0]
	assert.Equal(t, "orders", sheet.Name)
	assert.Equal(t, Header{"id", "name", "amount"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, Record{"1", "alice", "10.5"}, sheet.Rows[0])
}

func TestParseFile_tsv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.tsv")
	content := "a\tb\n1\t2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	sheets, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, Header{"a", "b"}, sheets[0].Headers)
	assert.Equal(t, Record{"1", "2"}, sheets[0].Rows[0])
}

func TestParseFile_raggedRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "a,b,c\n1,2\n3,4,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	sheets, err := ParseFile(path)
	require.NoError(t, err)
	// Short rows are padded with empty cells to header width.
	assert.Equal(t, Record{"1", "2", ""}, sheets[0].Rows[0])
	assert.Equal(t, Record{"3", "4", "5"}, sheets[0].Rows[1])
}

func TestParseFile_duplicateColumns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,id\n1,2\n"), 0o600))

	_, err := ParseFile(path)
	assert.ErrorContains(t, err, "duplicate column name")
}

func TestParseFile_empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := ParseFile(path)
	assert.ErrorIs(t, err, ErrEmptyData)
}

func TestParseFile_unsupported(t *testing.T) {
	t.Parallel()

	_, err := ParseFile("data.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFile_gzip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("id,name\n1,alice\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	sheets, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "orders", sheets[0].Name)
	assert.Equal(t, Record{"1", "alice"}, sheets[0].Rows[0])
}

func TestParseFile_zstd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.csv.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte("id,name\n1,alice\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	sheets, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, Record{"1", "alice"}, sheets[0].Rows[0])
}

func writeTestWorkbook(t *testing.T, path string, sheets map[string][][]string) {
	t.Helper()

	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, wb.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := wb.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, wb.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, wb.SaveAs(path))
}

func TestParseFile_xlsx(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeTestWorkbook(t, path, map[string][][]string{
		"Orders": {
			{"id", "product_code"},
			{"1", "A1"},
			{"2", "B2"},
		},
	})

	sheets, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "Orders", sheets[0].Name)
	assert.Equal(t, Header{"id", "product_code"}, sheets[0].Headers)
	require.Len(t, sheets[0].Rows, 2)
}

func TestParseReader(t *testing.T) {
	t.Parallel()

	t.Run("csv", func(t *testing.T) {
		t.Parallel()

		sheets, err := ParseReader(strings.NewReader("a,b\n1,2\n"), FileTypeCSV, "input")
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "input", sheets[0].Name)
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := ParseReader(strings.NewReader(""), FileTypeUnsupported, "input")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestParseParquetBytes_empty(t *testing.T) {
	t.Parallel()

	_, err := parseParquetBytes(nil, "input")
	assert.ErrorIs(t, err, ErrEmptyData)
}

func TestSupportedFileExtPatterns(t *testing.T) {
	t.Parallel()

	patterns := supportedFileExtPatterns()
	// 4 formats x (uncompressed + 4 codecs)
	assert.Len(t, patterns, 20)
	assert.Contains(t, patterns, "*.csv")
	assert.Contains(t, patterns, "*.parquet.zst")
}
