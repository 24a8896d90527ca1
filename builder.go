package sheetsql

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SheetBuilder collects input sources and builds a SheetContext from them.
// Use NewSheetBuilder to create a new instance, then chain method calls to
// configure it.
//
// The typical usage pattern is:
//
//	ctx, err := sheetsql.NewSheetBuilder().
//		AddPath("orders.xlsx").
//		AddPath("products.csv").
//		Build(context.Background())
type SheetBuilder struct {
	// paths contains regular file and directory paths
	paths []string
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// sheets contains pre-built sheets added directly
	sheets []*Sheet
	// primary names the primary sheet; empty means the first loaded
	primary string
}

// NewSheetBuilder creates a new builder for configuring spreadsheet inputs.
func NewSheetBuilder() *SheetBuilder {
	return &SheetBuilder{
		paths:       make([]string, 0),
		filesystems: make([]fs.FS, 0),
	}
}

// AddPath adds a file or directory path to the builder. Directories are
// searched recursively for supported files. Returns the builder for
// chaining.
func (b *SheetBuilder) AddPath(path string) *SheetBuilder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple paths at once. Returns the builder for chaining.
func (b *SheetBuilder) AddPaths(paths ...string) *SheetBuilder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds all supported files from a filesystem to the builder. Useful
// with go:embed. Returns the builder for chaining.
func (b *SheetBuilder) AddFS(filesystem fs.FS) *SheetBuilder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// AddSheet adds an already-built sheet. Returns the builder for chaining.
func (b *SheetBuilder) AddSheet(sheet *Sheet) *SheetBuilder {
	b.sheets = append(b.sheets, sheet)
	return b
}

// SetPrimary names the primary sheet for the built context. When unset, the
// first loaded sheet is primary. Returns the builder for chaining.
func (b *SheetBuilder) SetPrimary(name string) *SheetBuilder {
	b.primary = name
	return b
}

// Build loads every configured source and assembles a SheetContext. Two
// sheets resolving to the same name is an error.
func (b *SheetBuilder) Build(ctx context.Context) (*SheetContext, error) {
	if len(b.paths) == 0 && len(b.filesystems) == 0 && len(b.sheets) == 0 {
		return nil, errors.New("sheetsql: at least one input must be provided")
	}

	sheets := make([]*Sheet, 0, len(b.sheets))
	sheets = append(sheets, b.sheets...)

	for _, path := range b.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("sheetsql: path does not exist: %s", path)
			}
			return nil, fmt.Errorf("sheetsql: failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			loaded, err := b.loadDirectory(ctx, path)
			if err != nil {
				return nil, err
			}
			sheets = append(sheets, loaded...)
			continue
		}

		if !IsSupportedFile(path) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}
		loaded, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, loaded...)
	}

	for _, filesystem := range b.filesystems {
		if filesystem == nil {
			return nil, errors.New("sheetsql: filesystem cannot be nil")
		}
		loaded, err := b.loadFS(ctx, filesystem)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, loaded...)
	}

	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	if err := checkSheetNames(sheets); err != nil {
		return nil, err
	}

	primary := b.primary
	if primary == "" {
		primary = sheets[0].Name
	}
	return NewSheetContext(sheets, primary)
}

// loadDirectory loads every supported file under a directory, recursively.
func (b *SheetBuilder) loadDirectory(ctx context.Context, dir string) ([]*Sheet, error) {
	var sheets []*Sheet
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !IsSupportedFile(path) {
			return nil
		}
		loaded, err := ParseFile(path)
		if err != nil {
			return err
		}
		sheets = append(sheets, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to load directory %s: %w", dir, err)
	}
	return sheets, nil
}

// loadFS loads every supported file from a filesystem. Compression is
// detected from each file's name.
func (b *SheetBuilder) loadFS(ctx context.Context, filesystem fs.FS) ([]*Sheet, error) {
	var sheets []*Sheet
	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !IsSupportedFile(path) {
			return nil
		}
		loaded, err := parseFSFile(filesystem, path)
		if err != nil {
			return err
		}
		sheets = append(sheets, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to load filesystem: %w", err)
	}
	return sheets, nil
}

// parseFSFile reads one file from a filesystem through the compression
// layer and parses it by its detected format.
func parseFSFile(filesystem fs.FS, path string) ([]*Sheet, error) {
	f, err := filesystem.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sheetsql: failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader, cleanup, err := DetectCompressionType(path).newDecompressor(f)
	if err != nil {
		return nil, err
	}
	defer cleanup() //nolint:errcheck // read path, close errors are unactionable

	return ParseReader(reader, DetectFileType(path), sheetNameFromPath(path))
}

// checkSheetNames rejects duplicate sheet names across all inputs.
func checkSheetNames(sheets []*Sheet) error {
	seen := make(map[string]bool, len(sheets))
	for _, sheet := range sheets {
		if seen[sheet.Name] {
			return fmt.Errorf("sheetsql: duplicate sheet name: %s", sheet.Name)
		}
		seen[sheet.Name] = true
	}
	return nil
}
