// Package tabular reads and writes the two supported spreadsheet formats,
// CSV and XLSX.
package tabular

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/classify-cli/internal/model"
)

// Format identifies a supported tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file types other than CSV and XLSX.
// It is fatal to a run: no row is processed after it.
var ErrUnsupportedFormat = eris.New("tabular: unsupported file format (want .csv or .xlsx)")

// DetectFormat resolves a file name to a Format by its extension,
// case-insensitively.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "%s", filename)
	}
}

// Read parses a tabular stream in the given format. XLSX needs random
// access, so Read takes an io.ReaderAt plus the stream size; both os.File
// and multipart uploads satisfy it.
func Read(r io.ReaderAt, size int64, format Format) (*model.Table, error) {
	switch format {
	case FormatCSV:
		return readCSV(io.NewSectionReader(r, 0, size))
	case FormatXLSX:
		return readXLSX(r, size)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
}

// ReadFile loads the table at path, detecting the format from its
// extension.
func ReadFile(path string) (*model.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: open %s", path)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: stat %s", path)
	}
	return Read(f, fi.Size(), format)
}

// Write renders the table to w in the given format.
func Write(w io.Writer, t *model.Table, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatXLSX:
		return writeXLSX(w, t)
	default:
		return eris.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
}

// WriteFile writes the table to path, detecting the format from its
// extension.
func WriteFile(path string, t *model.Table) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "tabular: create %s", path)
	}
	if err := Write(f, t, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "tabular: close %s", path)
	}
	return nil
}

// padRow pads cells with empty strings up to width. Rows wider than the
// header keep their extra cells.
func padRow(cells []string, width int) []string {
	if len(cells) >= width {
		return cells
	}
	padded := make([]string, width)
	copy(padded, cells)
	return padded
}
