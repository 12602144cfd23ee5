package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/classify-cli/internal/model"
)

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	t.Run("csv", func(t *testing.T) {
		t.Parallel()
		got, err := DetectFormat("urls.csv")
		require.NoError(t, err)
		assert.Equal(t, FormatCSV, got)
	})

	t.Run("xlsx", func(t *testing.T) {
		t.Parallel()
		got, err := DetectFormat("urls.xlsx")
		require.NoError(t, err)
		assert.Equal(t, FormatXLSX, got)
	})

	t.Run("extension is case insensitive", func(t *testing.T) {
		t.Parallel()
		got, err := DetectFormat("URLS.CSV")
		require.NoError(t, err)
		assert.Equal(t, FormatCSV, got)

		got, err = DetectFormat("Urls.Xlsx")
		require.NoError(t, err)
		assert.Equal(t, FormatXLSX, got)
	})

	t.Run("unsupported extensions", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"urls.xls", "urls.txt", "urls.json", "urls"} {
			_, err := DetectFormat(name)
			require.Error(t, err, name)
			assert.True(t, errors.Is(err, ErrUnsupportedFormat), name)
		}
	})
}

func TestRead_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("URL\n"), 4, Format("tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "urls.parquet"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
}

func TestWriteFileReadFile_CSVRoundTrip(t *testing.T) {
	t.Parallel()

	want := &model.Table{
		Headers: []string{"URL", "Title", "Category"},
		Rows: [][]string{
			{"https://a.example", "A, with comma", "Tech"},
			{"https://b.example", `B "quoted"`, "Sports"},
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, want))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.Headers, got.Headers)
	assert.Equal(t, want.Rows, got.Rows)
}

func TestWriteFileReadFile_XLSXRoundTrip(t *testing.T) {
	t.Parallel()

	want := &model.Table{
		Headers: []string{"URL", "Category"},
		Rows: [][]string{
			{"https://a.example", "Tech"},
			{"https://b.example", "Uncategorized"},
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteFile(path, want))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.Headers, got.Headers)
	assert.Equal(t, want.Rows, got.Rows)
}

func TestWriteFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	err := WriteFile(filepath.Join(t.TempDir(), "out.ods"), &model.Table{Headers: []string{"URL"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadFile_DetectsFormatFromContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("URL,Title\nhttps://a.example,A\n"), 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"URL", "Title"}, got.Headers)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"https://a.example", "A"}, got.Rows[0])
}
