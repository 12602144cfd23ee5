package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeaders(t *testing.T) {
	t.Parallel()

	tbl := &Table{Headers: []string{" url ", "Title", "  source  "}}
	tbl.NormalizeHeaders()

	assert.Equal(t, []string{"URL", "TITLE", "SOURCE"}, tbl.Headers)
}

func TestColumnIndex(t *testing.T) {
	t.Parallel()

	tbl := &Table{Headers: []string{"URL", "Title", "Category"}}

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, tbl.ColumnIndex("URL"))
		assert.Equal(t, 2, tbl.ColumnIndex("Category"))
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, -1, tbl.ColumnIndex("url"))
	})

	t.Run("absent column", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, -1, tbl.ColumnIndex("Author"))
	})
}

func TestCell_RaggedRows(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Headers: []string{"URL", "Title"},
		Rows: [][]string{
			{"https://a.example", "A"},
			{"https://b.example"},
		},
	}

	assert.Equal(t, "A", tbl.Cell(0, 1))
	assert.Equal(t, "", tbl.Cell(1, 1))
	assert.Equal(t, "", tbl.Cell(5, 0))
	assert.Equal(t, "", tbl.Cell(0, -1))
}

func TestSetColumn_Append(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Headers: []string{"URL"},
		Rows: [][]string{
			{"https://a.example"},
			{"https://b.example"},
		},
	}

	tbl.SetColumn(CategoryColumn, []string{"Tech", Uncategorized})

	assert.Equal(t, []string{"URL", "Category"}, tbl.Headers)
	assert.Equal(t, "Tech", tbl.Cell(0, 1))
	assert.Equal(t, Uncategorized, tbl.Cell(1, 1))
}

func TestSetColumn_OverwriteExisting(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Headers: []string{"URL", "Category"},
		Rows: [][]string{
			{"https://a.example", "stale"},
		},
	}

	tbl.SetColumn(CategoryColumn, []string{"Sports"})

	assert.Equal(t, []string{"URL", "Category"}, tbl.Headers)
	assert.Equal(t, "Sports", tbl.Cell(0, 1))
}

func TestSetColumn_PadsShortRows(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Headers: []string{"URL", "Title"},
		Rows: [][]string{
			{"https://a.example"},
		},
	}

	tbl.SetColumn(CategoryColumn, []string{"Health"})

	assert.Equal(t, []string{"https://a.example", "", "Health"}, tbl.Rows[0])
}
