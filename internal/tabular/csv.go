package tabular

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/classify-cli/internal/model"
)

// readCSV slurps a CSV stream into a table. The first record is the header
// row; rows may carry a variable number of fields. A leading byte-order
// mark (UTF-8 or UTF-16, as Excel exports write them) is honored and
// stripped.
func readCSV(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(bomAwareReader(r))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	if len(records) == 0 {
		return nil, eris.New("csv: file has no header row")
	}

	return &model.Table{Headers: records[0], Rows: records[1:]}, nil
}

func writeCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(padRow(row, len(t.Headers))); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}
	return nil
}

// bomAwareReader decodes a leading BOM into the matching Unicode encoding,
// defaulting to plain UTF-8 when none is present.
func bomAwareReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
