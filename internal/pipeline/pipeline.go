// Package pipeline runs the per-row classification loop: extract text from
// each URL, classify it, and write the Category column back to the table.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/classify-cli/internal/extract"
	"github.com/sells-group/classify-cli/internal/model"
)

// ErrNoURLColumn is returned when the input table has no URL column. It is
// fatal before any row is processed.
var ErrNoURLColumn = eris.New("pipeline: input has no URL column")

// Extractor fetches a URL and reduces the page to plain text. An empty
// string with a nil error means the page has no paragraph text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Classifier assigns one category label to extracted text.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string) (string, error)
}

// Options configures a Pipeline.
type Options struct {
	// NormalizeHeaders trims and uppercases table headers before the URL
	// column is resolved.
	NormalizeHeaders bool
}

// Summary reports the counters of one run.
type Summary struct {
	RunID             string
	Rows              int
	Classified        int
	Uncategorized     int
	MissingURL        int
	HTTPFailures      int
	TransportFailures int
}

// Pipeline orchestrates extraction and classification across a table. Rows
// are processed strictly in input order, one at a time.
type Pipeline struct {
	extractor  Extractor
	classifier Classifier
	opts       Options
}

// New creates a Pipeline with its dependencies. The classifier is built
// once per run by the caller and injected here.
func New(extractor Extractor, classifier Classifier, opts Options) *Pipeline {
	return &Pipeline{extractor: extractor, classifier: classifier, opts: opts}
}

// Run classifies every row of the table and writes the Category column in
// place, so every input row comes out with a populated Category. Rows
// without a URL skip extraction entirely; rows whose extraction fails
// proceed with absent text and end up Uncategorized. A classifier failure
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, table *model.Table, categories []string) (*Summary, error) {
	if len(categories) == 0 {
		return nil, eris.New("pipeline: empty category set")
	}

	if p.opts.NormalizeHeaders {
		table.NormalizeHeaders()
	}

	urlIdx := table.ColumnIndex(model.URLColumn)
	if urlIdx == -1 {
		return nil, ErrNoURLColumn
	}

	summary := &Summary{
		RunID: uuid.NewString(),
		Rows:  len(table.Rows),
	}
	log := zap.L().With(zap.String("run_id", summary.RunID))
	log.Info("pipeline: starting run",
		zap.Int("rows", summary.Rows),
		zap.Strings("categories", categories),
	)
	start := time.Now()

	labels := make([]string, len(table.Rows))
	for i := range table.Rows {
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "pipeline: cancelled")
		default:
		}

		rawURL := strings.TrimSpace(table.Cell(i, urlIdx))
		if rawURL == "" {
			labels[i] = model.Uncategorized
			summary.MissingURL++
			summary.Uncategorized++
			continue
		}

		text, err := p.extractor.Extract(ctx, rawURL)
		if err != nil {
			var statusErr *extract.StatusError
			switch {
			case errors.As(err, &statusErr):
				log.Warn("pipeline: skipping url",
					zap.Int("row", i+1),
					zap.String("url", rawURL),
					zap.Int("status", statusErr.StatusCode),
				)
				summary.HTTPFailures++
			case extract.IsCertError(err):
				log.Error("pipeline: certificate verification failed",
					zap.Int("row", i+1),
					zap.String("url", rawURL),
					zap.Error(err),
				)
				summary.TransportFailures++
			default:
				log.Error("pipeline: request failed",
					zap.Int("row", i+1),
					zap.String("url", rawURL),
					zap.Error(err),
				)
				summary.TransportFailures++
			}
			text = ""
		}

		label, err := p.classifier.Classify(ctx, text, categories)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: classify row %d", i+1)
		}

		labels[i] = label
		if label == model.Uncategorized {
			summary.Uncategorized++
		} else {
			summary.Classified++
		}
		log.Debug("pipeline: row classified",
			zap.Int("row", i+1),
			zap.String("url", rawURL),
			zap.String("category", label),
		)
	}

	table.SetColumn(model.CategoryColumn, labels)

	log.Info("pipeline: run complete",
		zap.Int("rows", summary.Rows),
		zap.Int("classified", summary.Classified),
		zap.Int("uncategorized", summary.Uncategorized),
		zap.Int("missing_url", summary.MissingURL),
		zap.Int("http_failures", summary.HTTPFailures),
		zap.Int("transport_failures", summary.TransportFailures),
		zap.Duration("elapsed", time.Since(start)),
	)

	return summary, nil
}
