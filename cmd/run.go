package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/classify-cli/internal/classify"
	"github.com/sells-group/classify-cli/internal/extract"
	"github.com/sells-group/classify-cli/internal/model"
	"github.com/sells-group/classify-cli/internal/pipeline"
	"github.com/sells-group/classify-cli/internal/tabular"
	"github.com/sells-group/classify-cli/pkg/huggingface"
)

var (
	runInput          string
	runOutput         string
	runCategories     string
	runCategoriesFile string
	runModel          string
	runLimit          int
	runDryRun         bool
	runNormalize      bool
	runInsecure       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify a spreadsheet of article URLs",
	Long: `Reads the input spreadsheet, fetches every URL, classifies the article
text into the given categories, and writes the table back out with a
Category column.

Examples:
  # Default categories and model
  classify-cli run --input urls.csv

  # DeBERTa with custom categories, first 10 rows only
  classify-cli run --input urls.xlsx --model deberta --categories "AI, Cloud, Security" --limit 10

  # Parse and report without fetching or classifying
  classify-cli run --input urls.csv --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		// Check the output extension up front, before any fetch or model
		// call is spent on a run that cannot be written out.
		if _, err := tabular.DetectFormat(runOutput); err != nil {
			return eris.Wrap(err, "run: output path")
		}

		log := zap.L().With(zap.String("command", "run"))

		table, err := tabular.ReadFile(runInput)
		if err != nil {
			return eris.Wrap(err, "run: read input")
		}
		log.Info("parsed input",
			zap.String("path", runInput),
			zap.Int("rows", len(table.Rows)),
			zap.Int("columns", len(table.Headers)),
		)

		// Apply limit.
		if runLimit > 0 && runLimit < len(table.Rows) {
			table.Rows = table.Rows[:runLimit]
		}

		categories, err := resolveCategories()
		if err != nil {
			return err
		}

		modelID, err := cfg.HuggingFace.ResolveModel(runModel)
		if err != nil {
			return err
		}

		normalize := cfg.Pipeline.NormalizeHeaders
		if cmd.Flags().Changed("normalize-headers") {
			normalize = runNormalize
		}

		// Dry run: report what would be processed and exit.
		if runDryRun {
			return printDryRun(table, normalize, categories, modelID)
		}

		if cfg.HuggingFace.Key == "" {
			log.Warn("CLASSIFY_HUGGINGFACE_KEY not set, unauthenticated inference is heavily rate limited")
		}

		insecure := cfg.Extract.InsecureSkipVerify
		if cmd.Flags().Changed("insecure-skip-verify") {
			insecure = runInsecure
		}
		if insecure {
			log.Warn("TLS certificate verification disabled for article fetches")
		}

		extractor := extract.New(extract.Options{
			Timeout:            time.Duration(cfg.Extract.TimeoutSecs) * time.Second,
			UserAgent:          cfg.Extract.UserAgent,
			MaxBodyBytes:       cfg.Extract.MaxBodyBytes,
			InsecureSkipVerify: insecure,
		})
		hf := huggingface.NewClient(cfg.HuggingFace.Key,
			huggingface.WithBaseURL(cfg.HuggingFace.BaseURL),
			huggingface.WithTimeout(time.Duration(cfg.HuggingFace.TimeoutSecs)*time.Second),
		)

		p := pipeline.New(extractor, classify.New(hf, modelID), pipeline.Options{
			NormalizeHeaders: normalize,
		})

		summary, err := p.Run(ctx, table, categories)
		if err != nil {
			return eris.Wrap(err, "run: classify")
		}

		if err := tabular.WriteFile(runOutput, table); err != nil {
			return eris.Wrap(err, "run: write output")
		}

		log.Info("output written",
			zap.String("path", runOutput),
			zap.String("run_id", summary.RunID),
			zap.Int("rows", summary.Rows),
			zap.Int("classified", summary.Classified),
			zap.Int("uncategorized", summary.Uncategorized),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "path to input CSV or XLSX file (required)")
	runCmd.Flags().StringVar(&runOutput, "output", "classified_urls.xlsx", "output path, format chosen by extension")
	runCmd.Flags().StringVar(&runCategories, "categories", model.DefaultCategories, "comma-separated category names")
	runCmd.Flags().StringVar(&runCategoriesFile, "categories-file", "", "YAML file with a list of category names (overrides --categories)")
	runCmd.Flags().StringVar(&runModel, "model", "bart", "model alias (bart, deberta) or full hub model ID")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max rows to process (0 = all)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "parse input and report, skip fetching and classification")
	runCmd.Flags().BoolVar(&runNormalize, "normalize-headers", true, "trim and uppercase column headers before matching")
	runCmd.Flags().BoolVar(&runInsecure, "insecure-skip-verify", false, "disable TLS certificate verification for article fetches")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

// resolveCategories returns the category set from --categories-file if
// given, otherwise from --categories.
func resolveCategories() ([]string, error) {
	if runCategoriesFile != "" {
		return loadCategoriesFile(runCategoriesFile)
	}
	categories := model.ParseCategories(runCategories)
	if len(categories) == 0 {
		return nil, eris.New("run: --categories must be a non-empty comma-separated list")
	}
	return categories, nil
}

// loadCategoriesFile reads a YAML list of category names.
func loadCategoriesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "run: read categories file %s", path)
	}

	var raw []string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "run: parse categories file %s", path)
	}

	var categories []string
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return nil, eris.Errorf("run: categories file %s has no categories", path)
	}
	return categories, nil
}

// printDryRun reports what a run would process as indented JSON.
func printDryRun(table *model.Table, normalize bool, categories []string, modelID string) error {
	if normalize {
		table.NormalizeHeaders()
	}
	idx := table.ColumnIndex(model.URLColumn)
	if idx == -1 {
		return pipeline.ErrNoURLColumn
	}

	withURL := 0
	for i := range table.Rows {
		if strings.TrimSpace(table.Cell(i, idx)) != "" {
			withURL++
		}
	}

	report := struct {
		Headers     []string `json:"headers"`
		Rows        int      `json:"rows"`
		RowsWithURL int      `json:"rows_with_url"`
		Categories  []string `json:"categories"`
		Model       string   `json:"model"`
	}{
		Headers:     table.Headers,
		Rows:        len(table.Rows),
		RowsWithURL: withURL,
		Categories:  categories,
		Model:       modelID,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
