// Package webui serves the single-page classification form: upload a
// spreadsheet of URLs, pick a model and categories, download the
// annotated workbook.
package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/classify-cli/internal/classify"
	"github.com/sells-group/classify-cli/internal/config"
	"github.com/sells-group/classify-cli/internal/extract"
	"github.com/sells-group/classify-cli/internal/model"
	"github.com/sells-group/classify-cli/internal/pipeline"
	"github.com/sells-group/classify-cli/internal/tabular"
	"github.com/sells-group/classify-cli/pkg/huggingface"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>URL Article Classifier</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; padding: 0 1rem; }
label { display: block; margin: 1rem 0; }
input[type=text], select { width: 100%; padding: 0.3rem; }
button { padding: 0.5rem 1.5rem; }
</style>
</head>
<body>
<h1>URL Article Classifier</h1>
<p>Upload a CSV or XLSX file with a URL column. Each article is fetched
and classified into one of your categories; the result downloads as a
workbook with a Category column.</p>
<form method="post" action="/classify" enctype="multipart/form-data">
<label>Spreadsheet
<input type="file" name="file" accept=".csv,.xlsx" required>
</label>
<label>Model
<select name="model">
{{range .Models}}<option value="{{.Alias}}">{{.Label}}</option>
{{end}}</select>
</label>
<label>Categories (comma separated)
<input type="text" name="categories" value="{{.Categories}}">
</label>
<button type="submit">Classify</button>
</form>
</body>
</html>
`

type formData struct {
	Categories string
	Models     []modelChoice
}

type modelChoice struct {
	Alias string
	Label string
}

// Server holds the shared dependencies for the web UI. The classifier is
// constructed per request from the submitted model choice; the extractor
// and inference client are shared across runs.
type Server struct {
	cfg       *config.Config
	hf        huggingface.Client
	extractor *extract.Extractor
	runs      *semaphore.Weighted
	tmpl      *template.Template
}

// New builds a Server. Concurrent classification runs are bounded by
// cfg.Server.MaxConcurrentRuns; excess requests wait.
func New(cfg *config.Config, hf huggingface.Client, extractor *extract.Extractor) *Server {
	return &Server{
		cfg:       cfg,
		hf:        hf,
		extractor: extractor,
		runs:      semaphore.NewWeighted(cfg.Server.MaxConcurrentRuns),
		tmpl:      template.Must(template.New("index").Parse(indexHTML)),
	}
}

// Router returns the HTTP handler for the form, the classification
// endpoint, and the health check.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", s.handleIndex)
	r.Post("/classify", s.handleClassify)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data := formData{
		Categories: s.cfg.Server.DefaultCategories,
		Models: []modelChoice{
			{Alias: "bart", Label: fmt.Sprintf("BART (%s)", s.cfg.HuggingFace.BartModel)},
			{Alias: "deberta", Label: fmt.Sprintf("DeBERTa (%s)", s.cfg.HuggingFace.DebertaModel)},
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		zap.L().Error("webui: render form", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.runs.Acquire(ctx, 1); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer s.runs.Release(1)

	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "malformed multipart request")
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	format, err := tabular.DetectFormat(hdr.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := tabular.Read(file, hdr.Size, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	catText := r.FormValue("categories")
	if strings.TrimSpace(catText) == "" {
		catText = s.cfg.Server.DefaultCategories
	}
	categories := model.ParseCategories(catText)
	if len(categories) == 0 {
		writeError(w, http.StatusBadRequest, "categories must be a non-empty comma-separated list")
		return
	}

	alias := r.FormValue("model")
	if alias == "" {
		alias = "bart"
	}
	modelID, err := s.cfg.HuggingFace.ResolveModel(alias)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run := pipeline.New(s.extractor, classify.New(s.hf, modelID), pipeline.Options{
		NormalizeHeaders: s.cfg.Pipeline.NormalizeHeaders,
	})

	summary, err := run.Run(ctx, table, categories)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoURLColumn) {
			writeError(w, http.StatusBadRequest, "input has no URL column")
			return
		}
		zap.L().Error("webui: classification run failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "classification failed")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="classified_urls.xlsx"`)
	w.Header().Set("X-Run-ID", summary.RunID)
	if err := tabular.Write(w, table, tabular.FormatXLSX); err != nil {
		zap.L().Error("webui: write workbook", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
