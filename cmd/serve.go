package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/classify-cli/internal/extract"
	"github.com/sells-group/classify-cli/internal/webui"
	"github.com/sells-group/classify-cli/pkg/huggingface"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI for spreadsheet classification",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "serve"))

		if cfg.HuggingFace.Key == "" {
			log.Warn("CLASSIFY_HUGGINGFACE_KEY not set, unauthenticated inference is heavily rate limited")
		}
		if cfg.Extract.InsecureSkipVerify {
			log.Warn("TLS certificate verification disabled for article fetches")
		}

		extractor := extract.New(extract.Options{
			Timeout:            time.Duration(cfg.Extract.TimeoutSecs) * time.Second,
			UserAgent:          cfg.Extract.UserAgent,
			MaxBodyBytes:       cfg.Extract.MaxBodyBytes,
			InsecureSkipVerify: cfg.Extract.InsecureSkipVerify,
		})
		hf := huggingface.NewClient(cfg.HuggingFace.Key,
			huggingface.WithBaseURL(cfg.HuggingFace.BaseURL),
			huggingface.WithTimeout(time.Duration(cfg.HuggingFace.TimeoutSecs)*time.Second),
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: webui.New(cfg, hf, extractor).Router(),
		}

		// Graceful shutdown: let in-flight classification runs finish
		// writing their workbooks.
		go func() {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
