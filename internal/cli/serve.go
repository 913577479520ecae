// ABOUTME: Serve command: watcher, transcription pipeline, and HTTP API
// ABOUTME: Runs everything until interrupted
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vox/internal/ingest"
	"github.com/harper/vox/internal/pipeline"
	"github.com/harper/vox/internal/search"
	"github.com/harper/vox/internal/server"
	"github.com/harper/vox/internal/transcribe"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vox server",
	Long:  `Start the directory watcher, transcription pipeline, and HTTP API. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if serveAddr != "" {
			cfg.ListenAddr = serveAddr
		}
		logger := newLogger()

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		backend := transcribe.NewFasterWhisperBackend()
		pipe := pipeline.New(database, cfg, backend, logger)
		go pipe.Run(ctx, 30*time.Second)

		importer := ingest.NewImporter(database, cfg, logger, pipe.Kick)
		if n, err := importer.Scan(ctx); err != nil {
			logger.Warn("initial scan failed", "error", err)
		} else if n > 0 {
			logger.Info("initial scan complete", "imported", n)
		}

		watcher, err := ingest.NewWatcher(importer, cfg.MonitoredDirectory, logger)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", "error", err)
			}
		}()

		var engine *search.Engine
		if cfg.FTSEnabled {
			idx := search.NewIndex(database)
			engine = search.NewEngine(idx, cfg.ItemsPerPage, cfg.MaxPerPage, cfg.ExcerptLength)
		}

		srv := server.New(database, cfg, configPath(), engine, pipe, logger)
		httpServer := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: srv.Handler(),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()

		color.Green("vox listening on http://%s", cfg.ListenAddr)
		fmt.Printf("Watching %s, storing in %s\n", cfg.MonitoredDirectory, cfg.StoragePath)

		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
