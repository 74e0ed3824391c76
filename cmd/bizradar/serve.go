package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bizradar/audit"
	"bizradar/automation"
	"bizradar/geocode"
	"bizradar/jobs"
	"bizradar/server"
	"bizradar/storage"
	"bizradar/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		allocCtx, cancelAlloc := utils.NewAllocator(context.Background(), cfg)
		defer cancelAlloc()

		artifacts, err := storage.NewDirArtifactStore(cfg.ScreenshotDir)
		if err != nil {
			return err
		}

		browser := automation.NewChromeBrowser(allocCtx)
		geocoder := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cfg.GeocoderEmail, log)
		auditor := audit.New(artifacts, cfg.AuditTimeout, cfg.VerifyEmailMX, log)

		orchestrator := jobs.NewOrchestrator(jobs.NewStore(), browser, geocoder, auditor, log, jobs.Options{
			DefaultMaxResults: cfg.DefaultMaxResults,
			MaxConcurrentJobs: cfg.MaxConcurrentJobs,
			NavTimeout:        cfg.NavTimeout,
			PanelTimeout:      cfg.PanelTimeout,
			GlobalTimeout:     cfg.GlobalTimeout,
		})

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           server.New(orchestrator, artifacts.Dir(), log).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", "addr", cfg.ListenAddr)
			errCh <- srv.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
		case sig := <-stop:
			log.Info("shutting down", "signal", sig.String())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
		}
		return nil
	},
}
