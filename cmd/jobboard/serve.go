package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/jobboard/internal/catalog"
	"github.com/JonMunkholm/jobboard/internal/config"
	"github.com/JonMunkholm/jobboard/internal/loader"
	"github.com/JonMunkholm/jobboard/internal/logging"
	"github.com/JonMunkholm/jobboard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job board over HTTP",
	Long:  "Load the configured feed (JOBS_CSV_URL, or the bundled sample) and serve the board and JSON API until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := loader.New(loader.Options{
		URL:          cfg.Feed.URL,
		FetchTimeout: cfg.Feed.FetchTimeout,
		MaxBytes:     cfg.Feed.MaxBytes,
		Logger:       logger,
	})
	jobs := catalog.New(feed, logger)

	// A failed first load is not fatal: the board shows the failure state
	// with a retry, and the schedule keeps trying.
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
	if _, err := jobs.Reload(loadCtx); err != nil {
		logger.Warn("initial load failed, serving failure state", "error", err)
	}
	cancelLoad()

	sched, err := catalog.NewScheduler(jobs, cfg.Catalog.RefreshSchedule, cfg.Server.RequestTimeout, logger)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}

	server := web.NewServer(jobs, web.Options{
		PageSize:       cfg.Board.PageSize,
		ReadTimeout:    cfg.Server.ReadTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		ReloadDebounce: cfg.Catalog.ReloadDebounce,
		ReloadRate:     cfg.Board.ReloadRate,
		TrustedProxies: cfg.Security.TrustedProxies,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
