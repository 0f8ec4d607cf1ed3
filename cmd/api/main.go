package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maayanb/amuta-ledger/internal/api"
	"github.com/maayanb/amuta-ledger/internal/api/handlers"
	"github.com/maayanb/amuta-ledger/internal/config"
	"github.com/maayanb/amuta-ledger/internal/filestore"
	"github.com/maayanb/amuta-ledger/internal/googleauth"
	"github.com/maayanb/amuta-ledger/internal/logger"
	"github.com/maayanb/amuta-ledger/internal/service"
	"github.com/maayanb/amuta-ledger/internal/sheetstore"
	"github.com/maayanb/amuta-ledger/internal/sweep"
)

func main() {
	root := &cobra.Command{
		Use:   "amuta-ledger",
		Short: "Bookkeeping API backed by Google Sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	creds := googleauth.Credentials{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: cfg.PrivateKey,
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("service account credentials: %w", err)
	}

	client, err := creds.HTTPClient(ctx)
	if err != nil {
		return fmt.Errorf("google auth: %w", err)
	}

	store, err := sheetstore.New(ctx, client, cfg.SpreadsheetID, log)
	if err != nil {
		return fmt.Errorf("sheet store: %w", err)
	}
	if err := store.Ensure(ctx); err != nil {
		return fmt.Errorf("prepare spreadsheet: %w", err)
	}

	files, lister, err := buildFileStore(ctx, cfg, creds, client, log)
	if err != nil {
		return fmt.Errorf("file store: %w", err)
	}

	svc := service.NewTransactions(store, files, log)

	if cfg.SweepSchedule != "" {
		sweeper := sweep.New(store, lister, cfg.SweepGrace, log)
		cr, err := sweeper.Schedule(cfg.SweepSchedule)
		if err != nil {
			return fmt.Errorf("schedule orphan sweep: %w", err)
		}
		defer cr.Stop()
		log.Info().Str("schedule", cfg.SweepSchedule).Msg("Orphan file sweep scheduled")
	}

	handler := api.NewRouter(handlers.NewTransactionsHandler(svc, log), log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.FileBackend).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

// buildFileStore picks the attachment backend. Both backends satisfy the
// upload and sweep interfaces.
func buildFileStore(ctx context.Context, cfg *config.Config, creds googleauth.Credentials, client *http.Client, log zerolog.Logger) (service.FileStore, sweep.FileStore, error) {
	switch cfg.FileBackend {
	case config.BackendGCS:
		ts, err := creds.TokenSource(ctx)
		if err != nil {
			return nil, nil, err
		}
		gcs, err := filestore.NewGCS(ctx, ts, cfg.GCSBucket, cfg.GCSPrefix, log)
		if err != nil {
			return nil, nil, err
		}
		return gcs, gcs, nil
	default:
		drive, err := filestore.NewDrive(ctx, client, cfg.DriveFolderID, log)
		if err != nil {
			return nil, nil, err
		}
		return drive, drive, nil
	}
}
