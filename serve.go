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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *Config, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsingDevSecret() {
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	db, err := openDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connection established")

	applied, err := applyMigrations(db)
	if err != nil {
		return err
	}
	log.Info("schema ready", zap.Bool("migrated", applied))

	srv := newServer(newPostgresStore(db), []byte(cfg.JWTSecret), log)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.routes(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
