package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"jobmate/dashboard-service/internal/api"
	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/grpcserver"
	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/provider"
	"jobmate/dashboard-service/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, gRPC health server and refresh cron",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Wiring ──────────────────────────────────────────────────────────────
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	if !a.cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	// ── gRPC health ─────────────────────────────────────────────────────────
	var reporter scheduler.StatusReporter
	if a.cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+a.cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		health := grpcserver.New(log)
		go func() {
			if err := health.Serve(lis); err != nil {
				log.Error("gRPC server error", logger.Error(err))
			}
		}()
		defer health.Stop()
		reporter = health
	}

	// ── Refresh cron ────────────────────────────────────────────────────────
	if a.cfg.RefreshIntervalHours > 0 {
		sched := scheduler.New(a.jobs, a.cfg.RefreshIntervalHours, reporter, log)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	} else if reporter != nil {
		go func() {
			_, err := a.jobs.Jobs(ctx)
			reporter.SetServing(err == nil)
		}()
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	router := api.NewRouter(api.Deps{
		Jobs:      provider.NewHandler(a.jobs, a.cfg.Sections, log),
		Favorites: favorites.NewHandler(a.favorites, a.jobs, log),
		Gatherer:  a.registry,
		Origins:   a.cfg.CORSOrigins,
		Version:   version,
		Log:       log,
	})
	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Dashboard service listening",
			logger.String("version", version),
			logger.String("port", a.cfg.Port),
			logger.String("mode", string(a.jobs.Mode())),
			logger.String("storage", a.cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", logger.Error(err))
	}
	log.Info("Stopped")
	return nil
}
