// Command barberiq runs the reference backend: the tenant directory and the
// tenant-scoped record API that barberiq sessions consume.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	handler "github.com/neomorfeo/barberiq/internal/adapter/http"
	"github.com/neomorfeo/barberiq/internal/adapter/otel"
	"github.com/neomorfeo/barberiq/internal/adapter/river"
	"github.com/neomorfeo/barberiq/internal/adapter/sqlite"
	"github.com/neomorfeo/barberiq/internal/backend"
	"github.com/neomorfeo/barberiq/internal/config"
	"github.com/neomorfeo/barberiq/internal/logger"
)

const (
	serviceName    = "barberiq"
	serviceVersion = "0.1.0"
	shutdownGrace  = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "barberiq: %v\n", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging, os.Stderr)
	slog.SetDefault(log)

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	tenantRepo, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	recordRepo := sqlite.NewRecordRepository(db)

	metrics, err := otel.NewChangeMetrics(nil)
	if err != nil {
		return err
	}
	worker := river.NewChangeWorker(log, func(ctx context.Context, args river.ChangeJobArgs) error {
		metrics.Record(ctx, args.Change)
		return nil
	})
	queue, err := river.Setup(ctx, db, worker)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := queue.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			log.Error("river stop", "error", err)
		}
	}()

	// --- Application ---
	publisher := otel.NewTracingPublisher(river.NewPublisher(queue))
	tenants := otel.NewTracingRepository(tenantRepo)
	records := otel.NewTracingRecordRepository(recordRepo)

	tenantSvc := backend.NewTenantService(tenants, publisher)
	recordSvc := backend.NewRecordService(tenants, records, publisher)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(tenantSvc, recordSvc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("barberiq listening", "addr", srv.Addr, "docs", "http://localhost:"+cfg.Server.Port+"/docs")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("stopped")
	return nil
}

// newRouter mounts the huma API on a traced chi router.
func newRouter(tenants *backend.TenantService, records *backend.RecordService) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig(serviceName, serviceVersion))
	handler.Register(api, tenants, records)
	return router
}
