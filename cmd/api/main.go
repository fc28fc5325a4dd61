// Package main is the entry point for the consultancy registry API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/consultoria-ambiental/registro/api"
	"github.com/consultoria-ambiental/registro/internal/config"
	"github.com/consultoria-ambiental/registro/internal/handler"
	"github.com/consultoria-ambiental/registro/internal/middleware"
	"github.com/consultoria-ambiental/registro/internal/repo"
	"github.com/consultoria-ambiental/registro/internal/scheduler"
	"github.com/consultoria-ambiental/registro/internal/service"
	"github.com/consultoria-ambiental/registro/internal/storage"
	"github.com/consultoria-ambiental/registro/migrations"
)

// formOverhead is the room left above the upload limit for multipart
// boundaries and form fields.
const formOverhead = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	// --- Storage ----------------------------------------------------------
	store, err := storage.NewFS(cfg.UploadDir)
	if err != nil {
		slog.Error("failed to open document store", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	clientRepo := repo.NewClientRepo(pool)
	propertyRepo := repo.NewPropertyRepo(pool)
	projectRepo := repo.NewProjectRepo(pool)
	expirationRepo := repo.NewExpirationRepo(pool)
	notificationRepo := repo.NewNotificationRepo(pool)
	today := service.TodayIn(cfg.Location)

	documents := service.NewDocumentService(repo.NewDocumentRepo(pool), clientRepo, projectRepo, store, cfg.MaxUploadSize)
	reminders := service.NewNotificationService(expirationRepo, notificationRepo, today)

	// --- Metrics and alert job ---------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	alerts, err := scheduler.NewAlertJob(cfg.AlertCron, cfg.Location, reminders, scheduler.NewMetrics(reg))
	if err != nil {
		slog.Error("invalid alert schedule", "error", err)
		os.Exit(1)
	}
	go alerts.Run(ctx)

	srv := handler.NewServer(handler.Deps{
		Clients:       service.NewClientService(clientRepo, documents),
		Properties:    service.NewPropertyService(propertyRepo, clientRepo),
		Projects:      service.NewProjectService(projectRepo, clientRepo, propertyRepo, documents),
		Invoices:      service.NewInvoiceService(repo.NewInvoiceRepo(pool), projectRepo),
		Documents:     documents,
		Expirations:   service.NewExpirationService(expirationRepo, notificationRepo, clientRepo, propertyRepo, today),
		Notifications: alerts,
		Dashboard:     service.NewDashboardService(repo.NewDashboardRepo(pool), today),
		DB:            pool,
		Today:         today,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → PeerAddr → RealIP → Logger
	// → Recoverer → Metrics → CORS → MaxBodySize. PeerAddr keeps the socket
	// address for the auth throttle before RealIP rewrites it.
	auth := middleware.NewBasicAuth(cfg.AdminUser, cfg.AdminPassword, cfg.LoginRatePerMinute)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMetrics(reg).Handler)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadSize + formOverhead))

	r.Mount("/", handler.NewRouter(srv, handler.RouterOptions{
		Auth:    auth.Handler,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		OpenAPI: api.OpenAPI,
	}))

	// --- HTTP Server ------------------------------------------------------
	// Write timeout leaves room for document downloads.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "alert_cron", cfg.AlertCron, "timezone", cfg.Location.String())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give in-flight requests up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies every pending migration embedded in the binary.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
