// Package main is the entry point for the mailcanvas server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mailcanvas/internal/cache"
	"mailcanvas/internal/catalog"
	"mailcanvas/internal/config"
	"mailcanvas/internal/database"
	"mailcanvas/internal/editor"
	"mailcanvas/internal/engine"
	"mailcanvas/internal/facade"
	"mailcanvas/internal/handlers"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/middleware"
	"mailcanvas/internal/models"
	"mailcanvas/internal/mongostore"
	"mailcanvas/internal/render"
	"mailcanvas/internal/router"
	"mailcanvas/internal/session"
	"mailcanvas/internal/storage"
	"mailcanvas/internal/store"
	"mailcanvas/web"
)

// templateRepository is what the server needs from a template store. Both
// the PostgreSQL and MongoDB stores provide it.
type templateRepository interface {
	facade.TemplateRepository
	handlers.TemplateLibrary
}

func main() {
	// Structured logger: JSON in production, text in development.
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if os.Getenv("APP_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
		"strict_render", cfg.RenderStrict,
	)

	cat, err := catalog.Load()
	if err != nil {
		slog.Error("failed to load template catalog", "error", err)
		os.Exit(1)
	}
	gen := htmlgen.New(cfg.RenderStrict)

	var (
		templates templateRepository
		media     facade.MediaRepository
		checks    []router.HealthCheck
	)

	switch cfg.StoreBackend {
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := mongostore.Connect(ctx, mongostore.Config{
			URL:           cfg.MongoURL,
			RetryAttempts: 5,
			RetryInterval: 2 * time.Second,
		})
		cancel()
		if err != nil {
			slog.Error("failed to connect to mongo", "error", err)
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())

		templates = mongostore.NewTemplateStore(client.Database(cfg.MongoDB))
		checks = append(checks, router.HealthCheck{Name: "mongo", Check: mongostore.Healthcheck(client)})

	default:
		// Connect to PostgreSQL, then migrate and seed under the same deadline.
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		db, err := database.Connect(ctx, database.Config{
			DSN:           cfg.DSN(),
			RetryAttempts: 5,
			RetryInterval: 2 * time.Second,
		})
		if err != nil {
			cancel()
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		// Run pending migrations.
		if _, err := database.Migrate(ctx, db); err != nil {
			cancel()
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		// Seed development data (no-op if templates already exist).
		if cfg.IsDev() {
			if err := database.Seed(ctx, db, cat, gen); err != nil {
				cancel()
				slog.Error("failed to seed database", "error", err)
				os.Exit(1)
			}
		}

		cancel()

		templates = store.NewTemplateStore(db)
		media = store.NewMediaStore(db)
		checks = append(checks, router.HealthCheck{Name: "postgres", Check: db.PingContext})
	}

	// Connect to Valkey (snapshot mirror, document cache, editor cookies).
	vctx, vcancel := context.WithTimeout(context.Background(), 30*time.Second)
	valkeyClient, err := cache.ConnectValkey(vctx, cache.ValkeyConfig{
		Host:          cfg.ValkeyHost,
		Port:          cfg.ValkeyPort,
		Password:      cfg.ValkeyPassword,
		RetryAttempts: 5,
		RetryInterval: 2 * time.Second,
	})
	vcancel()
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	checks = append(checks, router.HealthCheck{Name: "valkey", Check: cache.Healthcheck(valkeyClient)})

	// In non-development environments, mark editor cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	snapshots := cache.NewSnapshotCache(valkeyClient, cfg.SnapshotTTL)

	// Download engine with the L2 document cache.
	eng := engine.New(templates, gen)
	eng.SetSharedCache(cache.NewDocumentCache(valkeyClient, cache.DefaultDocumentTTL))

	localOpts := []facade.LocalOption{
		facade.WithLayout(web.EmailLayout),
		facade.OnSave(func(t *models.Template) { eng.Invalidate(t.ID) }),
	}

	// Connect to S3-compatible object storage (optional; the editor works
	// without it, only hosted uploads are disabled).
	if cfg.S3Configured() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			localOpts = append(localOpts, facade.WithStorage(storageClient, media))
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		}
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}
	persistence := facade.NewLocal(templates, localOpts...)

	// Editing sessions, mirrored to Valkey so they survive restarts.
	manager := editor.NewManager(cat, editor.Options{
		Generator:   gen,
		Persistence: persistence,
	}, snapshots, cfg.SessionIdleTimeout)
	defer manager.Close()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go manager.Run(sweepCtx, time.Minute)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	middleware.RegisterMetrics(reg)
	editor.RegisterMetrics(reg)

	writeLimiter := middleware.NewRateLimiter(cfg.UploadRatePerMin, time.Minute)
	defer writeLimiter.Stop()

	// Create handler groups with their dependencies.
	editorHandlers := handlers.NewEditor(manager, sessionStore)
	r := router.New(router.Deps{
		API:          handlers.NewAPI(persistence, templates, eng),
		Editor:       editorHandlers,
		Pages:        handlers.NewPages(editorHandlers, renderer),
		WriteLimiter: writeLimiter,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthChecks: checks,
		CORSOrigins:  cfg.CORSOrigins,
	})

	// WriteTimeout must accommodate image uploads that are fitted and
	// pushed to the bucket before the response is written.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
