package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/stockwatch-jp/supplier-watcher/internal/api"
	"github.com/stockwatch-jp/supplier-watcher/internal/browser"
	"github.com/stockwatch-jp/supplier-watcher/internal/config"
	"github.com/stockwatch-jp/supplier-watcher/internal/crawler"
	"github.com/stockwatch-jp/supplier-watcher/internal/database"
	"github.com/stockwatch-jp/supplier-watcher/internal/extract"
	"github.com/stockwatch-jp/supplier-watcher/internal/fetcher"
	"github.com/stockwatch-jp/supplier-watcher/internal/notify"
	"github.com/stockwatch-jp/supplier-watcher/internal/plugins"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.Database.DSN(), database.PoolConfig{
		MaxConns: 10,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	engine := extract.NewDefaultEngine(logger)

	// The browser is best-effort: without it the mercari plugin registers
	// but never produces a result, and static extraction carries on.
	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Warn("browser unavailable, static extraction only", "error", err)
		b = nil
	} else {
		defer b.Close()
	}
	engine.Plugins().Register(plugins.NewMercariPlugin(b, cfg.Browser.Timeout, logger))

	store := database.NewWatchStore(db)
	publisher := database.NewEventPublisher(redisClient, cfg.Redis.Stream, logger)
	fetch := fetcher.New(cfg.Fetcher, redisClient, logger)
	slack := notify.NewSlack(cfg.Notify.SlackWebhookURL, logger)

	cr := crawler.New(store, fetch, engine, publisher, slack, *cfg, logger)
	go func() {
		if err := cr.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("crawler stopped with error", "error", err)
		}
	}()

	handlers := api.NewHandlers(engine, store, cr, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		health := map[string]interface{}{"status": "ok"}
		if err := redisClient.Ping(req.Context()).Err(); err != nil {
			health["status"] = "degraded"
			health["redis"] = err.Error()
		}
		json.NewEncoder(w).Encode(health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/extract", handlers.Extract)

		r.Route("/watches", func(r chi.Router) {
			r.Post("/", handlers.AddWatch)
			r.Get("/", handlers.ListWatches)
			r.Get("/{sku}", handlers.GetWatch)
			r.Delete("/{sku}", handlers.RemoveWatch)
			r.Post("/{sku}/check", handlers.CheckWatch)
		})

		r.Get("/stats", handlers.GetStats)
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
