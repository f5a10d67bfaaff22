package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/knowsprint/knowsprint/internal/collector"
	"github.com/knowsprint/knowsprint/internal/config"
	dbRedis "github.com/knowsprint/knowsprint/internal/db/redis"
	logpkg "github.com/knowsprint/knowsprint/internal/logger"
	"github.com/knowsprint/knowsprint/internal/metrics"
	documentrepo "github.com/knowsprint/knowsprint/internal/repository/document"
	"github.com/knowsprint/knowsprint/internal/tracker"
	chiTransport "github.com/knowsprint/knowsprint/internal/transport/chi"
	openaiTransport "github.com/knowsprint/knowsprint/internal/transport/openai"
	chatuc "github.com/knowsprint/knowsprint/internal/usecase/chat"
	healthuc "github.com/knowsprint/knowsprint/internal/usecase/health"
	ingestuc "github.com/knowsprint/knowsprint/internal/usecase/ingest"
	searchuc "github.com/knowsprint/knowsprint/internal/usecase/search"
	trainuc "github.com/knowsprint/knowsprint/internal/usecase/train"
	"github.com/knowsprint/knowsprint/internal/version"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting knowsprint API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Register flow and embedding metrics explicitly (no init())
	metrics.RegisterFlowMetrics()
	metrics.RegisterEmbeddingMetrics()

	ctx := context.Background()

	// Vector store is optional: without addrs the server still starts and
	// store-backed flows fail per-request with a clear message.
	var store *dbRedis.Store
	repo := documentrepo.Unconfigured()
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Warn("Database not ready, continuing degraded", zap.Error(err))
		} else {
			logger.Info("Connected to database")
		}

		repo = documentrepo.New(store, cfg.Embedding.Dimensions, cfg.Storage.KeyPrefix)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Warn("Schema creation deferred", zap.Error(err))
		}
	} else {
		logger.Warn("No database addrs configured, store-backed flows will fail per-request")
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Logger:  logger,
	})
	if !generator.Configured() {
		logger.Warn("Generation backend not configured, chat will reply with a placeholder")
	}

	track := tracker.New(&tracker.Config{
		BaseURL:   cfg.Tracker.BaseURL,
		APIKey:    cfg.Tracker.APIKey,
		Workspace: cfg.Tracker.Workspace,
		Project:   cfg.Tracker.Project,
		Logger:    logger,
	})
	events := collector.New(&collector.Config{
		URL:    cfg.Collector.URL,
		APIKey: cfg.Collector.APIKey,
		Logger: logger,
	})

	ingestSvc := ingestuc.New(embedder, repo, track, events)
	searchSvc := searchuc.New(embedder, repo, track, events)
	chatSvc := chatuc.New(embedder, repo, generator, track, events)
	trainSvc := trainuc.New(embedder, track, events, logger)

	// Pass nil interface (not typed nil pointer!) when the store is absent.
	var pinger healthuc.Pinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, embedder)

	server := chiTransport.NewServer(ingestSvc, searchSvc, chatSvc, trainSvc, healthSvc)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"detail": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
