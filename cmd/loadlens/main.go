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

	"github.com/haulware/loadlens/internal/config"
	logpkg "github.com/haulware/loadlens/internal/logger"
	"github.com/haulware/loadlens/internal/metrics"
	"github.com/haulware/loadlens/internal/repository/chunkstore"
	chiTransport "github.com/haulware/loadlens/internal/transport/chi"
	openaiLLM "github.com/haulware/loadlens/internal/transport/openai"
	answeruc "github.com/haulware/loadlens/internal/usecase/answer"
	extractionuc "github.com/haulware/loadlens/internal/usecase/extraction"
	healthuc "github.com/haulware/loadlens/internal/usecase/health"
	ingestuc "github.com/haulware/loadlens/internal/usecase/ingest"
	"github.com/haulware/loadlens/internal/version"
)

func main() {
	// Local development keeps provider keys in a .env file.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting loadlens API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_path", cfg.Storage.IndexPath),
	)

	// Register LLM metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	embProvider := cfg.LLM.Providers[cfg.LLM.Embedder.Provider]
	embedder := openaiLLM.NewEmbedder(&openaiLLM.EmbedderConfig{
		APIKey:     embProvider.APIKey,
		BaseURL:    embProvider.BaseURL,
		Model:      cfg.LLM.Embedder.Model,
		Dimensions: cfg.LLM.Embedder.Dimensions,
		Provider:   cfg.LLM.Embedder.Provider,
		Logger:     logger,
	})

	genProvider := cfg.LLM.Providers[cfg.LLM.Generator.Provider]
	generator := openaiLLM.NewGenerator(&openaiLLM.GeneratorConfig{
		APIKey:         genProvider.APIKey,
		BaseURL:        genProvider.BaseURL,
		Model:          cfg.LLM.Generator.Model,
		Temperature:    cfg.LLM.Generator.Temperature,
		Timeout:        time.Duration(cfg.LLM.Generator.TimeoutSec) * time.Second,
		RetryTransient: *cfg.LLM.Generator.RetryTransient,
		Provider:       cfg.LLM.Generator.Provider,
		Logger:         logger,
	})
	logger.Info("LLM adapters created",
		zap.String("embedder_provider", cfg.LLM.Embedder.Provider),
		zap.String("embedder_model", cfg.LLM.Embedder.Model),
		zap.String("generator_provider", cfg.LLM.Generator.Provider),
		zap.String("generator_model", cfg.LLM.Generator.Model),
	)

	store := chunkstore.New(cfg.Storage.IndexPath, cfg.LLM.Embedder.Model, embedder, logger)

	// Create use case services
	answerSvc := answeruc.New(store, generator, cfg.Retrieval.TopK, cfg.Retrieval.SimilarityThreshold)
	extractionSvc := extractionuc.New(store, generator)
	ingestSvc := ingestuc.New(store, cfg.Ingest.ChunkWords, cfg.Ingest.ChunkOverlapWords)
	healthSvc := healthuc.New(store, generator)

	// Create chi server
	server := chiTransport.NewServer(
		answerSvc, extractionSvc, ingestSvc, healthSvc,
		cfg.Ingest.MaxUploadBytes, logger,
	)

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
						"code":    "internal_error",
						"message": "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
