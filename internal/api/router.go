package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/distiller/internal/api/handlers"
	mw "github.com/Harshitk-cp/distiller/internal/api/middleware"
	"github.com/Harshitk-cp/distiller/internal/buildconfig"
	"github.com/Harshitk-cp/distiller/internal/config"
	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/embedding"
	"github.com/Harshitk-cp/distiller/internal/llm"
	"github.com/Harshitk-cp/distiller/internal/service"
	"github.com/Harshitk-cp/distiller/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries everything the router needs besides the service.
type Options struct {
	DB             Pinger
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and request metrics.
type App struct {
	Router    *chi.Mux
	Synthesis *service.SynthesisService
	metrics   *mw.MetricsCollector
	startTime time.Time
}

// NewApp wires stores, gateways and the synthesis service from config.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	signalStore := store.NewSignalStore(db)
	runStore := store.NewRunStore(db)

	embeddingProvider := config.EmbeddingProvider()
	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))

	synthCfg, err := config.Synthesis()
	if err != nil {
		return nil, fmt.Errorf("synthesis config: %w", err)
	}

	svc := service.NewSynthesisService(signalStore, runStore, embeddingClient, synthCfg, logger)

	llmProvider := config.LLMProvider()
	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	switch {
	case err != nil:
		logger.Warn("LLM client initialization failed, labeling disabled", zap.String("provider", llmProvider), zap.Error(err))
	case llmClient == nil:
		logger.Info("LLM labeling disabled")
	default:
		svc.SetLabeler(service.NewLabeler(llmClient, logger))
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	return NewAppWithService(svc, Options{
		DB:             db,
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}, logger), nil
}

// NewAppWithService builds the HTTP surface around an existing service.
func NewAppWithService(svc *service.SynthesisService, opts Options, logger *zap.Logger) *App {
	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Synthesis: svc,
		metrics:   mw.NewMetricsCollector(),
		startTime: time.Now(),
	}

	signalHandler := handlers.NewSignalHandler(svc)
	runHandler := handlers.NewRunHandler(svc)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if opts.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))
	}

	r.Get("/health", healthHandler(opts.DB))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Route("/signals", func(r chi.Router) {
			r.Post("/", signalHandler.Create)
			r.Get("/", signalHandler.List)
			r.Post("/ingest", signalHandler.Ingest)
		})

		r.Post("/synthesize", runHandler.Synthesize)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", runHandler.GetByID)
				r.Get("/axioms/{axiomID}/provenance", runHandler.Provenance)
			})
		})
	})

	return app
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok", "build": buildconfig.VersionInfo()}
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				resp["status"] = "error"
				resp["error"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		snap := app.metrics.Snapshot()

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds":  uptime.Seconds(),
			"uptime_human":    uptime.Round(time.Second).String(),
			"request_count":   snap.Requests,
			"error_count":     snap.Errors,
			"in_flight":       snap.InFlight,
			"avg_duration_ms": snap.AvgDurationMS,
			"goroutines":      runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"version":    buildconfig.Version(),
		})
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.SignalStore     = (*store.SignalStore)(nil)
	_ domain.RunStore        = (*store.RunStore)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.GeminiClient)(nil)
	_ domain.LLMClient       = (*llm.CerebrasClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
	_ Pinger                 = (*pgxpool.Pool)(nil)
)
