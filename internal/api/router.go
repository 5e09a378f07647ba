package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/intentlab/intentd/internal/api/handlers"
	mw "github.com/intentlab/intentd/internal/api/middleware"
	"github.com/intentlab/intentd/internal/config"
	"github.com/intentlab/intentd/internal/domain"
	"github.com/intentlab/intentd/internal/extract"
	"github.com/intentlab/intentd/internal/service"
	"github.com/intentlab/intentd/internal/store"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router  *chi.Mux
	Sweeper *service.SweeperService
	Queue   *service.ExecutionQueue

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	intentStore := store.NewIntentStore(db)
	relationStore := store.NewRelationStore(db)
	personStore := store.NewPersonStore(db)
	trajectoryStore := store.NewTrajectoryStore(db)
	baselineStore := store.NewBaselineStore(db)
	paramsStore := store.NewParamsStore(db)
	accessStore := store.NewAccessLogStore(db)

	// Extraction collaborator via provider factory
	extractorProvider := config.ExtractorProvider()
	extractor, err := extract.NewClient(extractorProvider, config.ExtractorAPIKey())
	if err != nil {
		logger.Warn("extraction client initialization failed, falling back to mock",
			zap.String("provider", extractorProvider), zap.Error(err))
		extractor = extract.NewMockClient()
	} else {
		logger.Info("extraction client initialized", zap.String("provider", extractorProvider))
	}

	// Services. The queue is owned here and injected; the stage machine and
	// propagator reference each other and are wired via setter.
	queue := service.NewExecutionQueue(paramsStore, relationStore, personStore, trajectoryStore, accessStore, logger)
	stageSvc := service.NewStageService(intentStore, paramsStore, queue, logger)
	propSvc := service.NewPropagationService(intentStore, relationStore, paramsStore, stageSvc, logger)
	stageSvc.SetPropagator(propSvc)
	anomalySvc := service.NewAnomalyService(baselineStore, paramsStore, logger)
	learnerSvc := service.NewLearnerService(paramsStore, logger)
	ingestSvc := service.NewIngestService(anomalySvc, stageSvc, extractor, personStore, relationStore, accessStore, logger)
	sweeperSvc := service.NewSweeperService(intentStore, propSvc, logger)
	sweeperSvc.SetInterval(time.Duration(config.SweepIntervalMinutes()) * time.Minute)

	// Handlers
	intentHandler := handlers.NewIntentHandler(stageSvc, propSvc)
	ingestHandler := handlers.NewIngestHandler(ingestSvc)
	executionHandler := handlers.NewExecutionHandler(queue, learnerSvc)
	paramsHandler := handlers.NewParamsHandler(learnerSvc)
	trajectoryHandler := handlers.NewTrajectoryHandler(trajectoryStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Sweeper:   sweeperSvc,
		Queue:     queue,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ingest", ingestHandler.Ingest)

		r.Route("/intents", func(r chi.Router) {
			r.Post("/", intentHandler.Create)
			r.Get("/", intentHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", intentHandler.GetByID)
				r.Post("/transition", intentHandler.Transition)
				r.Post("/evidence", intentHandler.AddEvidence)
				r.Post("/evaluate", intentHandler.Evaluate)
			})
		})

		r.Route("/execution", func(r chi.Router) {
			r.Get("/queue", executionHandler.GetQueue)
			r.Post("/{taskID}/feedback", executionHandler.Feedback)
		})

		r.Route("/trajectories", func(r chi.Router) {
			r.Post("/", trajectoryHandler.Create)
			r.Get("/", trajectoryHandler.List)
		})

		r.Get("/parameters", paramsHandler.Get)
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"staged_count":   len(app.Queue.List()),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.IntentStore     = (*store.IntentStore)(nil)
	_ domain.RelationStore   = (*store.RelationStore)(nil)
	_ domain.PersonStore     = (*store.PersonStore)(nil)
	_ domain.TrajectoryStore = (*store.TrajectoryStore)(nil)
	_ domain.BaselineStore   = (*store.BaselineStore)(nil)
	_ domain.ParamsStore     = (*store.ParamsStore)(nil)
	_ domain.AccessLogStore  = (*store.AccessLogStore)(nil)
	_ domain.ExtractorClient = (*extract.OpenAIClient)(nil)
	_ domain.ExtractorClient = (*extract.AnthropicClient)(nil)
	_ domain.ExtractorClient = (*extract.MockClient)(nil)
)
