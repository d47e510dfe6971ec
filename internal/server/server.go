package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"homekeeper/internal/config"
	"homekeeper/internal/csvcodec"
	custommiddleware "homekeeper/internal/middleware"
	"homekeeper/internal/notify"
	"homekeeper/internal/service"
	"homekeeper/internal/transport"
)

// Dependencies are built by main from the configured backends.
// Redis and DB are nil when the configuration does not use them.
type Dependencies struct {
	Assets    service.AssetStore
	Tasks     service.TaskStore
	Scheduler notify.Scheduler
	Redis     *redis.Client
	DB        *sql.DB
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

// HealthResponse reports the storage backend and record counts
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Assets  int    `json:"assets"`
	Tasks   int    `json:"tasks"`
	Error   string `json:"error,omitempty"`
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	s := &Server{config: cfg, logger: logger, deps: deps}

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.Origins, cfg.Server.Env == "development"))

	router.Get("/health", s.health)

	assetHandler := transport.NewAssetHandler(deps.Assets, defaultDateFormat(cfg, logger), logger)
	taskHandler := transport.NewTaskHandler(deps.Tasks, logger)
	catalogHandler := transport.NewCatalogHandler(deps.Scheduler, logger)

	router.Route("/api", func(r chi.Router) {
		if cfg.JWT.Secret != "" {
			r.Use(custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger))
			r.Use(custommiddleware.WriteMethods(logger))
		} else {
			logger.Warn("JWT_SECRET not set, API is unauthenticated")
		}

		if deps.Redis != nil {
			r.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "homekeeper:ratelimit",
			}, logger))
		}

		assetHandler.RegisterRoutes(r)
		taskHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
	})

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Storage: s.config.Storage.Backend,
		Assets:  len(s.deps.Assets.All()),
		Tasks:   len(s.deps.Tasks.All()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Error = err.Error()
		custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	custommiddleware.RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) ping(ctx context.Context) error {
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

func defaultDateFormat(cfg *config.Config, logger *zap.Logger) csvcodec.DateFormat {
	format, ok := csvcodec.ParseDateFormat(cfg.CSV.DateFormat)
	if !ok {
		logger.Warn("Unknown CSV_DATE_FORMAT, using ISO dates", zap.String("value", cfg.CSV.DateFormat))
	}
	return format
}
