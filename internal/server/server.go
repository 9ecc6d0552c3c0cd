package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"photo-inventory/internal/config"
	"photo-inventory/internal/database"
	custommiddleware "photo-inventory/internal/middleware"
	"photo-inventory/internal/repository"
	"photo-inventory/internal/service"
	"photo-inventory/internal/storage"
	"photo-inventory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the external resources the API runs on. Redis is optional
// and disables rate limiting when nil.
type Dependencies struct {
	DB    database.Service
	Store *storage.PhotoStore
	Redis *redis.Client
}

type Server struct {
	*http.Server
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		logger: logger,
		deps:   deps,
	}
}

// NewRouter wires repositories, services and handlers into a chi router
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack(cfg.Server.TrustProxyHeaders) {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.IsProduction()))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", healthHandler(deps.DB))

	// Initialize repositories
	db := deps.DB.DB()
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	photoRepo := repository.NewPhotoRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, cfg.AccessTokenTTL())
	productService := service.NewProductService(productRepo, cfg.Policy.ProductNameScope)
	photoService := service.NewPhotoService(photoRepo, deps.Store, cfg.Server.PublicBaseURL)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	photoHandler := transport.NewPhotoHandler(photoService, logger,
		cfg.Storage.MaxUploadMB<<20, cfg.Policy.PublicPhotoURLs)

	authMiddleware := custommiddleware.AuthMiddleware(userService, logger)

	var rateLimit func(http.Handler) http.Handler
	if deps.Redis != nil {
		rateLimit = custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.Redis.Requests,
			Window:            time.Duration(cfg.Redis.WindowSec) * time.Second,
			KeyPrefix:         "rate_limit:auth",
		}, logger)
	}

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, rateLimit)
	productHandler.RegisterRoutes(router, authMiddleware)
	photoHandler.RegisterRoutes(router, authMiddleware)

	return router
}

func healthHandler(db database.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		body := map[string]interface{}{"status": "ok", "database": health}
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
		custommiddleware.RespondWithJSON(w, status, body)
	}
}

// OpenRedis connects to Redis and verifies it answers
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
