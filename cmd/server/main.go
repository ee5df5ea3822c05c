package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bentswoodworking/bents-api/internal/api"
	"github.com/bentswoodworking/bents-api/internal/auth"
	"github.com/bentswoodworking/bents-api/internal/db"
	"github.com/bentswoodworking/bents-api/internal/llm"
	"github.com/bentswoodworking/bents-api/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to initialise: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	postgres, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("postgres: failed to connect", zap.Error(err))
	}
	defer postgres.Close()

	if err := postgres.Ping(ctx); err != nil {
		logger.Fatal("postgres: ping failed", zap.Error(err))
	}
	if err := postgres.EnsureSchema(ctx); err != nil {
		logger.Fatal("postgres: ensure schema", zap.Error(err))
	}

	sessionStore, closeSessions := openSessionStore(ctx, cfg, postgres, logger)
	defer closeSessions()

	authService, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, db.NewUsers(postgres))
	if err != nil {
		logger.Fatal("auth: failed to initialise", zap.Error(err))
	}

	handler := api.NewHandler(api.Dependencies{
		Auth:     authService,
		Catalog:  postgres,
		Sessions: sessionStore,
		Chat:     llm.NewClient(cfg.LLM.BackendURL, cfg.LLM.Timeout),
	}, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRequired:   cfg.Auth.Required,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}, logger)

	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.WithCORS(router, cfg.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("session_backend", cfg.SessionBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}

// openSessionStore picks the configured session backend and puts the Redis
// cache in front of it when REDIS_ADDR is set.
func openSessionStore(ctx context.Context, cfg *utils.Config, postgres *db.Postgres, logger *zap.Logger) (db.SessionStore, func()) {
	var (
		store   db.SessionStore
		closers []func()
	)

	switch cfg.SessionBackend {
	case utils.SessionBackendMongo:
		mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			logger.Fatal("mongo: failed to connect", zap.Error(err))
		}
		if err := mongoStore.EnsureCollections(ctx); err != nil {
			logger.Fatal("mongo: ensure collections", zap.Error(err))
		}
		closers = append(closers, func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				logger.Warn("mongo: close error", zap.Error(err))
			}
		})
		store = mongoStore
	case utils.SessionBackendMemory:
		store = db.NewMemorySessions()
	default:
		store = db.NewPostgresSessions(postgres)
	}

	if cfg.Redis.Addr != "" {
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis: session cache disabled", zap.Error(err))
		} else {
			closers = append(closers, func() { _ = client.Close() })
			store = db.NewCachedSessions(store, client, cfg.Redis.TTL, logger)
		}
	}

	return store, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
