package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/taskmanager/task-api/docs" // swagger docs
	"github.com/taskmanager/task-api/internal/api"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
	mongostore "github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskmanager/task-api/internal/infrastructure/db/redis"
	"github.com/taskmanager/task-api/internal/pkg/config"
	"github.com/taskmanager/task-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the repositories selected by STORE_DRIVER.
type stores struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	tasks  ports.TaskRepository
	checks map[string]handler.Pinger
	close  func(ctx context.Context) error
}

// @title Task Manager API
// @version 1.0
// @description Task tracking backend with JWT authentication and role-based access.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Level: "error"})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-api",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	resolver := service.NewRoleResolver(st.roles, st.users, cfg.Auth.BcryptCost, cfg.SeedData, logger.With("roles"))
	if err := resolver.EnsureSeeded(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles")
	}

	throttle, err := openThrottle(ctx, cfg, st)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
	}

	codec, err := service.NewTokenCodec(service.TokenConfig{
		Secret:    cfg.Auth.JWTSecret,
		Algorithm: cfg.Auth.JWTAlgorithm,
		TTL:       cfg.Auth.JWTExpiration,
		Issuer:    cfg.Auth.JWTIssuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token codec")
	}

	authService := service.NewAuthService(st.users, resolver, codec, throttle, cfg.Auth.BcryptCost, logger.With("auth"))
	taskService := service.NewTaskService(st.tasks, service.NewAuthorizer(), logger.With("tasks"))

	e := api.NewRouter(api.Dependencies{
		AuthService:       authService,
		TaskService:       taskService,
		TokenVerifier:     codec,
		Logger:            logger.With("http"),
		HealthChecks:      st.checks,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		MetricsGatherer:   prometheus.DefaultGatherer,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			users:  memory.NewUserRepository(),
			roles:  memory.NewRoleRepository(),
			tasks:  memory.NewTaskRepository(),
			checks: map[string]handler.Pinger{},
			close:  func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}
	store := mongostore.NewStore(client, db)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	return &stores{
		users:  store.Users,
		roles:  store.Roles,
		tasks:  store.Tasks,
		checks: map[string]handler.Pinger{"mongodb": store},
		close:  store.Close,
	}, nil
}

// openThrottle returns nil when Redis is disabled, which turns throttling off.
// The redis client is registered with the readiness checks.
func openThrottle(ctx context.Context, cfg *config.Config, st *stores) (ports.LoginThrottle, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	st.checks["redis"] = redisstore.NewPinger(client)
	closeStore := st.close
	st.close = func(ctx context.Context) error {
		return errors.Join(client.Close(), closeStore(ctx))
	}
	return redisstore.NewLoginThrottle(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow), nil
}
