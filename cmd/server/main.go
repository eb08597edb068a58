package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/tasklists/internal/adapter/auth"
	"github.com/pscheid92/tasklists/internal/adapter/httpserver"
	"github.com/pscheid92/tasklists/internal/adapter/metrics"
	"github.com/pscheid92/tasklists/internal/adapter/postgres"
	"github.com/pscheid92/tasklists/internal/adapter/redis"
	"github.com/pscheid92/tasklists/internal/app"
	"github.com/pscheid92/tasklists/internal/platform/config"
	"github.com/pscheid92/tasklists/internal/platform/logging"
	"github.com/pscheid92/tasklists/internal/platform/version"
)

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config, m *metrics.Set, clock clockwork.Clock) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.NewMetricsTracer(m.DB, clock))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupRedis returns nil when REDIS_URL is unset; the service then runs
// without the denylist and the list cache.
func setupRedis(cfg *config.Config, m *metrics.Set) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, running without token denylist and list cache")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, m.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	v := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", v.Version, "commit", v.Commit)

	registry := metrics.NewRegistry()
	m := metrics.NewSet(registry)

	pool := setupDB(cfg, m, clock)
	defer pool.Close()

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}

	var opts []app.Option
	if redisClient := setupRedis(cfg, m); redisClient != nil {
		defer func() { _ = redisClient.Close() }()

		opts = append(opts,
			app.WithDenylist(redis.NewTokenDenylist(redisClient, clock)),
			app.WithListCache(redis.NewListCache(redisClient, cfg.ListCacheTTL, m.Cache)),
		)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	appSvc := app.NewService(
		postgres.NewUserRepo(pool),
		postgres.NewListRepo(pool),
		postgres.NewTaskRepo(pool),
		auth.NewBcryptHasher(auth.DefaultCost),
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL, clock),
		clock,
		opts...,
	)

	srv := httpserver.NewServer(cfg, appSvc, healthChecks,
		httpserver.WithMetrics(registry, m),
		httpserver.WithClock(clock),
	)

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
