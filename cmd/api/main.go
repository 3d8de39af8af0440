package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/openstudio/register-gateway/api/controllers"
	"github.com/openstudio/register-gateway/api/routes"
	"github.com/openstudio/register-gateway/internal/checkin"
	"github.com/openstudio/register-gateway/internal/lookup"
	"github.com/openstudio/register-gateway/internal/register"
	"github.com/openstudio/register-gateway/internal/upstream"
	"github.com/openstudio/register-gateway/pkg/config"
	"github.com/openstudio/register-gateway/pkg/logger"
	"github.com/openstudio/register-gateway/pkg/metrics"
	"github.com/openstudio/register-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "register-gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "register-gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registerMetrics := metrics.NewRegisterMetrics(registry)

	upstreamClient, err := upstream.NewClient(cfg.Upstream, logg, registerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"upstream": upstreamClient,
	}

	var store register.DraftStore
	if cfg.Session.UsesRedis() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readiness["redis"] = redisClient

		store, err = register.NewRedisStore(redisClient, cfg.Session.TTL)
		if err != nil {
			logg.Error(context.Background(), "failed to build session store", err)
			os.Exit(1)
		}
	} else {
		store = register.NewMemoryStore(cfg.Session.TTL)
	}

	registerService, err := register.NewService(store, upstreamClient, cfg.Register, logg, registerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	lookupService, err := lookup.NewService(upstreamClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create lookup service", err)
		os.Exit(1)
	}

	checkinService, err := checkin.NewService(upstreamClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"session_backend": cfg.Session.Backend,
	})
	logg.Info(ctx, "starting register gateway")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, readiness, registerService, lookupService, checkinService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "register gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}
