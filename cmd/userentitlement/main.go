package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/accessentitlement/platform/internal/broker"
	"github.com/accessentitlement/platform/internal/config"
	"github.com/accessentitlement/platform/internal/entitlement"
	"github.com/accessentitlement/platform/internal/entitlement/postgres"
	"github.com/accessentitlement/platform/internal/entitlement/rediscache"
	"github.com/accessentitlement/platform/internal/pkg/logging"
	"github.com/accessentitlement/platform/internal/server"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadEntitlementConfig()
	if err != nil {
		log.Fatalf("user-entitlement: failed to load config: %v", err)
	}
	logging.Init(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("user-entitlement: failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.Database.ConnMaxIdleTimeMinutes) * time.Minute)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  time.Duration(cfg.Redis.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.Redis.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Redis.WriteTimeoutSeconds) * time.Second,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})

	publishCh, err := broker.DialAMQPChannel(cfg.Broker.URI(), cfg.Broker.ValidationQueue, "job-publisher")
	if err != nil {
		log.Fatalf("user-entitlement: failed to dial job-publisher channel: %v", err)
	}
	publisher := broker.NewAMQPJobPublisher(publishCh, cfg.Broker.ValidationQueue)

	consumeCh, err := broker.DialAMQPChannel(cfg.Broker.URI(), cfg.Broker.ResultQueue, "result-consumer")
	if err != nil {
		log.Fatalf("user-entitlement: failed to dial result-consumer channel: %v", err)
	}
	resultConsumer := broker.NewAMQPConsumer(consumeCh, cfg.Broker.ResultQueue, cfg.Broker.Prefetch)

	repo := postgres.NewRepository(db)
	cache := rediscache.New(rdb)
	svc := entitlement.NewService(repo, cache, publisher, cfg.CacheTTL.ActiveGroups())
	handler := entitlement.NewHandler(svc)

	router := server.NewEngine(cfg.Server)
	handler.RegisterRoutes(router)
	httpServer := server.NewHTTPServer(cfg.Server, router)

	bgCtx, cancelBg := context.WithCancel(context.Background())
	var bg sync.WaitGroup

	republisher := entitlement.NewRepublisher(repo, publisher, time.Duration(cfg.RepublishIntervalSeconds)*time.Second)
	bg.Add(1)
	go func() {
		defer bg.Done()
		republisher.Run(bgCtx)
	}()

	bg.Add(1)
	go func() {
		defer bg.Done()
		if err := entitlement.RunResultConsumerLoop(bgCtx, resultConsumer, svc); err != nil {
			slog.Error("user-entitlement: result consumer loop exited", "error", err)
		}
	}()

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("user-entitlement: server failed: %v", err)
		}
	}()
	slog.Info("user-entitlement: server started", "addr", httpServer.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("user-entitlement: shutting down")

	// Stop consumers and the republish scan first so no new work starts,
	// then drain the HTTP server, then release the broker, cache, and store.
	cancelBg()
	bg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("user-entitlement: forced shutdown: %v", err)
	}

	if err := publisher.Close(); err != nil {
		slog.Warn("user-entitlement: failed to close job publisher channel", "error", err)
	}
	if err := resultConsumer.Close(); err != nil {
		slog.Warn("user-entitlement: failed to close result consumer channel", "error", err)
	}
	if err := rdb.Close(); err != nil {
		slog.Warn("user-entitlement: failed to close redis client", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Warn("user-entitlement: failed to close database", "error", err)
	}
	slog.Info("user-entitlement: exited")
}
