package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/accessentitlement/platform/internal/broker"
	"github.com/accessentitlement/platform/internal/config"
	"github.com/accessentitlement/platform/internal/pkg/httpclient"
	"github.com/accessentitlement/platform/internal/pkg/logging"
	"github.com/accessentitlement/platform/internal/validation"
	validationcache "github.com/accessentitlement/platform/internal/validation/cache"
	"github.com/accessentitlement/platform/internal/validation/clients"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadValidationConfig()
	if err != nil {
		log.Fatalf("validation: failed to load config: %v", err)
	}
	logging.Init(cfg.LogLevel)

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

	catalogClient := clients.NewCatalogClient(cfg.Catalog.BaseURL, httpclient.New(cfg.Catalog.Timeout()))
	entitlementClient := clients.NewEntitlementClient(cfg.Entitlement.BaseURL, httpclient.New(cfg.Entitlement.Timeout()))
	mirror := validationcache.New(rdb)

	engine := validation.NewEngine(catalogClient, entitlementClient, mirror, validation.TTLs{
		ConflictsMatrix: cfg.CacheTTL.ConflictsMatrix(),
		AccessGroups:    cfg.CacheTTL.AccessGroups(),
		ActiveGroups:    cfg.CacheTTL.ActiveGroups(),
	})

	consumeCh, err := broker.DialAMQPChannel(cfg.Broker.URI(), cfg.Broker.ValidationQueue, "job-consumer")
	if err != nil {
		log.Fatalf("validation: failed to dial job-consumer channel: %v", err)
	}
	jobConsumer := broker.NewAMQPConsumer(consumeCh, cfg.Broker.ValidationQueue, cfg.Broker.Prefetch)

	publishCh, err := broker.DialAMQPChannel(cfg.Broker.URI(), cfg.Broker.ResultQueue, "result-publisher")
	if err != nil {
		log.Fatalf("validation: failed to dial result-publisher channel: %v", err)
	}
	resultPublisher := broker.NewAMQPResultPublisher(publishCh, cfg.Broker.ResultQueue)

	bgCtx, cancelBg := context.WithCancel(context.Background())
	var bg sync.WaitGroup
	bg.Add(1)
	go func() {
		defer bg.Done()
		if err := validation.RunConsumerLoop(bgCtx, jobConsumer, resultPublisher, engine); err != nil {
			slog.Error("validation: consumer loop exited", "error", err)
		}
	}()
	slog.Info("validation: worker started", "validation_queue", cfg.Broker.ValidationQueue, "result_queue", cfg.Broker.ResultQueue)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("validation: shutting down")

	// Stop the consumer first so no new job starts, then release the
	// broker channels and the cache client.
	cancelBg()
	bg.Wait()

	if err := jobConsumer.Close(); err != nil {
		slog.Warn("validation: failed to close job consumer channel", "error", err)
	}
	if err := resultPublisher.Close(); err != nil {
		slog.Warn("validation: failed to close result publisher channel", "error", err)
	}
	if err := rdb.Close(); err != nil {
		slog.Warn("validation: failed to close redis client", "error", err)
	}
	slog.Info("validation: exited")
}
