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

	"github.com/accessentitlement/platform/internal/catalog"
	"github.com/accessentitlement/platform/internal/catalog/postgres"
	"github.com/accessentitlement/platform/internal/catalog/rediscache"
	"github.com/accessentitlement/platform/internal/config"
	"github.com/accessentitlement/platform/internal/pkg/logging"
	"github.com/accessentitlement/platform/internal/server"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadCatalogConfig()
	if err != nil {
		log.Fatalf("access-catalog: failed to load config: %v", err)
	}
	logging.Init(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("access-catalog: failed to connect to database: %v", err)
	}
	defer db.Close()
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
	defer rdb.Close()

	repo := postgres.NewRepository(db)
	cache := rediscache.New(rdb)
	svc := catalog.NewService(repo, cache, catalog.TTLs{
		ConflictsMatrix: cfg.CacheTTL.ConflictsMatrix(),
		GroupAccesses:   cfg.CacheTTL.GroupAccesses(),
		AccessGroups:    cfg.CacheTTL.AccessGroups(),
	})
	handler := catalog.NewHandler(svc)

	router := server.NewEngine(cfg.Server)
	handler.RegisterRoutes(router)
	httpServer := server.NewHTTPServer(cfg.Server, router)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("access-catalog: server failed: %v", err)
		}
	}()
	slog.Info("access-catalog: server started", "addr", httpServer.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("access-catalog: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("access-catalog: forced shutdown: %v", err)
	}
	slog.Info("access-catalog: exited")
}
