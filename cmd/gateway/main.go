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

	"github.com/accessentitlement/platform/internal/config"
	"github.com/accessentitlement/platform/internal/gateway"
	"github.com/accessentitlement/platform/internal/pkg/httpclient"
	"github.com/accessentitlement/platform/internal/pkg/logging"
	"github.com/accessentitlement/platform/internal/server"
)

func main() {
	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		log.Fatalf("gateway: failed to load config: %v", err)
	}
	logging.Init(cfg.LogLevel)

	catalogClient := gateway.NewDownstreamClient(cfg.Catalog.BaseURL, httpclient.New(cfg.Catalog.Timeout()))
	entitlementClient := gateway.NewDownstreamClient(cfg.Entitlement.BaseURL, httpclient.New(cfg.Entitlement.Timeout()))

	svc := gateway.NewService(catalogClient, entitlementClient)
	handler := gateway.NewHandler(svc)

	router := server.NewEngine(cfg.Server)
	handler.RegisterRoutes(router)
	httpServer := server.NewHTTPServer(cfg.Server, router)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("gateway: server failed: %v", err)
		}
	}()
	slog.Info("gateway: server started", "addr", httpServer.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("gateway: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("gateway: forced shutdown: %v", err)
	}
	slog.Info("gateway: exited")
}
