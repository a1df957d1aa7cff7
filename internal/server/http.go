// Package server provides the shared HTTP server construction used by all
// four services' cmd/ entry points.
package server

import (
	"net/http"
	"time"

	"github.com/accessentitlement/platform/internal/config"
	"github.com/accessentitlement/platform/internal/server/middleware"

	"github.com/gin-gonic/gin"
)

// NewEngine builds a gin.Engine with the platform's standard middleware
// stack (panic recovery, permissive dev CORS) and run mode.
func NewEngine(server config.ServerConfig) *gin.Engine {
	if server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	return r
}

// NewHTTPServer wraps a router with an inbound read-header timeout and an
// idle-connection timeout. WriteTimeout and
// ReadTimeout are intentionally left unset: handlers may legitimately take
// longer than a fixed budget (e.g. long-polling), and outbound timeouts are
// enforced independently by internal/pkg/httpclient.
func NewHTTPServer(server config.ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              server.Address(),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(server.ReadHeaderTimeout) * time.Second,
		IdleTimeout:       time.Duration(server.IdleTimeout) * time.Second,
	}
}
