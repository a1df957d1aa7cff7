// Package httpclient builds bounded-timeout HTTP clients for inter-service
// calls (V→UE, V→AC, GW→UE, GW→AC) with a shaped connection pool so a slow
// downstream can't exhaust file descriptors.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 20
	defaultIdleConnTimeout     = 90 * time.Second
)

// New builds an *http.Client whose overall round trip is bounded by timeout;
// 30s is the default when timeout is zero or negative. Connection
// establishment uses a short dial timeout so a dead downstream is detected
// quickly rather than exhausting the whole request budget on TCP setup.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
