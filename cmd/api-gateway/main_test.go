package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FleetHub/FleetHub/internal/common/discovery"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/FleetHub/FleetHub/internal/common/middleware"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, maxFailures int) *gateway {
	t.Helper()
	log, err := logger.NewLogger("error", "text", "stdout", "")
	require.NoError(t, err)
	// 指向不可达地址：选址必然失败
	consulClient, err := discovery.NewConsulClient("127.0.0.1", 1)
	require.NoError(t, err)
	return &gateway{
		consul:  consulClient,
		service: "fleet-service",
		limiter: middleware.NewTokenBucket(100, 100),
		breaker: middleware.NewCircuitBreaker("fleet-service", maxFailures, time.Minute),
		log:     log,
	}
}

func doGet(g *gateway) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))
	return w
}

func TestGatewayNoBackendReturns502(t *testing.T) {
	g := newTestGateway(t, 5)

	// 选不到后端时不能让 net/http 落一个空 200
	w := doGet(g)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "BAD_GATEWAY")
}

func TestGatewayCircuitOpenReturns503(t *testing.T) {
	g := newTestGateway(t, 1)

	w := doGet(g)
	require.Equal(t, http.StatusBadGateway, w.Code)

	// 熔断打开后快速失败
	w = doGet(g)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "CIRCUIT_OPEN")
}

func TestGatewayRateLimit(t *testing.T) {
	g := newTestGateway(t, 5)
	g.limiter = middleware.NewTokenBucket(1, 1)

	_ = doGet(g)
	w := doGet(g)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "RATE_LIMITED")
}
