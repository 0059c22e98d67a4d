package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/FleetHub/FleetHub/internal/common/discovery"
	"github.com/FleetHub/FleetHub/internal/common/logger"
	"github.com/FleetHub/FleetHub/internal/common/middleware"
	"github.com/hashicorp/consul/api"
)

// gateway 把请求按轮询转发到 Consul 中健康的后端实例，
// 入口带令牌桶限流，转发路径带熔断保护。
type gateway struct {
	consul  *api.Client
	service string
	limiter middleware.RateLimiter
	breaker *middleware.CircuitBreaker
	counter uint64
	log     logger.Logger
}

func (g *gateway) pickBackend() (string, error) {
	addrs, err := discovery.ResolveHealthy(g.consul, g.service)
	if err != nil {
		return "", err
	}
	idx := atomic.AddUint64(&g.counter, 1)
	return addrs[idx%uint64(len(addrs))], nil
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !g.limiter.Allow(r.Context()) {
		writeJSON(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		return
	}

	// 代理接手请求后由它负责写响应；在此之前失败（选址/解析）必须
	// 由网关自己写错误，否则 net/http 会补一个空的 200。
	wrote := false
	err := g.breaker.Call(r.Context(), func() error {
		backend, err := g.pickBackend()
		if err != nil {
			return err
		}
		target, err := url.Parse("http://" + backend)
		if err != nil {
			return err
		}

		var proxyErr error
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			proxyErr = err
			writeJSON(w, http.StatusBadGateway, "BAD_GATEWAY", "upstream request failed")
		}
		wrote = true
		proxy.ServeHTTP(w, r)
		return proxyErr
	})
	if err == nil {
		return
	}
	if errors.Is(err, middleware.ErrCircuitOpen) {
		writeJSON(w, http.StatusServiceUnavailable, "CIRCUIT_OPEN", "service temporarily unavailable")
		return
	}
	g.log.Warnf("proxy failed: %v", err)
	if !wrote {
		writeJSON(w, http.StatusBadGateway, "BAD_GATEWAY", "no healthy backend available")
	}
}

func writeJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"code":%q,"message":%q}`, code, message)
}

func main() {
	listen := flag.String("listen", ":8000", "网关监听地址")
	consulAddr := flag.String("consul", "localhost:8500", "Consul 地址 host:port")
	service := flag.String("service", "fleet-service", "转发目标服务名")
	flag.Parse()

	log, err := logger.NewLogger("info", "text", "stdout", "")
	if err != nil {
		panic(err)
	}

	host, portStr, ok := strings.Cut(*consulAddr, ":")
	if !ok {
		log.Fatalf("invalid consul address: %s", *consulAddr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("invalid consul port: %s", portStr)
	}
	consulClient, err := discovery.NewConsulClient(host, port)
	if err != nil {
		log.Fatalf("failed to connect to Consul: %v", err)
	}

	g := &gateway{
		consul:  consulClient,
		service: *service,
		limiter: middleware.NewTokenBucket(2000, 1000),
		breaker: middleware.NewCircuitBreaker(*service, 5, 10*time.Second),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", g)

	srv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Infof("api-gateway listening on %s, forwarding to %s", *listen, *service)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("gateway exited: %v", err)
	}
}
