// @title Ecomm API Gateway
// @version 1.0
// @description Reverse proxy in front of the products, orders, cart and
// users services. Backend instances are resolved per request from an
// external service registry, forwarded with retries and both a
// per-attempt and a total-request timeout budget, and the response is
// re-wrapped into the gateway's envelope. The gateway maintains its own
// registration with the registry under a periodic health-check loop
// that can drive re-registration or shutdown. Admin endpoints require
// JWT Bearer authentication.
//
// Environment variables of interest:
// - SERVICE_REGISTRATION_KEY (required): bearer key used to register with the registry.
// - REGISTRY_URL (optional, default http://localhost:3002): the registry's base URL.
// - PORT (optional, default 3001): the port this gateway listens on.
// - LOG_LEVEL (optional, default info): debug|info|warn|error.
// - DOMAIN (optional): consumed by an external CORS layer, not this binary.
// - REDIS_ADDR (optional): enables a short-TTL cache in front of registry reads.
// - ADMIN_JWT_SECRET (optional): HMAC secret for the admin surface; unset disables it.
//
// @contact.name Ecomm Platform Team
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @tag.name proxy
// @tag.description Proxy endpoints forwarding to the registry-resolved backend for a fixed service prefix set.
// @tag.name admin
// @tag.description Gateway lifecycle introspection and manual re-registration.
// @tag.name system
// @tag.description Metrics and OpenAPI discovery endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ecomm/api-gateway/internal/adminapi"
	"ecomm/api-gateway/internal/config"
	"ecomm/api-gateway/internal/dispatch"
	"ecomm/api-gateway/internal/docs"
	"ecomm/api-gateway/internal/liveness"
	"ecomm/api-gateway/internal/loadbalancer"
	"ecomm/api-gateway/internal/logging"
	"ecomm/api-gateway/internal/metrics"
	"ecomm/api-gateway/internal/proxy"
	"ecomm/api-gateway/internal/registryclient"
	"ecomm/api-gateway/internal/retry"
	"ecomm/api-gateway/internal/util"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New("gateway", logging.ParseLevel(cfg.LogLevel))

	var registryClient registryclient.Client = registryclient.New(registryclient.Options{
		RegistryURL:        cfg.RegistryURL,
		RegistryHealthPath: cfg.RegistryHealthPath,
		RegistrationKey:    cfg.RegistrationKey,
		RequestTimeout:     cfg.RequestTimeout,
	})
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		registryClient = registryclient.NewCachingClient(registryClient, rdb, 2*time.Second)
		log.Infof("registry reads cached via redis at %s", cfg.RedisAddr)
	}

	m := metrics.New()
	status := liveness.NewStatusCell(liveness.StatusStarting)
	retryPolicy := retry.New(cfg.Retry)

	var balancer loadbalancer.Balancer
	if cfg.LoadBalancerStrategy == "round-robin" {
		balancer = loadbalancer.NewRoundRobin()
	} else {
		balancer = loadbalancer.NewRandom()
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 {
		port = 3001
	}

	terminate := make(chan struct{}, 1)
	onTerminate := func() {
		select {
		case terminate <- struct{}{}:
		default:
		}
	}
	controller := liveness.New(registryClient, retryPolicy, logging.New("liveness", logging.ParseLevel(cfg.LogLevel)), status, liveness.Options{
		Port:                    port,
		HealthChecksEnabled:     cfg.HealthChecksEnabled,
		HealthCheckInterval:     cfg.HealthCheckInterval,
		HealthCheckFailStrategy: cfg.HealthCheckFailStrategy,
		ProbeTimeout:            cfg.RequestTimeout,
		MaxReregisterRetries:    3,
	}, onTerminate)

	engine := proxy.New(status, registryClient, balancer, retryPolicy, logging.New("proxy", logging.ParseLevel(cfg.LogLevel)), m, proxy.Config{
		RequestTimeout:      cfg.RequestTimeout,
		TotalRequestTimeout: cfg.TotalRequestTimeout,
	})

	mux := http.NewServeMux()
	mux.Handle("/", dispatch.New(engine))

	withLogging := util.Chain(util.RequestLog(logging.New("access", logging.ParseLevel(cfg.LogLevel))))

	adminHandler := adminapi.NewHandler(controller, registryClient)
	mux.HandleFunc("/admin/status", util.JWTAuth(cfg.AdminJWTSecret)(adminHandler.Status))
	mux.HandleFunc("/admin/reregister", util.JWTAuth(cfg.AdminJWTSecret)(adminHandler.Reregister))

	doc := docs.Build("http://localhost:" + cfg.Port)
	mux.HandleFunc("/swagger.json", docs.Handler(doc))
	mux.HandleFunc("/swagger/", docs.UIHandler())

	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: withLogging(mux)}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := controller.Start(rootCtx); err != nil {
			log.Errorf("fatal: initial registration failed: %v", err)
			onTerminate()
		}
	}()

	go statusGauge(rootCtx, m, status)

	go func() {
		log.Infof("gateway listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server error: %v", err)
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Infof("signal received, shutting down")
	case <-terminate:
		log.Errorf("gateway shutting down due to an unrecoverable lifecycle failure")
	}

	status.Set(liveness.StatusShuttingDown)
	controller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
		os.Exit(1)
	}
}

// statusGauge mirrors the StatusCell into the Prometheus gauge; a
// lightweight poll rather than a push is simplest here since the cell
// has no subscriber mechanism and is written rarely.
func statusGauge(ctx context.Context, m *metrics.Metrics, status *liveness.StatusCell) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.SetStatus(int(status.Get()))
		}
	}
}
