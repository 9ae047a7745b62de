package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront-backend/config"
	"storefront-backend/internal/delivery/http/middleware"
	v1 "storefront-backend/internal/delivery/http/v1"
	"storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/catalog"
	"storefront-backend/internal/infrastructure/directory"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
	"storefront-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "storefront-backend"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	if cfg.Env == "production" && strings.Contains(cfg.AllowedOrigin, "*") {
		logger.Warn().Str("allowed_origin", cfg.AllowedOrigin).Msg("CORS allows any origin in production")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Initialize Caches (In-Memory)
	// Sessions own their cache: its eviction hook closes expired sessions.
	sessionCache := cache.NewMemoryCache(cfg.SessionTTL, cfg.SessionCleanupInterval)
	lookupCache := cache.NewMemoryCache(cfg.SearchCacheTTL, 2*cfg.SearchCacheTTL)

	// Set up Router
	mux := http.NewServeMux()

	// --- Modules Initialization ---

	// Customer Search Module
	customerDirectory := directory.NewMockDirectory(cfg.LookupLatency)
	searchUC := usecase.NewSearchUsecase(customerDirectory, lookupCache, cfg.SearchTimeout, cfg.SearchCacheTTL, cfg.SearchMinLength)
	searchHandler := v1.NewSearchHandler(searchUC)

	// Session Module (search pipeline + cart per visitor)
	sessionUC := usecase.NewSessionUsecase(sessionCache, searchUC, cfg, appMetrics)
	sessionHandler := v1.NewSessionHandler(sessionUC, cfg.Env)
	withSession := middleware.NewSessionMiddleware(sessionUC)

	// Catalog Module
	catalogHandler := v1.NewCatalogHandler(catalog.NewStaticCatalog())

	// Cart Module
	cartHandler := v1.NewCartHandler(cfg.MaxCartQuantity)

	// Sessions
	mux.HandleFunc("POST /api/v1/sessions", sessionHandler.CreateSession)
	mux.Handle("DELETE /api/v1/sessions", withSession(http.HandlerFunc(sessionHandler.EndSession)))

	// Customer Search
	mux.Handle("POST /api/v1/search/input", withSession(http.HandlerFunc(searchHandler.SubmitInput)))
	mux.Handle("GET /api/v1/search", withSession(http.HandlerFunc(searchHandler.GetState)))
	mux.HandleFunc("GET /api/v1/customers/search", searchHandler.SearchCustomers)

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)

	// Cart (Session)
	mux.Handle("GET /api/v1/cart", withSession(http.HandlerFunc(cartHandler.GetCart)))
	mux.Handle("DELETE /api/v1/cart", withSession(http.HandlerFunc(cartHandler.ClearCart)))
	mux.Handle("POST /api/v1/cart/items", withSession(http.HandlerFunc(cartHandler.AddItem)))
	mux.Handle("PUT /api/v1/cart/items/{id}", withSession(http.HandlerFunc(cartHandler.UpdateItem)))
	mux.Handle("POST /api/v1/cart/items/{id}/increase", withSession(http.HandlerFunc(cartHandler.IncreaseItem)))
	mux.Handle("POST /api/v1/cart/items/{id}/decrease", withSession(http.HandlerFunc(cartHandler.DecreaseItem)))
	mux.Handle("DELETE /api/v1/cart/items/{id}", withSession(http.HandlerFunc(cartHandler.RemoveItem)))

	// Metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	rateLimiter := middleware.NewRateLimiterFromConfig(context.Background(), cfg)

	// Apply CORS, Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, cfg.Env, addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// After the server stops taking requests: no handler can touch a session
	// while its pipeline is being closed.
	sessionUC.Shutdown()

	logger.ServiceStop(serviceName)
}
