package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pricing/internal/cache"
	"github.com/GTDGit/gtd_pricing/internal/config"
	"github.com/GTDGit/gtd_pricing/internal/database"
	"github.com/GTDGit/gtd_pricing/internal/handler"
	"github.com/GTDGit/gtd_pricing/internal/middleware"
	"github.com/GTDGit/gtd_pricing/internal/pkg/clock"
	"github.com/GTDGit/gtd_pricing/internal/repository"
	"github.com/GTDGit/gtd_pricing/internal/service"
	"github.com/GTDGit/gtd_pricing/internal/sse"
	"github.com/GTDGit/gtd_pricing/internal/worker"
)

// main is the entrypoint of the pricing API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting pricing api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, cfg.Pricing.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	// 4. Optional Redis for the public active-sales cache
	var saleCache service.ActiveSaleCache = cache.NoopSaleCache{}
	var redisPinger handler.Pinger
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, active sales are served from the database")
		} else {
			defer redisClient.Close()
			saleCache = cache.NewSaleCache(redisClient, cfg.Pricing.ActiveSalesTTL)
			redisPinger = handler.PingFunc(redisClient.Ping)
		}
	}

	// 5. Initialize services
	store := repository.NewStore(db)
	clk := clock.NewRealClock()

	bulkSvc := service.NewBulkPriceService(store, clk)
	ruleSvc := service.NewPricingRuleService(store, bulkSvc, clk, cfg.Pricing.PreviewLimit)
	historySvc := service.NewPriceHistoryService(store, service.HistoryLimits{
		PerProduct: cfg.Pricing.HistoryLimit,
		Recent:     cfg.Pricing.RecentChangesLimit,
		MaxRecent:  cfg.Pricing.MaxRecentLimit,
		RecentBulk: cfg.Pricing.RecentBulkLimit,
	})
	configSvc := service.NewPricingConfigService(store, clk)
	saleSvc := service.NewSaleService(store, saleCache, clk)

	// 5a. Admin event stream
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)
	bulkSvc.SetNotifier(notifier)
	saleSvc.SetNotifier(notifier)

	// 6. Initialize handlers
	handlers := &handler.Handlers{
		Health:  handler.NewHealthHandler(db, redisPinger),
		Pricing: handler.NewPricingHandler(ruleSvc, bulkSvc, historySvc, configSvc),
		Sale:    handler.NewSaleHandler(saleSvc),
		SSE:     handler.NewSSEHandler(hub, cfg.JWTSecret),
	}

	// 7. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret)
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.RegisterRoutes(router, handlers, jwtMw.Handle(), limiter.Handle())

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start background loops
	go limiter.Start(ctx)
	go worker.NewSaleSyncWorker(saleSvc, cfg.Worker.SaleSyncInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
