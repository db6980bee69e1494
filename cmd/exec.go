package cmd

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

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"ticket-checker/config"
	"ticket-checker/internal/handlers"
	"ticket-checker/internal/services"
	"ticket-checker/internal/services/gaitera"
	"ticket-checker/monitoring"
	"ticket-checker/security"
	"ticket-checker/utils"
)

func Start() error {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (optional, the notifier is a no-op without it)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey

		pn = pubnub.NewPubNub(pnConfig)
	} else {
		log.Println("PubNub keys not configured, realtime notifications disabled")
	}

	// Billing backend client
	backend := gaitera.NewClient(&gaitera.ClientConfig{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.BackendTimeout,
	})

	// Initialize services
	resolverService := services.NewResolverService(backend)
	updaterService := services.NewUpdaterService(backend)
	gateService := services.NewGateService(redisClient, cfg.GateTTL)
	notifyService := services.NewNotifyService(pn, cfg.NotifyChannel)

	// Initialize handlers
	scanHandler := handlers.NewScanHandler(resolverService, updaterService, gateService, notifyService)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.ScanRateLimit)

	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
	}

	// Register routes
	e := echo.New()
	e.Use(rateLimiter.AntiBotMiddleware())

	scanGroup := e.Group("/api/v1/scan", rateLimiter.ScanRateLimit())
	scanGroup.POST("/resolve", scanHandler.ResolveScan)
	scanGroup.POST("/status", scanHandler.ApplyStatus)
	scanGroup.POST("/dismiss", scanHandler.DismissScan)
	scanGroup.GET("/state", scanHandler.GateState)

	if cfg.EnableMetrics {
		e.GET("/metrics", func(c echo.Context) error {
			promhttp.Handler().ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	log.Println("Server routes registered")

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Println("Shutdown signal received, cleaning up...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
