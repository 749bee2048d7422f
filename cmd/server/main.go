package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sunjava/telcodesk/internal/config"
	"github.com/sunjava/telcodesk/internal/handlers"
	"github.com/sunjava/telcodesk/internal/models"
	"github.com/sunjava/telcodesk/internal/repository"
	"github.com/sunjava/telcodesk/internal/service"
	"github.com/sunjava/telcodesk/pkg/cache"
	"github.com/sunjava/telcodesk/pkg/database"
	"github.com/sunjava/telcodesk/pkg/logger"
	"github.com/sunjava/telcodesk/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFormat := "json"
	if cfg.App.Debug {
		logFormat = "text"
	}
	log := logger.New(cfg.App.LogLevel, logFormat)

	mongodb, err := database.NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.Timeout)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongodb.Close()
	log.WithField("database", cfg.MongoDB.DBName).Info("Connected to MongoDB")

	var cacheBackend service.Cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
	} else {
		defer redisCache.Close()
		cacheBackend = redisCache
		log.WithField("addr", cfg.Redis.Addr).Info("Connected to Redis")
	}

	db := mongodb.GetDatabase()
	accountRepo := repository.NewAccountRepository(db, log)
	lineRepo := repository.NewLineRepository(db, log)
	serviceRepo := repository.NewServiceRepository(db, log)
	lineServiceRepo := repository.NewLineServiceRepository(db, log)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	for _, create := range []func(context.Context) error{
		accountRepo.CreateIndex,
		lineRepo.CreateIndex,
		serviceRepo.CreateIndex,
		lineServiceRepo.CreateIndex,
	} {
		if err := create(indexCtx); err != nil {
			log.Warnf("Failed to create indexes: %v", err)
		}
	}
	indexCancel()

	metrics := service.NewMetricsCollector()
	catalog := service.NewCatalogService(serviceRepo, cacheBackend, log)
	accountService := service.NewAccountService(accountRepo, lineRepo, serviceRepo, lineServiceRepo, cacheBackend, metrics, log)
	lineOps := service.NewLineOpsService(lineRepo, metrics, log)
	subscriptions := service.NewSubscriptionService(lineRepo, lineServiceRepo, catalog, metrics, log)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	if err := catalog.Seed(seedCtx, cfg.Catalog.SeedPath); err != nil {
		log.WithError(err).Warn("Catalog seeding skipped")
	}
	seedCancel()

	modelClient := service.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, log)
	if !modelClient.Configured() {
		log.Warn("OpenAI API key not set, chat assistant disabled")
	}
	assistant := service.NewAssistant(modelClient, cfg.OpenAI.Model, accountService, lineOps, subscriptions, metrics, log)

	handler := handlers.NewHTTPHandler(accountService, lineOps, catalog, subscriptions, assistant, log)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(middleware.CORS(cfg.App.CORSOrigins))

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/dashboard", handler.Dashboard)
		v1.GET("/services", handler.ListServices)

		v1.GET("/accounts", handler.ListAccounts)
		v1.GET("/accounts/:account_id", handler.GetAccount)
		v1.POST("/accounts/:account_id/status", handler.UpdateAccountStatus)
		v1.GET("/accounts/:account_id/lines", handler.ListLines)
		v1.POST("/accounts/:account_id/lines", handler.CreateLine)
		v1.POST("/accounts/:account_id/lines/suspend", handler.BulkLineOperation(models.LineOpSuspend))
		v1.POST("/accounts/:account_id/lines/restore", handler.BulkLineOperation(models.LineOpRestore))
		v1.POST("/accounts/:account_id/lines/reactivate", handler.BulkLineOperation(models.LineOpReactivate))
		v1.POST("/accounts/:account_id/lines/cancel", handler.BulkLineOperation(models.LineOpCancel))
		v1.POST("/accounts/:account_id/services", handler.AddService)

		v1.GET("/lines/:line_id", handler.GetLine)
		v1.POST("/lines/:line_id/mirror", handler.MirrorLine)
		v1.PUT("/lines/:line_id/details", handler.UpdateLineDetails)
		v1.PUT("/lines/:line_id/payment-date", handler.UpdatePaymentDate)

		chat := v1.Group("/accounts/:account_id/chat")
		if cfg.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
			chat.Use(limiter.Middleware())
		}
		chat.POST("/message", handler.ChatMessage)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	log.Info("Server stopped")
}
