package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kumbara/internal/config"
	"kumbara/internal/database"
	"kumbara/internal/handlers"
	"kumbara/internal/kvstore"
	"kumbara/internal/ledger"
	"kumbara/internal/logger"
	"kumbara/internal/middleware"
	"kumbara/internal/pricecache"
	"kumbara/internal/pricesource"
	"kumbara/internal/scheduler"
	"kumbara/internal/services"
	"kumbara/internal/validator"
	"kumbara/internal/valuator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, closeStore, err := openStore(appConfig)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Core state
	txLedger := ledger.New(store)
	if err := txLedger.Load(ctx); err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	defer txLedger.Close()

	cache := pricecache.New(store, pricecache.WithStaleAfter(appConfig.StaleAfter))
	defer cache.Close()
	if _, err := cache.Get(ctx); err != nil {
		log.Warnw("cached gold prices unavailable, using defaults", "error", err)
	}

	// Holdings are brought in line with whatever prices are cached before
	// the first refresh runs.
	val := valuator.New(txLedger)
	val.Apply(ctx, cache.CurrentPrices())

	client := pricesource.NewClient(appConfig.GoldAPIURL, appConfig.GoldAPIKey, appConfig.GoldFetchTimeout, nil)
	refresher := scheduler.New(client, cache, appConfig.RefreshInterval,
		scheduler.WithOnUpdate(func(ctx context.Context, prices map[string]decimal.Decimal) {
			val.Apply(ctx, prices)
		}),
	)

	tracker := services.NewTrackerService(store, txLedger, cache, refresher)

	refresher.Start(context.WithoutCancel(ctx))
	defer refresher.Stop()

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           newRouter(appConfig, tracker),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Closing the core ends open event streams so Shutdown does not wait on them.
	server.RegisterOnShutdown(func() {
		refresher.Stop()
		cache.Close()
		txLedger.Close()
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Kumbara on port %s (store: %s, refresh every %s)",
			appConfig.Port, appConfig.StoreDriver, appConfig.RefreshInterval)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("server shutdown incomplete", "error", err)
	}
	return nil
}

// openStore selects the persistent store backend. The returned func releases it.
func openStore(cfg *config.Config) (kvstore.Store, func(), error) {
	log := logger.Get()

	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		store, err := kvstore.NewRedisStore(kvstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warnw("redis close error", "error", err)
			}
		}, nil

	case config.StoreDriverMemory:
		log.Warn("Using in-memory store; data is lost on exit")
		return kvstore.NewMemoryStore(), func() {}, nil

	default:
		dbManager, err := database.NewManager(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
		}
		if err := dbManager.RunMigrations(); err != nil {
			_ = dbManager.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		return dbManager.Store(), func() {
			if err := dbManager.Close(); err != nil {
				log.Warnw("database close error", "error", err)
			}
		}, nil
	}
}

func newRouter(cfg *config.Config, tracker services.TrackerServicer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	transactionHandler := handlers.NewTransactionHandler(tracker)
	summaryHandler := handlers.NewSummaryHandler(tracker)
	goldHandler := handlers.NewGoldHandler(tracker)
	settingsHandler := handlers.NewSettingsHandler(tracker)
	eventsHandler := handlers.NewEventsHandler(tracker, 30*time.Second)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(cfg.APIKey))

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PUT("", transactionHandler.ReplaceTransactions)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	v1.GET("/totals", summaryHandler.GetTotals)
	v1.GET("/investments", summaryHandler.GetInvestments)
	v1.GET("/investments/:id/gain-loss", summaryHandler.GetGainLoss)

	gold := v1.Group("/gold")
	gold.GET("/categories", goldHandler.GetCategories)
	gold.GET("/prices", goldHandler.GetPrices)
	gold.POST("/refresh", goldHandler.Refresh)

	v1.GET("/filter", settingsHandler.GetFilter)
	v1.PUT("/filter", settingsHandler.SetFilter)
	v1.DELETE("/data", settingsHandler.ResetData)

	v1.GET("/events", eventsHandler.Stream)

	return router
}
