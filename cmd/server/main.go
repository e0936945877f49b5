package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	apppartner "github.com/warehousepro/backend/internal/application/partner"
	appwarehouse "github.com/warehousepro/backend/internal/application/warehouse"
	"github.com/warehousepro/backend/internal/infrastructure/config"
	"github.com/warehousepro/backend/internal/infrastructure/logger"
	"github.com/warehousepro/backend/internal/infrastructure/notify"
	"github.com/warehousepro/backend/internal/infrastructure/persistence"
	"github.com/warehousepro/backend/internal/interfaces/http/handler"
	"github.com/warehousepro/backend/internal/interfaces/http/middleware"
	"github.com/warehousepro/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WarehousePro Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Route GORM's query trace through zap
	gormLog := logger.NewQueryLogger(log, logger.QueryLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Post-commit notifications over Redis pub/sub, if enabled
	var notifier appledger.Notifier = appledger.NopNotifier{}
	if cfg.Notify.Enabled {
		redisClient, err := notify.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		notifier = notify.NewRedisNotifier(redisClient, cfg.Notify.Channel, log)
		log.Info("Notifications enabled", zap.String("channel", cfg.Notify.Channel))
	}

	// The ledger unit of work: every movement runs inside one transaction
	// with the audit flush before commit.
	scope := persistence.NewGormLedgerScope(db.DB, cfg.Ledger.UnitOfWorkTimeout, log)

	retry := appledger.RetryConfig{
		MaxAttempts: cfg.Ledger.MaxRetries,
		BaseDelay:   cfg.Ledger.RetryBaseDelay,
	}

	// Application services
	movementService := appledger.NewMovementService(scope, notifier, retry, log)
	taskService := appledger.NewTaskService(scope, notifier, retry, log)
	queryService := appledger.NewQueryService(scope)
	auditService := appledger.NewAuditService(persistence.NewGormAuditLogRepository(db.DB))
	paymentService := apppartner.NewPaymentService(scope)
	topologyService := appwarehouse.NewTopologyService(scope)

	// HTTP handlers
	movementHandler := handler.NewMovementHandler(movementService, queryService)
	taskHandler := handler.NewTaskHandler(taskService)
	stockHandler := handler.NewStockHandler(queryService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	auditHandler := handler.NewAuditHandler(auditService)
	warehouseHandler := handler.NewWarehouseHandler(topologyService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validation rules before any request binding runs
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID(log))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.UserContext(log))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(movementHandler).
		Register(taskHandler).
		Register(stockHandler).
		Register(paymentHandler).
		Register(auditHandler).
		Register(warehouseHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.FromGin(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
