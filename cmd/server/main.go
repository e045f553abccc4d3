package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/erp/warehouse/internal/application/catalog"
	appinventory "github.com/erp/warehouse/internal/application/inventory"
	appjournal "github.com/erp/warehouse/internal/application/journal"
	apppartner "github.com/erp/warehouse/internal/application/partner"
	appsession "github.com/erp/warehouse/internal/application/session"
	"github.com/erp/warehouse/internal/application/undo"
	"github.com/erp/warehouse/internal/domain/session"
	"github.com/erp/warehouse/internal/infrastructure/config"
	"github.com/erp/warehouse/internal/infrastructure/lock"
	"github.com/erp/warehouse/internal/infrastructure/logger"
	"github.com/erp/warehouse/internal/infrastructure/persistence"
	"github.com/erp/warehouse/internal/infrastructure/telemetry"
	"github.com/erp/warehouse/internal/interfaces/http/handler"
	"github.com/erp/warehouse/internal/interfaces/http/middleware"
	"github.com/erp/warehouse/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const metricsCollectInterval = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting warehouse service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	dbSystem := "sqlite"
	if cfg.Database.Driver == "postgres" {
		dbSystem = "postgresql"
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: dbSystem,
	}, log).Register(db.DB); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)

	// One session state backs the recorder, the undo engine and the tracker
	state := session.NewState()

	warehouseMetrics, err := telemetry.NewWarehouseMetrics(telemetry.WarehouseMetricsConfig{
		Meter:           meterProvider.Meter("warehouse"),
		Logger:          log,
		StockProvider:   telemetry.NewGormStockMetricsProvider(db.DB),
		SessionProvider: state.ChangeCount,
	})
	if err != nil {
		log.Fatal("Failed to initialize warehouse metrics", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		warehouseMetrics.StartPeriodicCollection(ctx, metricsCollectInterval)
	}
	defer warehouseMetrics.Stop()

	journalService := appjournal.NewService(journalRepo, log, appjournal.WithMetrics(warehouseMetrics))
	recorder := appjournal.NewRecorder(journalService, state, log)

	engine := undo.NewEngine(journalService, state, undo.Stores{
		Categories:   categoryRepo,
		Products:     productRepo,
		Suppliers:    supplierRepo,
		Customers:    customerRepo,
		Transactions: transactionRepo,
	}, log, undo.WithMetrics(warehouseMetrics))

	policy, err := appsession.ParseRollbackPolicy(cfg.Session.RollbackPolicy)
	if err != nil {
		log.Fatal("Invalid session configuration", zap.Error(err))
	}
	tracker := appsession.NewTracker(state, journalService, log,
		appsession.WithRollbackPolicy(policy),
		appsession.WithReverter(engine),
		appsession.WithMetrics(warehouseMetrics),
	)

	locker, closeLocker, err := lock.NewFactory(cfg.Lock, cfg.Redis,
		lock.WithLogger(log),
		lock.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to initialize product locker", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing product locker", zap.Error(err))
		}
	}()

	categoryService := appcatalog.NewCategoryService(categoryRepo, productRepo, recorder, log)
	productService := appcatalog.NewProductService(productRepo, categoryRepo, recorder, log)
	supplierService := apppartner.NewSupplierService(supplierRepo, recorder, log)
	customerService := apppartner.NewCustomerService(customerRepo, recorder, log)
	transactionService := appinventory.NewTransactionService(appinventory.TransactionServiceDeps{
		Products:     productRepo,
		Transactions: transactionRepo,
		Suppliers:    supplierRepo,
		Customers:    customerRepo,
		Scope:        persistence.NewGormTransactionScope(db.DB),
		Locker:       locker,
		Recorder:     recorder,
		Logger:       log,
	}, appinventory.WithMetrics(warehouseMetrics))

	if purged, err := journalService.PurgeExpired(ctx, cfg.Journal.RetentionDays); err != nil {
		log.Warn("Journal purge failed", zap.Error(err))
	} else if purged > 0 {
		log.Info("Purged expired journal entries", zap.Int64("count", purged))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engineHTTP := gin.New()
	engineHTTP.Use(logger.GinMiddleware(log), logger.Recovery(log))
	engineHTTP.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	})...)
	engineHTTP.Use(middleware.HTTPMetrics(meterProvider.Meter("http.server"), log))

	router.NewRouter(engineHTTP, router.WithMiddleware(
		middleware.BodyLimit(middleware.DefaultBodyLimit),
		middleware.RequestWarnings(),
	)).
		Register(
			handler.NewHealthHandler(map[string]handler.Pinger{"database": db}),
			handler.NewSessionHandler(tracker, engine),
			handler.NewJournalHandler(journalService),
			handler.NewCategoryHandler(categoryService),
			handler.NewProductHandler(productService, transactionService),
			handler.NewSupplierHandler(supplierService),
			handler.NewCustomerHandler(customerService),
			handler.NewTransactionHandler(transactionService),
		).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engineHTTP,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if cfg.Session.ClearUndoStackOnShutdown {
		if hidden, err := tracker.ClearUndoStack(shutdownCtx); err != nil {
			log.Error("Failed to clear undo stack", zap.Error(err))
		} else {
			log.Info("Undo stack cleared", zap.Int64("hidden", hidden))
		}
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
