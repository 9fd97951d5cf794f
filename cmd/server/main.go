package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stockpos-system/config"
	"stockpos-system/internal/database"
	"stockpos-system/internal/ledger"
	"stockpos-system/internal/metrics"
	"stockpos-system/internal/receipt"
	"stockpos-system/internal/server/handlers"
	"stockpos-system/internal/server/middleware"
	"stockpos-system/internal/sheets"
	"stockpos-system/internal/update"
	"stockpos-system/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Env,
		ServiceName: "stockpos",
	}); err != nil {
		panic(err)
	}
	log := logger.GetLogger()
	defer log.Sync()

	db, err := database.NewConnection(cfg.DB.Path)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	if redisClient == nil {
		log.Info("redis disabled, caching is off")
	}

	l := ledger.New(db, log)
	printer := receipt.NewPrinter(cfg.Store.ReceiptsDir, cfg.Store.Name)

	var exporter *sheets.Exporter
	if cfg.Sheets.CredentialsFile != "" && cfg.Sheets.SpreadsheetID != "" {
		exporter = sheets.NewExporter(db, cfg.Sheets.CredentialsFile,
			cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, log)
	}

	var checker *update.Checker
	if cfg.Update.FeedURL != "" {
		checker = update.NewChecker(cfg.Update.FeedURL, cfg.Update.CurrentVersion,
			cfg.Update.StagingDir, cfg.Update.HandoffScript, log)
	}

	authHandler := handlers.NewAuthHandler([]byte(cfg.JWTSecret), cfg.Auth)
	catalogHandler := handlers.NewCatalogHandler(db, redisClient)
	stockHandler := handlers.NewStockHandler(db, redisClient, l, cfg.Store.LowStockThreshold)
	orderHandler := handlers.NewOrderHandler(db, redisClient, l)
	salesHandler := handlers.NewSalesHandler(l, redisClient, printer, log)
	systemHandler := handlers.NewSystemHandler(exporter, checker, cfg.Update.CurrentVersion)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpMetrics := metrics.NewHTTPMetrics("stockpos")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(logger.Middleware())
	r.Use(httpMetrics.Middleware())
	r.Use(middleware.RateLimit(cfg.Limiter.Rate))

	r.GET("/health", systemHandler.Health)
	r.GET("/metrics", metrics.Handler())

	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth([]byte(cfg.JWTSecret)))
	{
		products := protected.Group("/products")
		{
			products.POST("", catalogHandler.SaveProduct)
			products.GET("", catalogHandler.ListProducts)
			products.GET("/barcode/:code", catalogHandler.GetProductByBarcode)
			products.DELETE("/:id", catalogHandler.DeleteProduct)
		}

		stock := protected.Group("/stock")
		{
			stock.GET("", stockHandler.ListStock)
			stock.POST("/receive", stockHandler.ReceiveStock)
			stock.POST("/reconcile", stockHandler.Reconcile)
			stock.DELETE("/:id", stockHandler.DeleteStockEntry)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.POST("/import", orderHandler.ImportOrders)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/summary", orderHandler.StatusSummary)
			orders.PUT("/:id/tracking", orderHandler.UpdateTracking)
			orders.PUT("/:id/status", orderHandler.SetStatus)
			orders.POST("/refresh", orderHandler.RefreshStatuses)
			orders.POST("/hide-delivered", orderHandler.HideDelivered)
		}

		sales := protected.Group("/sales")
		{
			sales.POST("/quote", salesHandler.QuoteLine)
			sales.POST("/commit", salesHandler.CommitSale)
			sales.GET("", salesHandler.ListSales)
			sales.GET("/daily-total", salesHandler.DailyTotal)
		}

		system := protected.Group("/system")
		{
			system.POST("/export-orders", systemHandler.ExportOrders)
			system.GET("/update/check", systemHandler.CheckUpdate)
			system.POST("/update/stage", systemHandler.StageUpdate)
			system.POST("/update/apply", systemHandler.ApplyUpdate)
		}
	}

	go runSweep(l, cfg.SweepInterval, log)

	log.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("db", cfg.DB.Path))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// runSweep periodically refreshes order statuses and folds delivered orders
// into stock, so the ledger stays current without operator action.
func runSweep(l *ledger.Ledger, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		if _, err := l.RefreshOrderStatuses(now); err != nil {
			log.Warn("status sweep failed", zap.Error(err))
		}

		result, err := l.ReconcileDeliveredOrders(now)
		if err != nil {
			log.Warn("reconcile sweep failed", zap.Error(err))
			continue
		}
		if result.OrdersProcessed > 0 {
			metrics.OrdersReconciledCounter.Add(float64(result.OrdersProcessed))
		}
	}
}
