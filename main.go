package main

import (
	"time"

	"github.com/fenilmodi00/counsel-backend/config"
	"github.com/fenilmodi00/counsel-backend/database"
	"github.com/fenilmodi00/counsel-backend/handlers"
	"github.com/fenilmodi00/counsel-backend/jobs"
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// idle view state and cached predictions are forgotten after this long
const viewStateIdleTimeout = 2 * time.Hour

func main() {
	// Load config
	cfg := config.LoadConfig()
	unified := cfg.Unified()
	unified.ConfigureLogging()

	registry := shared.NewMetricsRegistry()
	clientFactory := shared.NewHTTPClientFactory(unified.Upstream.HTTPRequestTimeout)
	defer clientFactory.CleanupAllClients()

	upstream := services.NewUpstreamClient(unified.Upstream, clientFactory, registry.Register("Upstream_Client"))

	var (
		products services.ProductCatalog = services.NewStaticCatalog(services.ParseProductCatalog(cfg.ProductCatalog))
		coupons  services.CouponCatalog
		logStore services.PaymentLogStore = services.NewMemoryPaymentLogStore()
	)

	// Postgres is optional; without it coupons are validated upstream
	if cfg.DatabaseURL != "" {
		if err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database); err != nil {
			logrus.WithError(err).Warn("Database unavailable, running upstream-only")
		} else {
			defer database.Close()
			if err := database.Migrate(); err != nil {
				logrus.WithError(err).Fatal("Database migration failed")
			}
			products = database.NewProductRepo(database.DB)
			coupons = database.NewCouponRepo(database.DB)
			logStore = database.NewPaymentLogRepo(database.DB)
		}
	}
	if database.DB == nil && cfg.PaymentLogPath != "" {
		boltLog, err := database.OpenBoltPaymentLogStore(cfg.PaymentLogPath)
		if err != nil {
			logrus.WithError(err).Warn("Payment log file unavailable, keeping audit entries in memory")
		} else {
			defer boltLog.Close()
			logStore = boltLog
		}
	}

	cacheService := services.NewCacheService(unified.Cache)
	content := services.NewCachedContentService(upstream, cacheService)
	accounts := services.NewAccountStore()
	views := services.NewViewStateStore()
	entitlements := services.NewEntitlementService(products, accounts, upstream)
	text := services.NewUtilityService(registry.Register("Utility_Service"))

	examService := services.NewExamService(content, entitlements, views, text, registry.Register("Exam_Service"))
	predictionService := services.NewPredictionService(upstream, entitlements, views, registry.Register("Prediction_Service"))
	searchCoordinator := services.NewSearchCoordinator(
		content,
		shared.NewDebouncer(unified.Search.Debounce),
		shared.NewRequestSequencer(),
		registry.Register("Search_Coordinator"),
	)
	couponService := services.NewCouponService(coupons, products, upstream, registry.Register("Coupon_Service"))
	paymentService := services.NewPaymentService(
		upstream,
		products,
		couponService,
		accounts,
		services.NewPaymentAuditLogger(logStore),
		unified.Payment,
		registry.Register("Payment_Service"),
	)

	logrus.WithFields(logrus.Fields{
		"upstream":         unified.Upstream.BaseURL,
		"cache_ttl":        unified.Cache.DefaultTTL,
		"search_debounce":  unified.Search.Debounce,
		"checkout_timeout": unified.Payment.CheckoutTimeout,
		"database":         database.DB != nil,
		"local_coupons":    coupons != nil,
	}).Info("Counsel gateway services initialized")

	// Background jobs
	stop := make(chan struct{})
	defer close(stop)
	jobs.NewCacheCleanupJob(cacheService, views, predictionService, viewStateIdleTimeout).Start(unified.Cache.DefaultTTL, stop)
	jobs.NewCheckoutReaperJob(paymentService).Start(time.Minute, stop)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes := &handlers.Handlers{
		Exams:       handlers.NewExamHandler(examService, searchCoordinator),
		Predictions: handlers.NewPredictionHandler(predictionService),
		Payments:    handlers.NewPaymentHandler(paymentService, couponService),
		Accounts:    handlers.NewAccountHandler(accounts, entitlements, upstream),
		Metrics:     handlers.NewMetricsHandler(registry, cacheService, content, upstream),
	}
	routes.Register(app)

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
