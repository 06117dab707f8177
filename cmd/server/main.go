package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/seamark/curio/internal"
	"github.com/seamark/curio/internal/billing"
	"github.com/seamark/curio/internal/cms"
	"github.com/seamark/curio/internal/email"
	"github.com/seamark/curio/internal/events"
	"github.com/seamark/curio/internal/handler/storefront"
	"github.com/seamark/curio/internal/handler/webhook"
	"github.com/seamark/curio/internal/middleware"
	"github.com/seamark/curio/internal/router"
	"github.com/seamark/curio/internal/routes"
	"github.com/seamark/curio/internal/service"
	"github.com/seamark/curio/internal/storage"
	"github.com/seamark/curio/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Postgres is only needed when it backs the order store
	var pool *pgxpool.Pool
	if cfg.Orders.Provider == "postgres" {
		logger.Info("Connecting to database...")
		sqlDB, err := sql.Open("pgx", cfg.Orders.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer sqlDB.Close()

		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		logger.Info("Database connection established")

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		pool, err = pgxpool.New(ctx, cfg.Orders.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()
	}

	// CMS client serves the product catalog and pages in both modes
	cmsClient := cms.NewClient(cfg.Cosmic.BucketSlug, cfg.Cosmic.ReadKey, cfg.Cosmic.WriteKey)

	orderStore, err := storage.NewOrderStore(ctx, cfg, pool, cmsClient)
	if err != nil {
		return fmt.Errorf("failed to initialize order store: %w", err)
	}
	logger.Info("Order store initialized", "provider", cfg.Orders.Provider)

	// Initialize Stripe billing provider
	logger.Info("Initializing Stripe billing provider...")
	billingProvider, err := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized")

	// Event publisher is optional; without NATS order events are dropped
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS publisher connected", "url", cfg.NatsURL)
	}

	// Contact form relay; without an API key sends fail with a clear error
	var emailSender email.Sender = email.Disabled{}
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey)
		logger.Info("Email sender configured", "provider", "resend")
	}

	businessMetrics := telemetry.NewBusinessMetrics("curio")

	checkoutService := service.NewCheckoutService(
		billingProvider,
		orderStore,
		publisher,
		businessMetrics,
		logger,
		cfg.BaseURL,
	)

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	storefrontDeps := routes.StorefrontDeps{
		CartHandler:     storefront.NewCartHandler(businessMetrics, logger),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService, logger),
		OrdersHandler:   storefront.NewOrdersHandler(checkoutService),
		ProductsHandler: storefront.NewProductsHandler(cmsClient),
		ContactHandler:  storefront.NewContactHandler(emailSender, cfg.Email.From, cfg.Email.ContactEmail, logger),
	}

	webhookDeps := routes.WebhookDeps{
		StripeHandler: webhook.NewStripeHandler(billingProvider, checkoutService, businessMetrics, logger),
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	metrics := middleware.NewMetrics("curio")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS(cfg.CORSOrigins),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
