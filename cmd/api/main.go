package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/api/routes"
	authsvc "github.com/bancadosucesso/storefront-backend/internal/auth"
	"github.com/bancadosucesso/storefront-backend/internal/cart"
	"github.com/bancadosucesso/storefront-backend/internal/categories"
	"github.com/bancadosucesso/storefront-backend/internal/checkout"
	"github.com/bancadosucesso/storefront-backend/internal/notifications"
	"github.com/bancadosucesso/storefront-backend/internal/orders"
	"github.com/bancadosucesso/storefront-backend/internal/products"
	"github.com/bancadosucesso/storefront-backend/internal/salespeople"
	"github.com/bancadosucesso/storefront-backend/internal/users"
	"github.com/bancadosucesso/storefront-backend/pkg/auth/session"
	"github.com/bancadosucesso/storefront-backend/pkg/config"
	"github.com/bancadosucesso/storefront-backend/pkg/db"
	"github.com/bancadosucesso/storefront-backend/pkg/logger"
	"github.com/bancadosucesso/storefront-backend/pkg/metrics"
	"github.com/bancadosucesso/storefront-backend/pkg/migrate"
	"github.com/bancadosucesso/storefront-backend/pkg/outbox"
	"github.com/bancadosucesso/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, false, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	productsRepo := products.NewRepository(dbClient.DB())
	categoriesRepo := categories.NewRepository(dbClient.DB())
	salespeopleRepo := salespeople.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	productService, err := products.NewService(productsRepo)
	if err != nil {
		fatal(logg, "failed to create product service", err)
	}
	categoryService, err := categories.NewService(categoriesRepo)
	if err != nil {
		fatal(logg, "failed to create category service", err)
	}
	salespersonService, err := salespeople.NewService(salespeopleRepo)
	if err != nil {
		fatal(logg, "failed to create salesperson service", err)
	}
	orderService, err := orders.NewService(ordersRepo, dbClient, outboxService)
	if err != nil {
		fatal(logg, "failed to create order service", err)
	}
	authService, err := authsvc.NewService(usersRepo, sessionManager, redisClient, cfg.JWT, cfg.AuthRateLimit, logg)
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}
	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		fatal(logg, "failed to create notification service", err)
	}

	cartPersister, err := cart.NewRedisPersister(redisClient, cfg.Cart.TTL)
	if err != nil {
		fatal(logg, "failed to create cart persister", err)
	}
	cartService, err := cart.NewService(cartPersister, productsRepo, logg)
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}

	verifier, err := checkout.NewVerifier(productsRepo, cfg.Checkout.PriceTolerance, checkoutMetrics)
	if err != nil {
		fatal(logg, "failed to create price verifier", err)
	}
	submitter, err := buildSubmitter(cfg, ordersRepo, salespeopleRepo, dbClient, outboxService)
	if err != nil {
		fatal(logg, "failed to create checkout submitter", err)
	}
	checkoutService, err := checkout.NewService(cartService, verifier, submitter, logg, checkoutMetrics)
	if err != nil {
		fatal(logg, "failed to create checkout service", err)
	}

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Sessions:      sessionManager,
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:          authService,
		Products:      productService,
		Categories:    categoryService,
		Salespeople:   salespersonService,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        orderService,
		Notifications: notificationService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"addr":        addr,
		"fulfillment": cfg.Checkout.Fulfillment,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeout, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeout); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildSubmitter(
	cfg *config.Config,
	ordersRepo *orders.Repository,
	salespeopleRepo *salespeople.Repository,
	dbClient *db.Client,
	outboxService *outbox.Service,
) (checkout.Submitter, error) {
	if cfg.Checkout.Fulfillment == config.FulfillmentWhatsApp {
		return checkout.NewWhatsAppSubmitter(cfg.Checkout)
	}
	return checkout.NewOrderSubmitter(
		func(tx *gorm.DB) checkout.OrdersRepo { return ordersRepo.WithTx(tx) },
		salespeopleRepo,
		dbClient,
		outboxService,
		cfg.Checkout,
	)
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
