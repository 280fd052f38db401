package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pharmatrack/pharmatrack-backend/api/routes"
	"github.com/pharmatrack/pharmatrack-backend/internal/clients"
	"github.com/pharmatrack/pharmatrack-backend/internal/credit"
	"github.com/pharmatrack/pharmatrack-backend/internal/invoices"
	"github.com/pharmatrack/pharmatrack-backend/internal/orders"
	"github.com/pharmatrack/pharmatrack-backend/internal/products"
	"github.com/pharmatrack/pharmatrack-backend/internal/stats"
	"github.com/pharmatrack/pharmatrack-backend/internal/stock"
	"github.com/pharmatrack/pharmatrack-backend/pkg/config"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db"
	"github.com/pharmatrack/pharmatrack-backend/pkg/logger"
	"github.com/pharmatrack/pharmatrack-backend/pkg/metrics"
	"github.com/pharmatrack/pharmatrack-backend/pkg/migrate"
	"github.com/pharmatrack/pharmatrack-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)
	stockLedger := stock.NewLedger(ledgerMetrics)
	creditLedger := credit.NewLedger(ledgerMetrics)

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, dbClient, stockLedger)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	clientRepo := clients.NewRepository(dbClient.DB())
	clientService, err := clients.NewService(clientRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create client service", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orderRepo, dbClient, stockLedger, productRepo, clientRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	invoiceService, err := invoices.NewService(invoices.NewRepository(dbClient.DB()), dbClient, creditLedger, orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(stats.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient,
			productService, clientService, orderService, invoiceService, statsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
