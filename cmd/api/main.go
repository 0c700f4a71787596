package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/farmdirect/farmdirect-backend/api/controllers"
	"github.com/farmdirect/farmdirect-backend/api/routes"
	addresssvc "github.com/farmdirect/farmdirect-backend/internal/address"
	cartsvc "github.com/farmdirect/farmdirect-backend/internal/cart"
	"github.com/farmdirect/farmdirect-backend/internal/catalog"
	checkoutsvc "github.com/farmdirect/farmdirect-backend/internal/checkout"
	orderssvc "github.com/farmdirect/farmdirect-backend/internal/orders"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/farmdirect/farmdirect-backend/pkg/metrics"
	"github.com/farmdirect/farmdirect-backend/pkg/migrate"
	"github.com/farmdirect/farmdirect-backend/pkg/redis"
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

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartRepository := cartsvc.NewRepository(conn)
	cartService, err := cartsvc.NewService(cartRepository, catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	addressService, err := addresssvc.NewService(addresssvc.NewRepository(conn), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	ordersRepository := orderssvc.NewRepository(conn)
	ordersService, err := orderssvc.NewService(ordersRepository, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		cartRepository,
		catalogRepo,
		ordersRepository,
		addressService,
		dbClient,
		cfg.Checkout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	deps := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
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
		Handler: routes.NewRouter(cfg, logg, deps, redisClient, httpMetrics, routes.Services{
			Catalog:  catalogService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   ordersService,
			Address:  addressService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
