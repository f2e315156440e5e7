package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	cartapp "github.com/tasoula/intershop-sub000/internal/cart/app"
	cartpg "github.com/tasoula/intershop-sub000/internal/cart/infra/postgres"
	cartredis "github.com/tasoula/intershop-sub000/internal/cart/infra/redis"

	catalogapp "github.com/tasoula/intershop-sub000/internal/catalog/app"
	catalogpg "github.com/tasoula/intershop-sub000/internal/catalog/infra/postgres"

	orderapp "github.com/tasoula/intershop-sub000/internal/order/app"
	orderpg "github.com/tasoula/intershop-sub000/internal/order/infra/postgres"

	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
	checkoutadapter "github.com/tasoula/intershop-sub000/internal/checkout/infra/adapter"
	"github.com/tasoula/intershop-sub000/internal/checkout/infra/payhttp"

	"github.com/tasoula/intershop-sub000/internal/shophttp"
	"github.com/tasoula/intershop-sub000/migrations"
	"github.com/tasoula/intershop-sub000/pkg/config"
	"github.com/tasoula/intershop-sub000/pkg/logger"
	"github.com/tasoula/intershop-sub000/pkg/metrics"
	"github.com/tasoula/intershop-sub000/pkg/postgres"
	"github.com/tasoula/intershop-sub000/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadShop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Service: "shop", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := postgres.Migrate(cfg.DatabaseURL, migrations.Shop, "shop"); err != nil {
		log.Error("migrations failed", slog.Any("err", err))
		os.Exit(1)
	}

	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Catalog
	catalogRepo := catalogpg.NewProductRepo(pool)
	catalogSvc := catalogapp.NewService(catalogRepo)

	// Cart
	var cartRepo cartapp.CartRepo
	switch cfg.CartBackend {
	case "redis":
		cartRepo = cartredis.NewCartRepo(goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}))
	default:
		cartRepo = cartpg.NewCartRepo(pool)
	}
	cartSvc := cartapp.NewService(cartRepo)

	// Orders
	orderRepo := orderpg.NewOrderRepo(pool)
	orderSvc := orderapp.NewService(orderRepo)

	// Checkout (adapters + payment boundary)
	payments := payhttp.NewClient(cfg.BalanceURL, time.Duration(cfg.BalanceTimeout)*time.Second)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceStore(cartSvc),
		checkoutadapter.NewProductServiceStore(catalogSvc),
		checkoutadapter.NewOrderRepoStore(orderRepo),
		payments,
		log,
		cfg.CheckoutConcurrency,
	)

	m := metrics.NewServerMetrics("shop")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", metrics.Handler())
	shophttp.NewHandler(catalogSvc, cartSvc, orderSvc, checkoutSvc, payments, log, m).Register(mux)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
