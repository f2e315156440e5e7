package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	balanceapp "github.com/tasoula/intershop-sub000/internal/balance/app"
	"github.com/tasoula/intershop-sub000/internal/balance/httpapi"
	balancepg "github.com/tasoula/intershop-sub000/internal/balance/infra/postgres"
	"github.com/tasoula/intershop-sub000/migrations"
	"github.com/tasoula/intershop-sub000/pkg/config"
	"github.com/tasoula/intershop-sub000/pkg/logger"
	"github.com/tasoula/intershop-sub000/pkg/metrics"
	"github.com/tasoula/intershop-sub000/pkg/postgres"
	"github.com/tasoula/intershop-sub000/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadBalance()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Service: "balance", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := postgres.Migrate(cfg.DatabaseURL, migrations.Balance, "balance"); err != nil {
		log.Error("migrations failed", slog.Any("err", err))
		os.Exit(1)
	}

	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Close()

	repo := balancepg.NewBalanceRepo(pool)
	svc := balanceapp.NewService(repo, cfg.StartingAmount())

	m := metrics.NewServerMetrics("balance")

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
	httpapi.NewHandler(svc, log, m).Register(mux)

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
