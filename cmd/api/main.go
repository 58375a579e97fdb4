package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/config"
	"bookstore/internal/db"
	"bookstore/internal/httpserver"
	"bookstore/internal/logging"
	"bookstore/internal/metrics"
	"bookstore/internal/repository/memory"
	"bookstore/internal/seed"
	booksvc "bookstore/internal/service/book"
	cartsvc "bookstore/internal/service/cart"
	customersvc "bookstore/internal/service/customer"
	ordersvc "bookstore/internal/service/order"
	"bookstore/internal/uow"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	m := metrics.New()

	var (
		runner uow.Runner
		ready  func(context.Context) error
	)
	switch cfg.StoreDriver {
	case "memory":
		runner = uow.NewMemory(memory.NewStore(), m.TxHooks())
		if err := seed.Apply(ctx, runner); err != nil {
			logger.Fatal("seed memory store", zap.Error(err))
		}
		logger.Warn("using in-memory store; data is lost on exit")
	default:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
		runner = uow.NewPostgres(pool, logger, m.TxHooks())
		ready = pool.Ping
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Runner:       runner,
		CartSvc:      cartsvc.New(logger),
		OrderSvc:     ordersvc.New(logger),
		BookSvc:      booksvc.New(),
		CustomerSvc:  customersvc.New(),
		Metrics:      m,
		Ready:        ready,
		AllowOrigins: cfg.AllowOrigins(),
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
