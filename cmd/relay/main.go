package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"bookstore/internal/config"
	"bookstore/internal/db"
	"bookstore/internal/logging"
	"bookstore/internal/metrics"
	"bookstore/internal/relay"
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

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required for the relay")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	m := metrics.New()
	writer := relay.NewKafkaWriter(brokers, cfg.KafkaTopic)
	defer writer.Close()

	r := relay.New(uow.NewPostgres(pool, logger, m.TxHooks()), writer, cfg.RelayBatchSize, logger, m)
	logger.Info("relay started", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	if err := r.Run(ctx, cfg.RelayInterval()); err != nil {
		logger.Error("relay stopped", zap.Error(err))
	}
	logger.Info("relay stopped")
}
