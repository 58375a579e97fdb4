package main

import (
	"context"
	"flag"
	"log"

	"bookstore/internal/config"
	"bookstore/internal/db"
	"bookstore/internal/logging"
	"bookstore/internal/migrate"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "Roll back every migration instead of applying them")
	flag.Parse()

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
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if *down {
		if err := migrate.Revert(ctx, pool); err != nil {
			logger.Fatal("revert migrations", zap.Error(err))
		}
		logger.Info("migrations reverted")
		return
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
	logger.Info("migrations applied")
}
