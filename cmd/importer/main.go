package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/db"
	"bookstore/internal/importer"
	"bookstore/internal/logging"
	"bookstore/internal/uow"
	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		currency string
	)
	flag.StringVar(&filePath, "file", "", "Path to the book catalog CSV")
	flag.StringVar(&currency, "currency", "USD", "Currency for rows without one")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	// One transaction: a bad row leaves the catalog untouched.
	start := time.Now()
	count, err := uow.Do(ctx, uow.NewPostgres(pool, logger, uow.Hooks{}), func(ctx context.Context, tx uow.Tx) (int, error) {
		return importer.NewCSVImporter(f, tx.Books(), currency).Run(ctx)
	})
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d books in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
