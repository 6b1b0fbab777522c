package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"storefront/internal/config"
	"storefront/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC)

	ctx := context.Background()
	pg, err := storage.NewPostgres(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer pg.Close()

	if err := storage.Migrate(ctx, pg.Pool()); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	logger.Printf("kv_store schema up to date")
}
