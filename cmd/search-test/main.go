package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/app"
	"github.com/jamaly87/codebase-qa/internal/logging"
	"github.com/jamaly87/codebase-qa/internal/search"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

func main() {
	query := flag.String("query", "", "Search query")
	limit := flag.Int("limit", 0, "Maximum number of results (default from config)")
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	if *query == "" {
		*query = "where is the database connection opened"
	}

	cfg, err := config.LoadPath(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := logging.New(&cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up pipeline", zap.Error(err))
	}
	defer a.Close(ctx)

	processed := search.Preprocess(*query)
	logger.Info("starting search",
		zap.String("query", processed.Cleaned),
		zap.Strings("file_filters", processed.FileFilters))

	start := time.Now()
	chunks, err := a.Searcher.Search(ctx, *query, *limit)
	if err != nil {
		logger.Fatal("search failed", zap.Error(err))
	}

	logger.Info("search completed", zap.Duration("duration", time.Since(start)), zap.Int("results_found", len(chunks)))

	fmt.Println("Retrieved context:")
	fmt.Println(search.FormatContext(chunks))
}
