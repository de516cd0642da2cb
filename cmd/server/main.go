package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/app"
	"github.com/jamaly87/codebase-qa/internal/logging"
	"github.com/jamaly87/codebase-qa/internal/mcp"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

func main() {
	_ = godotenv.Load()

	// Load configuration first (before setting up logging)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// stdout carries the protocol, so logs stay on stderr or the configured file
	logger, closeLog, err := logging.New(&cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	logger.Info("configuration loaded",
		zap.String("embedding_model", cfg.Embeddings.Model),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("vectordb", cfg.VectorDB.Type))

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up pipeline", zap.Error(err))
	}
	defer a.Close(ctx)

	server := mcp.NewServer(cfg, a.Machine, a.Searcher, a.Indexer, logger)
	if err := server.Start(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
