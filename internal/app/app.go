// Package app wires configuration into the ingestion and question
// answering pipeline shared by every entry point.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/agent"
	"github.com/jamaly87/codebase-qa/internal/embeddings"
	"github.com/jamaly87/codebase-qa/internal/guardrail"
	"github.com/jamaly87/codebase-qa/internal/indexer"
	"github.com/jamaly87/codebase-qa/internal/llm"
	"github.com/jamaly87/codebase-qa/internal/search"
	"github.com/jamaly87/codebase-qa/internal/telemetry"
	"github.com/jamaly87/codebase-qa/internal/vectordb"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// App holds the constructed pipeline components
type App struct {
	Config   *config.Config
	Store    vectordb.Store
	Indexer  *indexer.Indexer
	Searcher *search.Searcher
	Machine  *agent.Machine

	shutdownTelemetry func(context.Context) error
	logger            *zap.Logger
}

// New validates credentials, opens the store and builds the pipeline.
// Any failure here is a setup failure and should end the process.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewClient(&cfg.Embeddings, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}

	generator, err := llm.NewClient(&cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	tokens, err := indexer.NewTiktokenCounter()
	if err != nil {
		return nil, err
	}

	store, err := vectordb.New(ctx, &cfg.VectorDB, cfg.Embeddings.Dimensions, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	recorder, shutdown, err := telemetry.Setup(ctx, &cfg.Telemetry, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	chunker := indexer.NewChunker(tokens, logger)
	searcher := search.NewSearcher(&cfg.Search, embedder, store, logger)
	machine := agent.NewMachine(
		guardrail.NewClassifier(cfg.UnsupportedQueryMessage()),
		searcher,
		generator,
		recorder,
		cfg.UnsupportedQueryMessage(),
		logger,
	)

	return &App{
		Config:            cfg,
		Store:             store,
		Indexer:           indexer.NewIndexer(cfg, chunker, embedder, store, logger),
		Searcher:          searcher,
		Machine:           machine,
		shutdownTelemetry: shutdown,
		logger:            logger,
	}, nil
}

// Close flushes telemetry and releases the store
func (a *App) Close(ctx context.Context) error {
	if err := a.shutdownTelemetry(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
	return a.Store.Close()
}
