package vectordb

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// DefaultLimit is the number of chunks returned when the caller passes a non-positive limit
const DefaultLimit = 5

// Store persists embedded chunks and answers nearest-neighbour queries.
// Insert must be atomic per content hash: it returns false, without error,
// when a record with the same hash already exists.
type Store interface {
	Initialize(ctx context.Context) error
	Exists(ctx context.Context, contentHash string) (bool, error)
	Insert(ctx context.Context, record models.Record) (bool, error)
	Search(ctx context.Context, embedding []float32, conditions []models.FilterCondition, limit int) ([]models.CodeChunk, error)
	Close() error
}

// New opens the store selected by cfg.Type and bootstraps its schema
func New(ctx context.Context, cfg *config.VectorDBConfig, dimensions int, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store Store
		err   error
	)
	switch strings.ToLower(cfg.Type) {
	case "", "postgres", "pgvector":
		store, err = NewPostgresStore(ctx, &cfg.Postgres, dimensions, logger)
	case "qdrant":
		store, err = NewQdrantStore(&cfg.Qdrant, dimensions, logger)
	case "embedded", "chromem":
		store, err = NewEmbeddedStore(&cfg.Embedded, logger)
	default:
		return nil, fmt.Errorf("unsupported vectordb type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Type, err)
	}
	return store, nil
}

// matchesConditions reports whether a chunk satisfies an OR-ed filter group.
// An empty group matches everything.
func matchesConditions(chunk models.CodeChunk, conditions []models.FilterCondition) bool {
	if len(conditions) == 0 {
		return true
	}
	for _, cond := range conditions {
		value := chunk.FileName
		if cond.Field == models.FilterFieldPath {
			value = chunk.FilePath
		}
		if strings.Contains(strings.ToLower(value), strings.ToLower(cond.Pattern)) {
			return true
		}
	}
	return false
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
