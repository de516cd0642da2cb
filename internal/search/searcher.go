package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// DefaultLimit is used when neither the caller nor the config sets one
const DefaultLimit = 5

// QueryEmbedder turns a search query into a vector
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher runs a similarity search over stored chunks
type ChunkSearcher interface {
	Search(ctx context.Context, embedding []float32, conditions []models.FilterCondition, limit int) ([]models.CodeChunk, error)
}

// Searcher performs semantic search over the ingested codebase
type Searcher struct {
	config   *config.SearchConfig
	embedder QueryEmbedder
	store    ChunkSearcher
	logger   *zap.Logger
}

// NewSearcher creates a new searcher
func NewSearcher(cfg *config.SearchConfig, embedder QueryEmbedder, store ChunkSearcher, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		config:   cfg,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Search preprocesses raw, embeds the cleaned text and returns the nearest
// chunks, restricted to mentioned files when the query names any.
// A query that is empty after cleaning returns models.ErrEmptyQuery
// without calling the embedder.
func (s *Searcher) Search(ctx context.Context, raw string, limit int) ([]models.CodeChunk, error) {
	query := Preprocess(raw)
	if query.Cleaned == "" {
		return nil, models.ErrEmptyQuery
	}

	if limit <= 0 {
		limit = s.defaultLimit()
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query.Cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %v", models.ErrRetrievalFailed, err)
	}

	conditions := BuildFilterConditions(query.FileFilters)
	chunks, err := s.store.Search(ctx, embedding, conditions, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRetrievalFailed, err)
	}

	s.logger.Debug("search complete",
		zap.String("query", query.Cleaned),
		zap.Strings("file_filters", query.FileFilters),
		zap.Int("results", len(chunks)))

	return chunks, nil
}

func (s *Searcher) defaultLimit() int {
	if s.config != nil && s.config.MaxResults > 0 {
		return s.config.MaxResults
	}
	return DefaultLimit
}
