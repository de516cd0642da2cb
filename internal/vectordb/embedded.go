package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// errPrecomputedOnly is returned if chromem ever asks for an embedding;
// every document and query arrives with its vector already computed.
var errPrecomputedOnly = errors.New("embedded store accepts precomputed embeddings only")

// EmbeddedStore keeps chunks in an in-process chromem-go collection,
// optionally persisted to disk
type EmbeddedStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	mu         sync.Mutex // serializes check-and-add in Insert
	logger     *zap.Logger
}

// NewEmbeddedStore opens a persistent store at cfg.Path, or an in-memory
// one when the path is empty
func NewEmbeddedStore(cfg *config.EmbeddedConfig, logger *zap.Logger) (*EmbeddedStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded store: %w", err)
		}
	}

	name := cfg.CollectionName
	if name == "" {
		name = "code_embeddings"
	}

	return &EmbeddedStore{db: db, name: name, logger: logger}, nil
}

// Initialize creates or loads the collection
func (s *EmbeddedStore) Initialize(ctx context.Context) error {
	collection, err := s.db.GetOrCreateCollection(s.name, nil, precomputedOnly)
	if err != nil {
		return fmt.Errorf("failed to open collection %s: %w", s.name, err)
	}
	s.collection = collection
	s.logger.Debug("embedded collection ready", zap.String("collection", s.name), zap.Int("documents", collection.Count()))
	return nil
}

func precomputedOnly(context.Context, string) ([]float32, error) {
	return nil, errPrecomputedOnly
}

// Exists reports whether a chunk with the given hash is stored
func (s *EmbeddedStore) Exists(ctx context.Context, contentHash string) (bool, error) {
	if contentHash == "" {
		return false, errors.New("content hash is empty")
	}
	_, err := s.collection.GetByID(ctx, contentHash)
	if err == nil {
		return true, nil
	}
	// chromem has no sentinel for a missing ID
	if strings.Contains(err.Error(), "not found") {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up %s: %w", contentHash, err)
}

// Insert adds the record unless its hash is already present
func (s *EmbeddedStore) Insert(ctx context.Context, record models.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.Exists(ctx, record.Chunk.ContentHash)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	c := record.Chunk
	err = s.collection.AddDocument(ctx, chromem.Document{
		ID:        c.ContentHash,
		Content:   c.Content,
		Embedding: record.Embedding,
		Metadata: map[string]string{
			"file_path":      c.FilePath,
			"file_name":      c.FileName,
			"file_extension": c.FileExtension,
			"language":       c.Language,
			"chunk_index":    strconv.Itoa(c.ChunkIndex),
			"total_chunks":   strconv.Itoa(c.TotalChunks),
			"token_count":    strconv.Itoa(c.TokenCount),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to add document: %w", err)
	}
	return true, nil
}

// Search ranks documents by cosine similarity. With filters present the
// whole collection is ranked first and filtered afterwards so that matches
// outside the unfiltered top-k are still found.
func (s *EmbeddedStore) Search(ctx context.Context, embedding []float32, conditions []models.FilterCondition, limit int) ([]models.CodeChunk, error) {
	limit = normalizeLimit(limit)

	count := s.collection.Count()
	if count == 0 {
		return []models.CodeChunk{}, nil
	}

	k := limit
	if len(conditions) > 0 || k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", s.name, err)
	}

	chunks := make([]models.CodeChunk, 0, limit)
	for _, r := range results {
		chunk := chunkFromResult(r)
		if !matchesConditions(chunk, conditions) {
			continue
		}
		chunks = append(chunks, chunk)
		if len(chunks) == limit {
			break
		}
	}

	s.logger.Debug("embedded search", zap.Int("filters", len(conditions)), zap.Int("results", len(chunks)))
	return chunks, nil
}

func chunkFromResult(r chromem.Result) models.CodeChunk {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(r.Metadata[key])
		return n
	}
	return models.CodeChunk{
		FilePath:      r.Metadata["file_path"],
		FileName:      r.Metadata["file_name"],
		FileExtension: r.Metadata["file_extension"],
		Language:      r.Metadata["language"],
		ChunkIndex:    atoi("chunk_index"),
		TotalChunks:   atoi("total_chunks"),
		TokenCount:    atoi("token_count"),
		Content:       r.Content,
		ContentHash:   r.ID,
	}
}

// Close is a no-op; persistent collections are written on every add
func (s *EmbeddedStore) Close() error {
	return nil
}
