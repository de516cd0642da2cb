package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// pointNamespace scopes the deterministic point IDs derived from content hashes
var pointNamespace = uuid.MustParse("6f1c5a52-8d0e-4a7b-9a53-3c2b7e9e51d4")

// Payload keys holding lowercased copies used for substring filtering
const (
	payloadPathLower = "file_path_lower"
	payloadNameLower = "file_name_lower"
)

// QdrantStore keeps chunks in a Qdrant collection
type QdrantStore struct {
	config     *config.QdrantConfig
	client     *qdrant.Client
	collection string
	dimensions int
	logger     *zap.Logger
}

// NewQdrantStore creates a new Qdrant client over gRPC
func NewQdrantStore(cfg *config.QdrantConfig, dimensions int, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &QdrantStore{
		config:     cfg,
		client:     client,
		collection: cfg.CollectionName,
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

// Initialize creates the collection if it does not exist
func (s *QdrantStore) Initialize(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		s.logger.Debug("collection already exists", zap.String("collection", s.collection))
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.dimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	s.logger.Info("✓ created qdrant collection", zap.String("collection", s.collection), zap.Int("dimensions", s.dimensions))
	return nil
}

// PointID maps a content hash to its stable Qdrant point ID
func PointID(contentHash string) string {
	return uuid.NewSHA1(pointNamespace, []byte(contentHash)).String()
}

// Exists reports whether the point for contentHash is stored
func (s *QdrantStore) Exists(ctx context.Context, contentHash string) (bool, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(PointID(contentHash))},
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up point: %w", err)
	}
	return len(points) > 0, nil
}

// Insert upserts the record under its deterministic ID. A point that is
// already present is left alone and reported as not inserted; a concurrent
// duplicate rewrites identical data.
func (s *QdrantStore) Insert(ctx context.Context, record models.Record) (bool, error) {
	exists, err := s.Exists(ctx, record.Chunk.ContentHash)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	c := record.Chunk
	payload := map[string]*qdrant.Value{
		"file_path":      qdrant.NewValueString(c.FilePath),
		"file_name":      qdrant.NewValueString(c.FileName),
		"file_extension": qdrant.NewValueString(c.FileExtension),
		"content":        qdrant.NewValueString(c.Content),
		"content_hash":   qdrant.NewValueString(c.ContentHash),
		"language":       qdrant.NewValueString(c.Language),
		"chunk_index":    qdrant.NewValueInt(int64(c.ChunkIndex)),
		"total_chunks":   qdrant.NewValueInt(int64(c.TotalChunks)),
		"token_count":    qdrant.NewValueInt(int64(c.TokenCount)),
		payloadPathLower: qdrant.NewValueString(strings.ToLower(c.FilePath)),
		payloadNameLower: qdrant.NewValueString(strings.ToLower(c.FileName)),
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(PointID(c.ContentHash)),
				Vectors: qdrant.NewVectors(record.Embedding...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert point: %w", err)
	}
	return true, nil
}

// Search performs a cosine similarity search restricted by conditions
func (s *QdrantStore) Search(ctx context.Context, embedding []float32, conditions []models.FilterCondition, limit int) ([]models.CodeChunk, error) {
	limitUint := uint64(normalizeLimit(limit))

	queryPoints := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limitUint,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildQdrantFilter(conditions),
	}

	results, err := s.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	chunks := make([]models.CodeChunk, len(results))
	for i, result := range results {
		payload := result.Payload
		chunks[i] = models.CodeChunk{
			FilePath:      payload["file_path"].GetStringValue(),
			FileName:      payload["file_name"].GetStringValue(),
			FileExtension: payload["file_extension"].GetStringValue(),
			Content:       payload["content"].GetStringValue(),
			ContentHash:   payload["content_hash"].GetStringValue(),
			Language:      payload["language"].GetStringValue(),
			ChunkIndex:    int(payload["chunk_index"].GetIntegerValue()),
			TotalChunks:   int(payload["total_chunks"].GetIntegerValue()),
			TokenCount:    int(payload["token_count"].GetIntegerValue()),
		}
	}

	s.logger.Debug("qdrant search", zap.Int("filters", len(conditions)), zap.Int("results", len(chunks)))
	return chunks, nil
}

// buildQdrantFilter turns the OR-ed filter group into a Should clause over
// the lowercased payload copies. Text match without a full-text index is a
// plain substring match.
func buildQdrantFilter(conditions []models.FilterCondition) *qdrant.Filter {
	if len(conditions) == 0 {
		return nil
	}

	should := make([]*qdrant.Condition, 0, len(conditions))
	for _, cond := range conditions {
		key := payloadNameLower
		if cond.Field == models.FilterFieldPath {
			key = payloadPathLower
		}
		should = append(should, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: key,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Text{
							Text: strings.ToLower(cond.Pattern),
						},
					},
				},
			},
		})
	}

	return &qdrant.Filter{Should: should}
}

// Close closes the Qdrant client connection
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
