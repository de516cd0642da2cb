package vectordb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// PostgresStore keeps chunks in a pgvector-enabled Postgres table
type PostgresStore struct {
	pool       *pgxpool.Pool
	table      string // sanitized identifier
	dimensions int
	logger     *zap.Logger
}

// NewPostgresStore connects to Postgres and verifies the connection
func NewPostgresStore(ctx context.Context, cfg *config.PostgresConfig, dimensions int, logger *zap.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "code_embeddings"
	}

	logger.Info("✓ connected to postgres", zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("table", table))

	return &PostgresStore{
		pool:       pool,
		table:      pgx.Identifier{table}.Sanitize(),
		dimensions: dimensions,
		logger:     logger,
	}, nil
}

// Initialize creates the vector extension, table and indexes if missing
func (s *PostgresStore) Initialize(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			file_path TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_extension TEXT NOT NULL,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL UNIQUE,
			language TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			total_chunks INTEGER NOT NULL,
			embedding vector(%d) NOT NULL,
			token_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.table, s.dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (file_path)`,
			pgx.Identifier{s.indexName("file_path")}.Sanitize(), s.table),
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) indexName(column string) string {
	return strings.Trim(s.table, `"`) + "_" + column + "_idx"
}

// Exists reports whether a chunk with the given hash is stored
func (s *PostgresStore) Exists(ctx context.Context, contentHash string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE content_hash = $1`, s.table),
		contentHash,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up chunk: %w", err)
	}
	return true, nil
}

// Insert stores the record unless its hash is already present. The unique
// constraint on content_hash makes this safe under concurrent writers.
func (s *PostgresStore) Insert(ctx context.Context, record models.Record) (bool, error) {
	c := record.Chunk
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (
			file_path, file_name, file_extension, content, content_hash,
			language, chunk_index, total_chunks, embedding, token_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (content_hash) DO NOTHING`, s.table),
		c.FilePath, c.FileName, c.FileExtension, c.Content, c.ContentHash,
		c.Language, c.ChunkIndex, c.TotalChunks, pgvector.NewVector(record.Embedding), c.TokenCount,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert chunk: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Search returns the chunks nearest to embedding by cosine distance
func (s *PostgresStore) Search(ctx context.Context, embedding []float32, conditions []models.FilterCondition, limit int) ([]models.CodeChunk, error) {
	query, args := buildSearchQuery(s.table, embedding, conditions, normalizeLimit(limit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.CodeChunk
	for rows.Next() {
		var c models.CodeChunk
		if err := rows.Scan(
			&c.FilePath, &c.FileName, &c.FileExtension, &c.Content, &c.ContentHash,
			&c.Language, &c.ChunkIndex, &c.TotalChunks, &c.TokenCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}

	s.logger.Debug("postgres search", zap.Int("filters", len(conditions)), zap.Int("results", len(chunks)))
	return chunks, nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// buildSearchQuery composes the similarity query. Filter conditions become
// one parenthesized OR group AND-ed onto the base predicate, with every
// pattern bound as a parameter.
func buildSearchQuery(table string, embedding []float32, conditions []models.FilterCondition, limit int) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(conditions)+2)

	fmt.Fprintf(&sb, `SELECT file_path, file_name, file_extension, content, content_hash,
		language, chunk_index, total_chunks, token_count
	FROM %s
	WHERE 1=1`, table)

	if clause, clauseArgs := buildFilterClause(conditions, 1); clause != "" {
		sb.WriteString(" AND ")
		sb.WriteString(clause)
		args = append(args, clauseArgs...)
	}

	args = append(args, pgvector.NewVector(embedding))
	fmt.Fprintf(&sb, "\n\tORDER BY embedding <=> $%d", len(args))
	args = append(args, limit)
	fmt.Fprintf(&sb, "\n\tLIMIT $%d", len(args))

	return sb.String(), args
}

// buildFilterClause renders conditions as "(col ILIKE $n OR ...)" with
// placeholders numbered from firstParam
func buildFilterClause(conditions []models.FilterCondition, firstParam int) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(conditions))
	args := make([]any, 0, len(conditions))
	for i, cond := range conditions {
		column := "file_name"
		if cond.Field == models.FilterFieldPath {
			column = "file_path"
		}
		parts = append(parts, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, column, firstParam+i))
		args = append(args, "%"+escapeLike(cond.Pattern)+"%")
	}

	return "(" + strings.Join(parts, " OR ") + ")", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
