package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// DocumentEmbedder produces one vector per input text, in order
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore persists chunk records keyed by content hash.
// Insert reports false when a record with the same hash already exists.
type ChunkStore interface {
	Exists(ctx context.Context, contentHash string) (bool, error)
	Insert(ctx context.Context, record models.Record) (bool, error)
}

// Indexer walks a repository and ingests its Python files into a ChunkStore
type Indexer struct {
	config   *config.IndexingConfig
	scanner  *Scanner
	chunker  *Chunker
	embedder DocumentEmbedder
	store    ChunkStore
	logger   *zap.Logger
}

// NewIndexer creates a new ingestion coordinator
func NewIndexer(cfg *config.Config, chunker *Chunker, embedder DocumentEmbedder, store ChunkStore, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		config:   &cfg.Indexing,
		scanner:  NewScanner(&cfg.Indexing, cfg.Ignore.Patterns),
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Ingest chunks, embeds and stores every eligible file under repoRoot.
// Re-running on an unchanged tree inserts nothing and reports every chunk
// as skipped. Embedding or store failures abort the run.
func (idx *Indexer) Ingest(ctx context.Context, repoRoot string) (*models.IngestStats, error) {
	start := time.Now()

	scanResult, err := idx.scanner.Scan(repoRoot)
	if err != nil {
		return nil, err
	}
	for _, scanErr := range scanResult.Errors {
		idx.logger.Warn("scan error", zap.Error(scanErr))
	}

	idx.logger.Info("starting ingestion",
		zap.String("repository", repoRoot),
		zap.Int("files", len(scanResult.Files)))

	var (
		processed, inserted, skipped, failed int64
		firstErr                             error
		errOnce                              sync.Once
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := idx.config.ParallelWorkers
	if numWorkers <= 0 {
		numWorkers = 4
	}

	fileChan := make(chan SourceFile, len(scanResult.Files))
	for _, f := range scanResult.Files {
		fileChan <- f
	}
	close(fileChan)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for file := range fileChan {
				if ctx.Err() != nil {
					return
				}

				ins, skip, err := idx.ingestFile(ctx, file)
				if err != nil {
					if errors.Is(err, errUnreadable) {
						idx.logger.Warn("skipping unreadable file", zap.String("file", file.RelPath), zap.Error(err))
						atomic.AddInt64(&failed, 1)
						continue
					}
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}

				atomic.AddInt64(&inserted, int64(ins))
				atomic.AddInt64(&skipped, int64(skip))
				current := atomic.AddInt64(&processed, 1)

				idx.logger.Debug("file ingested",
					zap.Int("worker", workerID),
					zap.String("file", file.RelPath),
					zap.Int("inserted", ins),
					zap.Int("skipped", skip))

				if current%50 == 0 {
					idx.logger.Info("progress",
						zap.Int64("files", current),
						zap.Int("total", len(scanResult.Files)))
				}
			}
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &models.IngestStats{
		FilesProcessed: int(processed),
		ChunksInserted: int(inserted),
		ChunksSkipped:  int(skipped),
		FilesFailed:    int(failed),
		Duration:       time.Since(start),
	}

	idx.logger.Info("✓ ingestion complete",
		zap.Int("files_processed", stats.FilesProcessed),
		zap.Int("chunks_inserted", stats.ChunksInserted),
		zap.Int("chunks_skipped", stats.ChunksSkipped),
		zap.Int("files_failed", stats.FilesFailed),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}

var errUnreadable = errors.New("unreadable file")

// ingestFile runs chunk, embed and insert for one file, in that order
func (idx *Indexer) ingestFile(ctx context.Context, file SourceFile) (inserted, skipped int, err error) {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", errUnreadable, file.RelPath, err)
	}

	chunks := idx.chunker.Chunk(ctx, string(data), file.RelPath)
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	pending := make([]models.CodeChunk, 0, len(chunks))
	for _, chunk := range chunks {
		exists, err := idx.store.Exists(ctx, chunk.ContentHash)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to check chunk %s: %w", file.RelPath, err)
		}
		if exists {
			skipped++
			continue
		}
		pending = append(pending, chunk)
	}
	if len(pending) == 0 {
		return 0, skipped, nil
	}

	texts := make([]string, len(pending))
	for i, chunk := range pending {
		texts[i] = chunk.Content
	}

	vectors, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to embed %s: %w", file.RelPath, err)
	}
	if len(vectors) != len(pending) {
		return 0, 0, fmt.Errorf("embedder returned %d vectors for %d chunks of %s", len(vectors), len(pending), file.RelPath)
	}

	for i, chunk := range pending {
		ok, err := idx.store.Insert(ctx, models.Record{Chunk: chunk, Embedding: vectors[i]})
		if err != nil {
			return 0, 0, fmt.Errorf("failed to store chunk %d of %s: %w", chunk.ChunkIndex, file.RelPath, err)
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	return inserted, skipped, nil
}
