package models

import "time"

// CodeChunk is one retrievable unit of a Python source file.
type CodeChunk struct {
	FilePath      string `json:"file_path"` // repo-relative, forward slashes
	FileName      string `json:"file_name"`
	FileExtension string `json:"file_extension"`
	ChunkIndex    int    `json:"chunk_index"`
	TotalChunks   int    `json:"total_chunks"`
	Content       string `json:"content"`
	Language      string `json:"language"`
	TokenCount    int    `json:"token_count"`
	ContentHash   string `json:"content_hash"`
}

// Record pairs a chunk with its embedding for persistence
type Record struct {
	Chunk     CodeChunk
	Embedding []float32
}

// Query is a preprocessed user question
type Query struct {
	Original    string   `json:"original"`
	Cleaned     string   `json:"cleaned"`
	FileFilters []string `json:"file_filters,omitempty"`
}

// IngestStats summarizes one ingestion run
type IngestStats struct {
	FilesProcessed int           `json:"files_processed"`
	ChunksInserted int           `json:"chunks_inserted"`
	ChunksSkipped  int           `json:"chunks_skipped"`
	FilesFailed    int           `json:"files_failed"`
	Duration       time.Duration `json:"duration"`
}

// FilterField names the chunk attribute a filter is matched against
type FilterField string

const (
	FilterFieldPath FilterField = "file_path"
	FilterFieldName FilterField = "file_name"
)

// FilterCondition restricts search results to chunks whose field contains
// Pattern, compared case-insensitively. A group of conditions is OR-ed.
type FilterCondition struct {
	Field   FilterField `json:"field"`
	Pattern string      `json:"pattern"`
}
