package agent

import (
	"fmt"
	"strings"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// SystemPrompt constrains the generator to the retrieved context
const SystemPrompt = "You are a meticulous assistant that answers questions about an ingested " +
	"Python codebase. Only use the retrieved code context. If the context " +
	"does not contain the answer, reply with 'I do not know based on the " +
	"available repository context.' Reference file paths in your answer."

// NoContextText replaces the context block when retrieval found nothing
const NoContextText = "No matching code chunks were retrieved."

// RenderContext formats chunks under "File: path (chunk i/total)" headers
func RenderContext(chunks []models.CodeChunk) string {
	if len(chunks) == 0 {
		return NoContextText
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("File: %s (chunk %d/%d)\n%s", c.FilePath, c.ChunkIndex+1, c.TotalChunks, c.Content)
	}
	return strings.Join(parts, "\n\n")
}

// UserPrompt combines the question with its rendered context
func UserPrompt(question string, chunks []models.CodeChunk) string {
	return fmt.Sprintf("User question: %s\n\nRetrieved context:\n%s\n\nAnswer the question using only this information.",
		question, RenderContext(chunks))
}
