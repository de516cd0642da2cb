package search

import (
	"fmt"
	"strings"

	"github.com/jamaly87/codebase-qa/internal/models"
)

const (
	previewWidth       = 120
	previewPlaceholder = "..."

	// EmptyChunkPreview stands in for chunks with no visible text
	EmptyChunkPreview = "(empty chunk)"
	// NoContextLine is printed when retrieval returned nothing
	NoContextLine = "  (no relevant context returned)"
)

// Preview collapses content onto one line and shortens it at a word
// boundary so the result, placeholder included, fits previewWidth
func Preview(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return EmptyChunkPreview
	}
	return shorten(strings.Join(lines, " "), previewWidth, previewPlaceholder)
}

func shorten(text string, width int, placeholder string) string {
	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	if len([]rune(joined)) <= width {
		return joined
	}

	budget := width - len([]rune(placeholder))
	var sb strings.Builder
	used := 0
	for _, w := range words {
		n := len([]rune(w))
		if used > 0 {
			n++
		}
		if used+n > budget {
			break
		}
		if used > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w)
		used += n
	}

	if used == 0 {
		// a single word longer than the budget is cut mid-word
		r := []rune(words[0])
		return string(r[:budget]) + placeholder
	}
	return sb.String() + placeholder
}

// FormatLocation renders "path [n/total]: preview" for one chunk
func FormatLocation(c models.CodeChunk) string {
	return fmt.Sprintf("%s [%d/%d]: %s", c.FilePath, c.ChunkIndex+1, c.TotalChunks, Preview(c.Content))
}

// FormatContext renders one indented line per chunk
func FormatContext(chunks []models.CodeChunk) string {
	if len(chunks) == 0 {
		return NoContextLine
	}
	lines := make([]string, len(chunks))
	for i, c := range chunks {
		lines[i] = "  - " + FormatLocation(c)
	}
	return strings.Join(lines, "\n")
}
