package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamaly87/codebase-qa/internal/models"
)

func TestRenderContext(t *testing.T) {
	assert.Equal(t, NoContextText, RenderContext(nil))

	out := RenderContext([]models.CodeChunk{
		{FilePath: "a.py", ChunkIndex: 0, TotalChunks: 1, Content: "def a(): pass"},
		{FilePath: "pkg/b.py", ChunkIndex: 2, TotalChunks: 3, Content: "class B: pass"},
	})
	assert.Equal(t, "File: a.py (chunk 1/1)\ndef a(): pass\n\nFile: pkg/b.py (chunk 3/3)\nclass B: pass", out)
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t,
		"User question: q?\n\nRetrieved context:\n"+NoContextText+"\n\nAnswer the question using only this information.",
		UserPrompt("q?", nil))
}
