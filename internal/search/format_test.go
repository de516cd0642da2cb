package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamaly87/codebase-qa/internal/models"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, EmptyChunkPreview, Preview(" \n\t\n"))
	assert.Equal(t, "def f(): return 1", Preview("def f():\n    return 1\n\n"))

	long := strings.Repeat("word ", 40)
	p := Preview(long)
	assert.LessOrEqual(t, len(p), 120)
	assert.True(t, strings.HasSuffix(p, "word..."))

	p = Preview(strings.Repeat("x", 200))
	assert.Len(t, p, 120)
	assert.True(t, strings.HasSuffix(p, "..."))
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, NoContextLine, FormatContext(nil))

	out := FormatContext([]models.CodeChunk{
		{FilePath: "pkg/a.py", ChunkIndex: 0, TotalChunks: 2, Content: "def a():\n    pass"},
		{FilePath: "b.py", ChunkIndex: 1, TotalChunks: 2, Content: ""},
	})
	assert.Equal(t, "  - pkg/a.py [1/2]: def a(): pass\n  - b.py [2/2]: (empty chunk)", out)
}
