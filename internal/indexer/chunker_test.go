package indexer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// wordCounter counts whitespace-separated words
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func chunk(t *testing.T, src, file string) []models.CodeChunk {
	t.Helper()
	return NewChunker(wordCounter{}, nil).Chunk(context.Background(), src, file)
}

func contents(chunks []models.CodeChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func TestChunker_TopLevelFunctions(t *testing.T) {
	src := "import os\n\n\ndef a():\n    return 1\n\n\ndef b(x):\n    return x * 2\n"

	chunks := chunk(t, src, "pkg/util.py")

	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"def a():\n    return 1", "def b(x):\n    return x * 2"}, contents(chunks))
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, 2, c.TotalChunks)
		assert.Equal(t, "pkg/util.py", c.FilePath)
		assert.Equal(t, "util.py", c.FileName)
		assert.Equal(t, ".py", c.FileExtension)
		assert.Equal(t, "python", c.Language)
		assert.Equal(t, ContentHash("pkg/util.py", i, c.Content), c.ContentHash)
	}
	assert.Equal(t, 4, chunks[0].TokenCount)
}

func TestChunker_FunctionsWinOverClasses(t *testing.T) {
	src := "class A:\n    def method(self):\n        pass\n\n\ndef top():\n    pass\n"

	chunks := chunk(t, src, "mixed.py")

	assert.Equal(t, []string{"def top():\n    pass"}, contents(chunks))
}

func TestChunker_ClassFallback(t *testing.T) {
	src := "class A:\n    x = 1\n\n\nclass B(A):\n    def m(self):\n        return self.x\n"

	chunks := chunk(t, src, "models.py")

	assert.Equal(t, []string{
		"class A:\n    x = 1",
		"class B(A):\n    def m(self):\n        return self.x",
	}, contents(chunks))
}

func TestChunker_WholeFileFallback(t *testing.T) {
	src := "\nimport os\n\nDEBUG = os.getenv('DEBUG')\n\n"

	chunks := chunk(t, src, "settings.py")

	require.Len(t, chunks, 1)
	assert.Equal(t, "import os\n\nDEBUG = os.getenv('DEBUG')", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].TotalChunks)
}

func TestChunker_MalformedSource(t *testing.T) {
	src := "def broken(:\n    pass\n\ndef fine():\n    return 1\n"

	chunks := chunk(t, src, "broken.py")

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(src), chunks[0].Content)
}

// The grammar still accepts Python 2 print statements, so only real syntax
// errors force the whole-file fallback.
func TestChunker_Python2PrintStatement(t *testing.T) {
	src := "print 'hi'\n\ndef a():\n    return 1\n"

	chunks := chunk(t, src, "legacy.py")

	require.Len(t, chunks, 1)
	assert.Equal(t, "def a():\n    return 1", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].TotalChunks)
}

func TestChunker_AsyncAndDecorated(t *testing.T) {
	src := "@app.route('/')\n@login_required\ndef index():\n    return 'ok'\n\n\nasync def fetch(url):\n    return await get(url)\n"

	chunks := chunk(t, src, "views.py")

	assert.Equal(t, []string{
		"def index():\n    return 'ok'",
		"async def fetch(url):\n    return await get(url)",
	}, contents(chunks))
}

func TestChunker_EmptyFile(t *testing.T) {
	assert.Empty(t, chunk(t, "", "empty.py"))
	assert.Empty(t, chunk(t, "   \n\n\t\n", "blank.py"))
}

func TestChunker_Deterministic(t *testing.T) {
	src := "def a():\n    pass\n\ndef b():\n    pass\n"

	first := chunk(t, src, "a.py")
	second := chunk(t, src, "a.py")
	assert.Equal(t, first, second)

	moved := chunk(t, src, "b.py")
	assert.NotEqual(t, first[0].ContentHash, moved[0].ContentHash)
}

func TestChunker_WindowsSeparators(t *testing.T) {
	chunks := chunk(t, "def a():\n    pass\n", `pkg\mod.py`)
	require.Len(t, chunks, 1)
	assert.Equal(t, "pkg/mod.py", chunks[0].FilePath)
	assert.Equal(t, "mod.py", chunks[0].FileName)
}

func TestContentHash(t *testing.T) {
	h := ContentHash("a.py", 0, "def a(): pass")
	assert.Len(t, h, 64)
	assert.Equal(t, h, ContentHash("a.py", 0, "def a(): pass"))
	assert.NotEqual(t, h, ContentHash("a.py", 1, "def a(): pass"))
	assert.NotEqual(t, h, ContentHash("a.py", 0, "def a(): return"))
	assert.Equal(t, "cb052ce16a00961e091d18d3a9f5bff1b2af5de82e4504fbc73f3313c7e99a6f", ContentHash("x.py", 0, "y"))
}
