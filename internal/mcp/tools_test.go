package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-qa/internal/agent"
	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

type fakeAsker struct{}

func (fakeAsker) Invoke(_ context.Context, st agent.ConversationState) agent.ConversationState {
	st.RetrievedContext = []models.CodeChunk{{FilePath: "auth.py", ChunkIndex: 0, TotalChunks: 1, Content: "def login(): pass"}}
	st.Messages = append(st.Messages, agent.Message{Role: agent.RoleAssistant, Content: "See auth.py."})
	return st
}

type fakeSearcher struct {
	limit  int
	chunks []models.CodeChunk
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, limit int) ([]models.CodeChunk, error) {
	f.limit = limit
	return f.chunks, f.err
}

type fakeIngester struct{}

func (fakeIngester) Ingest(_ context.Context, repoRoot string) (*models.IngestStats, error) {
	if repoRoot == "/missing" {
		return nil, models.ErrNotFound
	}
	return &models.IngestStats{FilesProcessed: 2, ChunksInserted: 5, Duration: time.Second}, nil
}

func call(t *testing.T, s *Server, tool string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = tool
	req.Params.Arguments = args
	result, err := s.createToolHandler(tool)(context.Background(), req)
	require.NoError(t, err)
	return result
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	text, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func newTestServer(searcher *fakeSearcher) *Server {
	return NewServer(config.DefaultConfig(), fakeAsker{}, searcher, fakeIngester{}, nil)
}

func TestTools_Registered(t *testing.T) {
	s := newTestServer(&fakeSearcher{})
	names := make([]string, 0)
	for _, tool := range s.getTools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{toolAsk, toolSearch, toolIngest}, names)
}

func TestHandleAsk(t *testing.T) {
	s := newTestServer(&fakeSearcher{})

	r := call(t, s, toolAsk, map[string]interface{}{"question": "how does login work?"})
	assert.False(t, r.IsError)
	assert.Equal(t, "See auth.py.\n\nRetrieved context:\n  - auth.py [1/1]: def login(): pass", resultText(t, r))

	r = call(t, s, toolAsk, map[string]interface{}{})
	assert.True(t, r.IsError)
}

func TestHandleSearch(t *testing.T) {
	searcher := &fakeSearcher{chunks: []models.CodeChunk{{FilePath: "db.py", TotalChunks: 1, Content: "import sqlite3"}}}
	s := newTestServer(searcher)

	r := call(t, s, toolSearch, map[string]interface{}{"query": "database", "limit": float64(3)})
	assert.False(t, r.IsError)
	assert.Equal(t, 3, searcher.limit)
	assert.Contains(t, resultText(t, r), "db.py [1/1]: import sqlite3")

	searcher.err = models.ErrEmptyQuery
	r = call(t, s, toolSearch, map[string]interface{}{"query": "please"})
	assert.True(t, r.IsError)
	assert.Equal(t, "Error: "+models.EmptyQueryMessage, resultText(t, r))
}

func TestHandleIngest(t *testing.T) {
	s := newTestServer(&fakeSearcher{})

	r := call(t, s, toolIngest, map[string]interface{}{"repo_path": "/repo"})
	assert.False(t, r.IsError)
	assert.Contains(t, resultText(t, r), `"chunks_inserted": 5`)

	r = call(t, s, toolIngest, map[string]interface{}{"repo_path": "/missing"})
	assert.True(t, r.IsError)
}

func TestUnknownTool(t *testing.T) {
	s := newTestServer(&fakeSearcher{})
	r := call(t, s, "clear_cache", nil)
	assert.True(t, r.IsError)
}
