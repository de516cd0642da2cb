package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jamaly87/codebase-qa/internal/agent"
	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/internal/search"
)

const (
	toolAsk    = "ask_codebase"
	toolSearch = "search_code"
	toolIngest = "ingest_repository"
)

// Tool definitions for the MCP server
func (s *Server) getTools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        toolAsk,
			Description: "Answer a question about the ingested Python codebase. The answer is grounded only in retrieved code chunks and cites file paths. Questions outside the codebase are declined. Mention a file such as 'auth.py' or 'app/routes.py' to restrict retrieval to it.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"question": map[string]interface{}{
						"type":        "string",
						"description": "Natural language question about the codebase. Examples: 'How does login work in auth.py?', 'Which module opens the database connection?'",
					},
				},
				Required: []string{"question"},
			},
		},
		{
			Name:        toolSearch,
			Description: "Return the code chunks nearest to a query without generating an answer. Each result shows the file path, the chunk position within the file and a one-line preview.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Natural language search query. File names ending in .py restrict the search to matching files.",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of results to return (default: 5)",
						"default":     search.DefaultLimit,
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        toolIngest,
			Description: "Ingest a Python repository: chunk every .py file at function or class boundaries, embed new chunks and store them. Re-ingesting an unchanged repository inserts nothing.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"repo_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the repository to ingest",
					},
				},
				Required: []string{"repo_path"},
			},
		},
	}
}

// Tool handlers

func (s *Server) handleAsk(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	question, ok := args["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return errorResult("question is required and must be a string"), nil
	}

	state := s.asker.Invoke(ctx, agent.ConversationState{}.WithUserMessage(question))

	var out strings.Builder
	out.WriteString(state.LastAnswer())
	if len(state.RetrievedContext) > 0 {
		out.WriteString("\n\nRetrieved context:\n")
		out.WriteString(search.FormatContext(state.RetrievedContext))
	}

	return textResult(out.String()), nil
}

func (s *Server) handleSearch(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return errorResult("query is required and must be a string"), nil
	}

	limit := 0
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	chunks, err := s.searcher.Search(ctx, query, limit)
	if errors.Is(err, models.ErrEmptyQuery) {
		return errorResult(models.EmptyQueryMessage), nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(chunks) == 0 {
		return textResult("No results found."), nil
	}
	return textResult(fmt.Sprintf("Found %d results:\n%s", len(chunks), search.FormatContext(chunks))), nil
}

func (s *Server) handleIngest(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	repoPath, ok := args["repo_path"].(string)
	if !ok || repoPath == "" {
		return errorResult("repo_path is required and must be a string"), nil
	}

	stats, err := s.ingester.Ingest(ctx, repoPath)
	if err != nil {
		return errorResult(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	return successResult(map[string]interface{}{
		"repo":            repoPath,
		"files_processed": stats.FilesProcessed,
		"chunks_inserted": stats.ChunksInserted,
		"chunks_skipped":  stats.ChunksSkipped,
		"files_failed":    stats.FilesFailed,
		"duration":        stats.Duration.String(),
	}), nil
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func successResult(data interface{}) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(data, "", "  ")
	return textResult(string(jsonData))
}

func errorResult(message string) *mcp.CallToolResult {
	result := textResult(fmt.Sprintf("Error: %s", message))
	result.IsError = true
	return result
}
