package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/agent"
	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

// Asker answers one question through the conversation state machine
type Asker interface {
	Invoke(ctx context.Context, state agent.ConversationState) agent.ConversationState
}

// Searcher returns chunks for a raw query
type Searcher interface {
	Search(ctx context.Context, raw string, limit int) ([]models.CodeChunk, error)
}

// Ingester loads a repository into the store
type Ingester interface {
	Ingest(ctx context.Context, repoRoot string) (*models.IngestStats, error)
}

// Server represents the MCP server
type Server struct {
	config    *config.Config
	mcpServer *server.MCPServer
	asker     Asker
	searcher  Searcher
	ingester  Ingester
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance and registers its tools
func NewServer(cfg *config.Config, asker Asker, searcher Searcher, ingester Ingester, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   cfg,
		asker:    asker,
		searcher: searcher,
		ingester: ingester,
		logger:   logger,
	}

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
	)

	tools := s.getTools()
	for _, tool := range tools {
		mcpServer.AddTool(tool, s.createToolHandler(tool.Name))
	}
	s.mcpServer = mcpServer

	logger.Info("MCP server initialized",
		zap.String("name", cfg.Server.Name),
		zap.String("version", cfg.Server.Version),
		zap.Int("tools", len(tools)))

	return s
}

// createToolHandler creates a handler function for a given tool name
func (s *Server) createToolHandler(toolName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.Debug("handling tool call", zap.String("tool", toolName))

		var args map[string]interface{}
		if request.Params.Arguments != nil {
			var ok bool
			args, ok = request.Params.Arguments.(map[string]interface{})
			if !ok {
				return errorResult("invalid arguments format"), nil
			}
		} else {
			args = make(map[string]interface{})
		}

		switch toolName {
		case toolAsk:
			return s.handleAsk(ctx, args)
		case toolSearch:
			return s.handleSearch(ctx, args)
		case toolIngest:
			return s.handleIngest(ctx, args)
		default:
			return errorResult(fmt.Sprintf("unknown tool: %s", toolName)), nil
		}
	}
}

// Start serves the MCP protocol over stdio until the client disconnects
func (s *Server) Start() error {
	s.logger.Info("starting MCP server on stdio transport")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
