package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bfforex/EvolveUI/internal/engine"
)

const (
	// ServerName is the MCP server name
	ServerName = "evolveui"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the context assembly engine.
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	log    *zap.Logger
}

// NewServer creates a new MCP server instance around an already
// constructed engine.
func NewServer(eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		engine: eng,
		log:    log,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("mcp server listening on stdio",
		zap.String("name", ServerName),
		zap.String("version", ServerVersion))
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(assembleContextTool(), s.handleAssembleContext)
	s.mcp.AddTool(searchWebTool(), s.handleSearchWeb)
	s.mcp.AddTool(searchKnowledgeTool(), s.handleSearchKnowledge)
	s.mcp.AddTool(addKnowledgeTool(), s.handleAddKnowledge)
	s.mcp.AddTool(providerStatusTool(), s.handleProviderStatus)
	s.mcp.AddTool(configureProvidersTool(), s.handleConfigureProviders)
	s.mcp.AddTool(engineStatusTool(), s.handleEngineStatus)
}
