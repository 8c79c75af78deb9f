package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlasfin/banking-kb-mcp/internal/index"
	"github.com/atlasfin/banking-kb-mcp/internal/intent"
	"github.com/atlasfin/banking-kb-mcp/internal/retriever"
	"github.com/atlasfin/banking-kb-mcp/internal/source"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server    *mcp.Server
	index     *index.Qdrant
	retriever *retriever.Retriever
	detector  *intent.Detector
	sources   *source.Store
}

// Config holds server dependencies.
type Config struct {
	Index     *index.Qdrant
	Retriever *retriever.Retriever
	Detector  *intent.Detector
	Sources   *source.Store
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "banking-kb-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_kb",
		Description: "Search the banking knowledge base semantically. Returns matching chunks and a prompt-ready context block.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_message",
		Description: "Classify a customer message into a banking intent with confidence, extracted entities, sentiment and an escalation flag.",
	}, makeClassifyHandler(cfg.Detector))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List all registered knowledge base sources with their ingestion status.",
	}, makeListSourcesHandler(cfg.Sources))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_kb_status",
		Description: "Get the current knowledge base status including chunk count, source counts by status and vector store health.",
	}, makeStatusHandler(cfg.Index, cfg.Sources))

	return &Server{
		server:    server,
		index:     cfg.Index,
		retriever: cfg.Retriever,
		detector:  cfg.Detector,
		sources:   cfg.Sources,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
