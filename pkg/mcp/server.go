// Package mcp exposes the reconciliation engine over the Model Context
// Protocol so agents can analyze files, plan barrels, and run generation.
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/barrelgen/pkg/engine"
	"github.com/gnana997/barrelgen/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server wraps an engine behind MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	engine    *engine.Engine
	logger    *mcplog.Logger // nil disables call logging

	mu         sync.Mutex
	lastReport *engine.Report
}

// NewServer creates an MCP server backed by the given engine. The mcplog
// logger may be nil.
func NewServer(eng *engine.Engine, logger *mcplog.Logger) *Server {
	s := &Server{engine: eng, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("barrelgen", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: analyzeFileTool(), Handler: s.handleAnalyzeFile},
		server.ServerTool{Tool: classifyImportsTool(), Handler: s.handleClassifyImports},
		server.ServerTool{Tool: planBarrelsTool(), Handler: s.handlePlanBarrels},
		server.ServerTool{Tool: generateBarrelsTool(), Handler: s.handleGenerateBarrels},
		server.ServerTool{Tool: getReportTool(), Handler: s.handleGetReport},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) setLastReport(report *engine.Report) {
	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
}

func (s *Server) getLastReport() *engine.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}
