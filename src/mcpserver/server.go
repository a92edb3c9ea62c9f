// Package mcpserver exposes agent tools to MCP clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/elee1766/moviefinder/src/agent"
	"github.com/elee1766/moviefinder/src/aisdk"
)

// ToolSource provides the tools to expose and executes calls against them.
type ToolSource interface {
	Tools() []agent.Tool
	ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)
}

// Server wraps an MCP server whose tools are backed by a ToolSource.
type Server struct {
	mcp    *server.MCPServer
	source ToolSource
	logger *slog.Logger
}

// New registers every tool of source on a fresh MCP server.
func New(name, version string, source ToolSource, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp:    server.NewMCPServer(name, version, server.WithToolCapabilities(false), server.WithRecovery()),
		source: source,
		logger: logger.With("component", "mcp_server"),
	}
	for _, t := range source.Tools() {
		tool, err := toMCPTool(t)
		if err != nil {
			return nil, err
		}
		s.mcp.AddTool(tool, s.handler(t.GetName()))
	}
	return s, nil
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over in/out until ctx ends or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("serving MCP over stdio")
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		resp, err := s.source.ExecuteTool(ctx, &aisdk.ToolCall{
			ID:   fmt.Sprintf("mcp_%s", name),
			Type: aisdk.ToolTypeFunction,
			Function: aisdk.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		})
		if err != nil {
			s.logger.Error("tool execution failed", "tool", name, "error", err)
			return nil, err
		}
		if resp.IsError {
			return mcp.NewToolResultError(string(resp.Content)), nil
		}
		return mcp.NewToolResultText(string(resp.Content)), nil
	}
}

// toMCPTool carries the tool's reflected parameter schema over unchanged.
func toMCPTool(t agent.Tool) (mcp.Tool, error) {
	params := t.GetParameters()
	if params == nil {
		return mcp.NewTool(t.GetName(), mcp.WithDescription(t.GetDescription())), nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("marshal schema for %s: %w", t.GetName(), err)
	}
	return mcp.NewToolWithRawSchema(t.GetName(), t.GetDescription(), raw), nil
}
