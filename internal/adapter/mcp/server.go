// Package mcp exposes trip planning to MCP clients as tools and resources.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/TripForge/internal/domain/memory"
	"github.com/Strob0t/TripForge/internal/domain/trip"
	"github.com/Strob0t/TripForge/internal/service"
)

// Planner is the application surface the tools call into.
type Planner interface {
	Plan(ctx context.Context, req trip.Request) (*service.Plan, error)
	History(ctx context.Context) (*memory.Document, error)
	ResetHistory(ctx context.Context) error
}

// ServerConfig names the MCP server.
type ServerConfig struct {
	Name    string
	Version string
}

// ServerDeps holds the services backing the tools.
type ServerDeps struct {
	Planner Planner
}

// Server wraps an mcp-go server with the trip tools registered.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
}

// NewServer creates the MCP server and registers tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the streamable-HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer)
}

// ServeStdio serves the tools over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcpServer)
}

// marshal encodes v without HTML escaping so prompts and model text stay
// readable.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}
