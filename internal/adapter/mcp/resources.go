package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// MemoryURI addresses the travel memory document.
const MemoryURI = "tripforge://memory"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			MemoryURI,
			"Travel Memory",
			mcplib.WithResourceDescription("Past trips, learned preferences and visited places"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleMemoryResource,
	)
}

func (s *Server) handleMemoryResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Planner == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"planner not configured"}`,
			},
		}, nil
	}
	doc, err := s.deps.Planner.History(ctx)
	if err != nil {
		return nil, err
	}
	text, err := marshal(doc)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}
