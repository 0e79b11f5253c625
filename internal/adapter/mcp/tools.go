package mcp

import (
	"context"
	"errors"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/TripForge/internal/domain"
	"github.com/Strob0t/TripForge/internal/domain/trip"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.planTripTool(),
		s.getMemoryTool(),
		s.clearMemoryTool(),
	)
}

func (s *Server) planTripTool() mcpserver.ServerTool {
	selections := make([]string, 0, len(trip.ValidSelections))
	for _, sel := range trip.ValidSelections {
		selections = append(selections, string(sel))
	}
	tool := mcplib.NewTool("plan_trip",
		mcplib.WithDescription("Plan a trip: itinerary, cost estimate and cultural guide"),
		mcplib.WithString("destination",
			mcplib.Required(),
			mcplib.Description("City or region to travel to"),
		),
		mcplib.WithNumber("budget",
			mcplib.Required(),
			mcplib.Description("Total budget in USD"),
		),
		mcplib.WithArray("interests",
			mcplib.Description("Traveler interests, e.g. Food or Museums"),
			mcplib.WithStringItems(),
		),
		mcplib.WithNumber("duration",
			mcplib.Description("Trip length in days (default 3)"),
		),
		mcplib.WithString("agent",
			mcplib.Description("Which planner to run (default all)"),
			mcplib.Enum(selections...),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handlePlanTrip,
	}
}

func (s *Server) getMemoryTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_memory",
		mcplib.WithDescription("Get the stored travel history and preferences"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGetMemory,
	}
}

func (s *Server) clearMemoryTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("clear_memory",
		mcplib.WithDescription("Erase the stored travel history and preferences"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleClearMemory,
	}
}

func (s *Server) handlePlanTrip(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Planner == nil {
		return mcplib.NewToolResultError("planner not configured"), nil
	}
	var tr trip.Request
	if err := req.BindArguments(&tr); err != nil {
		return mcplib.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	plan, err := s.deps.Planner.Plan(ctx, tr)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		return mcplib.NewToolResultErrorFromErr("failed to plan trip", err), nil
	}

	text, err := marshal(plan.Envelope())
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal plan", err), nil
	}
	return mcplib.NewToolResultText(text), nil
}

func (s *Server) handleGetMemory(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Planner == nil {
		return mcplib.NewToolResultError("planner not configured"), nil
	}
	doc, err := s.deps.Planner.History(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to load memory", err), nil
	}
	text, err := marshal(doc.Snapshot())
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal memory", err), nil
	}
	return mcplib.NewToolResultText(text), nil
}

func (s *Server) handleClearMemory(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Planner == nil {
		return mcplib.NewToolResultError("planner not configured"), nil
	}
	if err := s.deps.Planner.ResetHistory(ctx); err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to clear memory", err), nil
	}
	return mcplib.NewToolResultText("Memory cleared"), nil
}
