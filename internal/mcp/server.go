// Package mcp exposes the storyloop driver surface as Model Context
// Protocol tools, so a coding agent can pull its next story, report
// progress, and mark work complete without shelling out.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/storyloop/internal/loop"
)

// Server wraps the loop to provide MCP tool access.
type Server struct {
	loop   *loop.Loop
	server *server.MCPServer
}

// NewServer creates a new MCP server over the given loop.
func NewServer(l *loop.Loop, version string) *Server {
	s := &Server{
		loop: l,
	}

	mcpServer := server.NewMCPServer(
		"storyloop",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.server = mcpServer
	return s
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	// story_status - Summarize the current store
	mcpServer.AddTool(
		mcp.NewTool("story_status",
			mcp.WithDescription("Summarize the story store: project, branch, total and remaining story counts, and the id of the next story."),
		),
		s.handleStatus,
	)

	// next_story - Select the next incomplete story
	mcpServer.AddTool(
		mcp.NewTool("next_story",
			mcp.WithDescription("Select the highest-priority incomplete story. Reports when every story is complete."),
		),
		s.handleNextStory,
	)

	// next_prompt - Render the work prompt for the next story
	mcpServer.AddTool(
		mcp.NewTool("next_prompt",
			mcp.WithDescription("Render the materialized work prompt for the next incomplete story. Run the work it describes, then call mark_complete."),
		),
		s.handleNextPrompt,
	)

	// mark_complete - Flip a story's completion flag
	mcpServer.AddTool(
		mcp.NewTool("mark_complete",
			mcp.WithDescription("Mark a story as complete by id. Idempotent; only call after the story's acceptance criteria are satisfied and quality gates pass."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Story id to mark complete (e.g. 'story-3')"),
			),
		),
		s.handleMarkComplete,
	)

	// log_progress - Append an entry to the progress log
	mcpServer.AddTool(
		mcp.NewTool("log_progress",
			mcp.WithDescription("Append a timestamped free-text entry to the progress log."),
			mcp.WithString("entry",
				mcp.Required(),
				mcp.Description("Entry text describing what was done"),
			),
		),
		s.handleLogProgress,
	)
}

// handleStatus handles the story_status tool.
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.loop.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode status failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleNextStory handles the next_story tool.
func (s *Server) handleNextStory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.loop.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("select failed: %v", err)), nil
	}

	if status.Done {
		return mcp.NewToolResultText("All stories complete. Nothing left to do."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Next story: %s (%d of %d remaining)", status.NextID, status.Remaining, status.Total)), nil
}

// handleNextPrompt handles the next_prompt tool.
func (s *Server) handleNextPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rendered, err := s.loop.NextPrompt()
	if err != nil {
		if errors.Is(err, loop.ErrNoIncompleteStory) {
			return mcp.NewToolResultText("All stories complete. Nothing left to do."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("render prompt failed: %v", err)), nil
	}

	return mcp.NewToolResultText(rendered), nil
}

// handleMarkComplete handles the mark_complete tool.
func (s *Server) handleMarkComplete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	if err := s.loop.Complete(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mark complete failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Story %s marked complete.", id)), nil
}

// handleLogProgress handles the log_progress tool.
func (s *Server) handleLogProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry := request.GetString("entry", "")
	if entry == "" {
		return mcp.NewToolResultError("entry parameter is required"), nil
	}

	if err := s.loop.LogProgress(entry); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("log progress failed: %v", err)), nil
	}

	return mcp.NewToolResultText("Progress entry recorded."), nil
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}
