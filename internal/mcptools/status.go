package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusTool handles the drift_status MCP tool.
type StatusTool struct {
	backend Backend
	now     func() time.Time
}

// NewStatusTool creates a StatusTool.
func NewStatusTool(b Backend) *StatusTool {
	return &StatusTool{backend: b, now: time.Now}
}

// Definition returns the MCP tool definition for drift_status.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_status",
		mcp.WithDescription(
			"Show the current behavioral drift: sea-state level, composite score, and per-axis values.",
		),
	)
}

// Handle processes the drift_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := t.backend.State(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get state: %v", err)), nil
	}
	return mcp.NewToolResultText(formatState(st, t.now())), nil
}
