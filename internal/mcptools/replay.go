package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReplayTool handles the drift_replay MCP tool.
type ReplayTool struct {
	backend Backend
	now     func() time.Time
}

// NewReplayTool creates a ReplayTool.
func NewReplayTool(b Backend) *ReplayTool {
	return &ReplayTool{backend: b, now: time.Now}
}

// Definition returns the MCP tool definition for drift_replay.
func (t *ReplayTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_replay",
		mcp.WithDescription(
			"Rebuild drift state from the recorded watch history. Live navigation evidence is discarded.",
		),
		mcp.WithString("now",
			mcp.Description("RFC 3339 instant to replay at (default: server time)"),
		),
	)
}

// Handle processes the drift_replay tool call.
func (t *ReplayTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var at time.Time
	if s := req.GetString("now", ""); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'now': %v", err)), nil
		}
		at = parsed
	}

	st, err := t.backend.Replay(ctx, at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to replay: %v", err)), nil
	}
	return mcp.NewToolResultText(formatState(st, t.now())), nil
}
