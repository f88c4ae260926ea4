package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryTool handles the drift_history MCP tool.
type HistoryTool struct {
	backend Backend
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(b Backend) *HistoryTool {
	return &HistoryTool{backend: b}
}

// Definition returns the MCP tool definition for drift_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_history",
		mcp.WithDescription(
			"Show the last 24 hours of half-hourly drift snapshots and the day average.",
		),
		mcp.WithNumber("limit",
			mcp.Description("Most recent snapshots to show (default: all)"),
		),
	)
}

// Handle processes the drift_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, err := t.backend.History(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
	}

	snaps := h.Snapshots
	if limit := int(req.GetFloat("limit", 0)); limit > 0 && limit < len(snaps) {
		snaps = snaps[len(snaps)-limit:]
	}

	var sb strings.Builder
	sb.WriteString("## Drift history\n\n")
	fmt.Fprintf(&sb, "Day average: %.3f (%s) over %d snapshots\n\n", h.DayAverage, h.Level, len(h.Snapshots))
	if len(snaps) == 0 {
		sb.WriteString("No snapshots yet.\n")
	}
	for _, s := range snaps {
		fmt.Fprintf(&sb, "- %s  %.3f  %s\n", s.Timestamp.Format("Jan 2 15:04"), s.Composite, s.Level)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
