package mcptools

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lazypower/seastate/internal/engine"
)

// AddSampleTool handles the drift_add_sample MCP tool.
type AddSampleTool struct {
	backend Backend
}

// NewAddSampleTool creates an AddSampleTool.
func NewAddSampleTool(b Backend) *AddSampleTool {
	return &AddSampleTool{backend: b}
}

// Definition returns the MCP tool definition for drift_add_sample.
func (t *AddSampleTool) Definition() mcp.Tool {
	return mcp.NewTool("drift_add_sample",
		mcp.WithDescription(
			"Record a piece of evidence on one drift axis. Positive weights increase drift, negative weights reduce it.",
		),
		mcp.WithString("axis",
			mcp.Required(),
			mcp.Enum("time_pressure", "content_quality", "behavior_pattern"),
			mcp.Description("Axis to record on"),
		),
		mcp.WithNumber("weight",
			mcp.Required(),
			mcp.Description("Sample weight (minutes for time_pressure, roughly -1..1 otherwise)"),
		),
	)
}

// Handle processes the drift_add_sample tool call.
func (t *AddSampleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	axis, err := engine.ParseAxis(req.GetString("axis", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	weight, ok := req.GetArguments()["weight"].(float64)
	if !ok {
		return mcp.NewToolResultError("'weight' is required"), nil
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return mcp.NewToolResultError("'weight' must be finite"), nil
	}

	if err := t.backend.AddSample(ctx, axis, weight); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add sample: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Recorded %s sample %.3f. It takes effect on the next tick.", axis, weight)), nil
}
