// Package mcptools exposes the drift engine as MCP tools over a running
// seastate server.
package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lazypower/seastate/internal/engine"
	sserver "github.com/lazypower/seastate/internal/server"
)

// Backend is the subset of the HTTP client the tools need.
type Backend interface {
	State(ctx context.Context) (engine.CompositeState, error)
	History(ctx context.Context) (sserver.HistoryResponse, error)
	AddSample(ctx context.Context, axis engine.Axis, weight float64) error
	Replay(ctx context.Context, now time.Time) (engine.CompositeState, error)
}

// NewServer builds an MCP server with every drift tool registered.
func NewServer(b Backend, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"seastate",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	status := NewStatusTool(b)
	s.AddTool(status.Definition(), status.Handle)

	history := NewHistoryTool(b)
	s.AddTool(history.Definition(), history.Handle)

	sample := NewAddSampleTool(b)
	s.AddTool(sample.Definition(), sample.Handle)

	replay := NewReplayTool(b)
	s.AddTool(replay.Definition(), replay.Handle)

	return s
}

// formatState renders a state as short markdown.
func formatState(st engine.CompositeState, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Sea state: %s\n\n", st.Level)
	fmt.Fprintf(&sb, "- **Composite**: %.3f\n", st.Composite)
	fmt.Fprintf(&sb, "- **Circadian**: %.1f\n", st.Circadian)
	for _, a := range engine.Axes {
		as := st.Axes[a]
		fmt.Fprintf(&sb, "- **%s**: %.3f (%d samples)\n", a, as.Value, len(as.Samples))
	}
	if !st.LastCalculated.IsZero() {
		fmt.Fprintf(&sb, "- **Updated**: %s\n", humanize.RelTime(st.LastCalculated, now, "ago", "from now"))
	}
	return sb.String()
}
