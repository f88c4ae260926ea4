package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
)

// printState writes a human summary of st as seen at now.
func printState(w io.Writer, st engine.CompositeState, now time.Time) {
	fmt.Fprintf(w, "%s  %.3f\n", strings.ToUpper(st.Level.String()), st.Composite)
	if !st.LastCalculated.IsZero() {
		fmt.Fprintf(w, "  updated %s\n", humanize.RelTime(st.LastCalculated, now, "ago", "from now"))
	}
	fmt.Fprintf(w, "  circadian         %.1f\n", st.Circadian)
	for _, a := range engine.Axes {
		as := st.Axes[a]
		fmt.Fprintf(w, "  %-17s %.3f  %s, half-life %s\n", a, as.Value,
			humanize.Comma(int64(len(as.Samples)))+" samples", as.HalfLife)
	}
}

// printHistory writes one line per snapshot and the day average.
func printHistory(w io.Writer, h server.HistoryResponse, now time.Time) {
	if len(h.Snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots yet.")
		return
	}
	for _, s := range h.Snapshots {
		bar := strings.Repeat("#", int(s.Composite*20+0.5))
		fmt.Fprintf(w, "%-16s %.3f %-6s %s\n", humanize.RelTime(s.Timestamp, now, "ago", "from now"), s.Composite, s.Level, bar)
	}
	fmt.Fprintf(w, "\nday average %.3f (%s) over %s snapshots\n", h.DayAverage, h.Level, humanize.Comma(int64(len(h.Snapshots))))
}
