package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazypower/seastate/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Forward newline-delimited JSON events from stdin to the server",
	Long: "Read one JSON event per line from stdin and forward it to the running server. " +
		`Events look like {"type":"watch","minutes_watched":12,"rating":"neutral"}, ` +
		`{"type":"navigation","kind":"autoplay"} or {"type":"sample","axis":"time_pressure","weight":5}.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := ingest.Handle(cmd.Context(), cmd.InOrStdin(), newClient())
		fmt.Fprintf(cmd.ErrOrStderr(), "ingest: %d forwarded, %d skipped, %d failed\n", res.Forwarded, res.Skipped, res.Failed)
		return err
	},
}
