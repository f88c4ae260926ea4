package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/seastate/internal/engine"
)

var (
	replayNow  string
	replayJSON bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild drift state from the local event log",
	Long: "Rebuild drift state from the watch history in the local database without a " +
		"running server. The result is not saved. Use --now for reproducible output.",
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayNow, "now", "", "RFC 3339 instant to replay at (default: now)")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print the state as JSON")
}

func runReplay(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if replayNow != "" {
		t, err := time.Parse(time.RFC3339, replayNow)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		now = t
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings, err := cfg.Engine.Settings()
	if err != nil {
		return err
	}
	db, _, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(engine.Options{
		Settings: engine.NewStaticSettings(settings),
		Clock:    func() time.Time { return now },
		Debug:    cfg.Engine.Debug,
	})
	defer eng.Close()

	st, err := eng.Replay(db, now)
	if err != nil {
		return err
	}
	if replayJSON {
		return writeJSON(cmd, st)
	}
	printState(cmd.OutOrStdout(), st, now)
	return nil
}
