package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/seastate/internal/client"
	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
)

const requestTimeout = 10 * time.Second

func newClient() *client.Client {
	return client.New(serverURL)
}

// --- status command ---

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sea state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		st, err := newClient().State(ctx)
		if err != nil {
			return err
		}
		if statusJSON {
			return writeJSON(cmd, st)
		}
		printState(cmd.OutOrStdout(), st, time.Now())
		return nil
	},
}

// --- history command ---

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the last day of drift snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		h, err := newClient().History(ctx)
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd, h)
		}
		printHistory(cmd.OutOrStdout(), h, time.Now())
		return nil
	},
}

// --- sample command ---

var sampleCmd = &cobra.Command{
	Use:   "sample <axis> <weight>",
	Short: "Add a raw sample to an axis",
	Long:  "Add a raw sample. Axis is one of time_pressure, content_quality, behavior_pattern.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		axis, err := engine.ParseAxis(args[0])
		if err != nil {
			return err
		}
		weight, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parse weight: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		if err := newClient().AddSample(ctx, axis, weight); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %+g\n", axis, weight)
		return nil
	},
}

// --- watch command ---

var (
	watchRating  string
	watchVideoID string
	watchTitle   string
	watchAgo     time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <minutes>",
	Short: "Record a watched video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parse minutes: %w", err)
		}
		if _, err := engine.ParseRating(watchRating); err != nil {
			return err
		}

		req := server.WatchRequest{
			VideoID:        watchVideoID,
			Title:          watchTitle,
			MinutesWatched: minutes,
			Rating:         watchRating,
		}
		if watchAgo > 0 {
			at := time.Now().Add(-watchAgo)
			req.WatchedAt = &at
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		ev, err := newClient().Watch(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded watch %s\n", ev.ID)
		return nil
	},
}

// --- navigate command ---

var navigateCmd = &cobra.Command{
	Use:   "navigate <kind>",
	Short: "Record a navigation signal",
	Long:  "Record a navigation signal: autoplay, recommendation_click, shorts, page_reload, search, back_button.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := engine.NavigationKind(args[0])
		if _, err := engine.NavigationWeight(kind); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		if err := newClient().Navigate(ctx, kind); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %s\n", kind)
		return nil
	},
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the raw state as JSON")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the raw history as JSON")

	watchCmd.Flags().StringVarP(&watchRating, "rating", "r", "", "productive, neutral or unproductive")
	watchCmd.Flags().StringVar(&watchVideoID, "video", "", "Video ID")
	watchCmd.Flags().StringVar(&watchTitle, "title", "", "Video title")
	watchCmd.Flags().DurationVar(&watchAgo, "ago", 0, "How long ago the video was watched")
}
