package ingest

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
)

func handleWatch(ctx context.Context, sink Sink, in *Input) error {
	if _, err := engine.ParseRating(in.Rating); err != nil {
		return inputError{err}
	}
	_, err := sink.Watch(ctx, server.WatchRequest{
		VideoID:        in.VideoID,
		Title:          in.Title,
		MinutesWatched: in.MinutesWatched,
		Rating:         in.Rating,
		WatchedAt:      in.WatchedAt,
	})
	return err
}

func handleNavigation(ctx context.Context, sink Sink, in *Input) error {
	kind := engine.NavigationKind(in.Kind)
	if _, err := engine.NavigationWeight(kind); err != nil {
		return inputError{err}
	}
	return sink.Navigate(ctx, kind)
}

func handleSample(ctx context.Context, sink Sink, in *Input) error {
	axis, err := engine.ParseAxis(in.Axis)
	if err != nil {
		return inputError{err}
	}
	// Weight may arrive as a number or a quoted number.
	raw := strings.Trim(string(in.Weight), `"`)
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return inputError{err}
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return inputError{fmt.Errorf("weight must be finite")}
	}
	return sink.AddSample(ctx, axis, weight)
}
