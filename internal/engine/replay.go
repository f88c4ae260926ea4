package engine

import (
	"fmt"
	"sort"
	"time"
)

// Rating is a user's productivity verdict on a watched video. The zero value
// means unrated.
type Rating string

const (
	Unrated      Rating = ""
	Productive   Rating = "productive"
	Neutral      Rating = "neutral"
	Unproductive Rating = "unproductive"
)

// ratingWeights maps a rating to its ContentQuality sample weight.
var ratingWeights = map[Rating]float64{
	Productive:   -0.25,
	Neutral:      0.05,
	Unproductive: 0.35,
}

// ParseRating validates a wire rating. The empty string is Unrated.
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if r == Unrated {
		return Unrated, nil
	}
	if _, ok := ratingWeights[r]; !ok {
		return Unrated, fmt.Errorf("unknown rating %q", s)
	}
	return r, nil
}

// Weight returns the ContentQuality weight for r and whether r is rated.
func (r Rating) Weight() (float64, bool) {
	w, ok := ratingWeights[r]
	return w, ok
}

// HistoricalEvent is one entry of the durable watch log.
type HistoricalEvent struct {
	ID             string
	Timestamp      time.Time
	MinutesWatched float64
	Rating         Rating
}

// AxisSample pairs a sample with the axis it belongs to.
type AxisSample struct {
	Axis   Axis
	Sample Sample
}

// SamplesForEvent is the single mapping from a watch event to engine samples.
// Live ingestion and replay both go through it.
func SamplesForEvent(ev HistoricalEvent) []AxisSample {
	out := make([]AxisSample, 0, 2)
	if finite(ev.MinutesWatched) {
		out = append(out, AxisSample{
			Axis:   TimePressure,
			Sample: Sample{Timestamp: ev.Timestamp, Weight: ev.MinutesWatched},
		})
	}
	if w, ok := ev.Rating.Weight(); ok {
		out = append(out, AxisSample{
			Axis:   ContentQuality,
			Sample: Sample{Timestamp: ev.Timestamp, Weight: w},
		})
	}
	return out
}

// Reconstruct rebuilds per-axis samples from the events inside
// [now−lookback, now]. BehaviorPattern is never populated: navigation
// evidence is live-only. Input order does not matter.
func Reconstruct(events []HistoricalEvent, now time.Time, lookback time.Duration) [len(Axes)][]Sample {
	var axes [len(Axes)][]Sample

	window := make([]HistoricalEvent, 0, len(events))
	from := now.Add(-lookback)
	for _, ev := range events {
		if ev.Timestamp.Before(from) || ev.Timestamp.After(now) {
			continue
		}
		window = append(window, ev)
	}
	sort.SliceStable(window, func(i, j int) bool {
		if !window[i].Timestamp.Equal(window[j].Timestamp) {
			return window[i].Timestamp.Before(window[j].Timestamp)
		}
		return window[i].ID < window[j].ID
	})

	for _, ev := range window {
		for _, as := range SamplesForEvent(ev) {
			axes[as.Axis] = append(axes[as.Axis], as.Sample)
		}
	}
	return axes
}
