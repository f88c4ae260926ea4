package engine

import "time"

// DefaultBedtimeHour is used when no bedtime is configured.
const DefaultBedtimeHour = 23

// CircadianValue maps the wall-clock time of now (in its own location) and
// the configured bedtime hour to a lateness value in [0,1]. It has no memory.
func CircadianValue(now time.Time, bedtimeHour int) float64 {
	hour := float64(now.Hour()) +
		float64(now.Minute())/60 +
		float64(now.Second())/3600 +
		float64(now.Nanosecond())/3.6e12

	untilBedtime := float64(bedtimeHour) - hour
	if untilBedtime > 12 {
		untilBedtime -= 24
	} else if untilBedtime < -12 {
		untilBedtime += 24
	}

	switch {
	case untilBedtime > 4:
		return 0
	case untilBedtime > 2:
		return 0.2
	case untilBedtime > 0:
		return 0.5
	default:
		return 1.0
	}
}
