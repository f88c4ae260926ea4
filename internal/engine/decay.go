package engine

import (
	"math"
	"time"
)

// Decay algorithm:
//   - each sample contributes weight × 2^(−elapsed/halfLife)
//   - clock skew (sample newer than now) is clamped to elapsed 0, never amplifying
//   - samples at or beyond evictionHalfLives × halfLife are dropped before summing;
//     their residual contribution is below 12.5%
//   - the decayed sum is clamped to [0, saturation] and normalized to [0,1]

// evictionHalfLives is the age, in half-lives, at which a sample is dropped.
const evictionHalfLives = 3

// DecayedWeight returns the contribution of s at now.
func DecayedWeight(s Sample, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	elapsed := now.Sub(s.Timestamp)
	if elapsed <= 0 {
		return s.Weight
	}
	return s.Weight * math.Exp2(-float64(elapsed)/float64(halfLife))
}

// Evict returns the samples still younger than three half-lives at now.
// The input slice is not modified; order is preserved.
func Evict(samples []Sample, now time.Time, halfLife time.Duration) []Sample {
	if len(samples) == 0 {
		return nil
	}
	kept := make([]Sample, 0, len(samples))
	for _, s := range samples {
		// Divide the age rather than multiply the half-life, which can overflow.
		if halfLife > 0 && now.Sub(s.Timestamp)/evictionHalfLives < halfLife {
			kept = append(kept, s)
		}
	}
	return kept
}

// AxisValue sums the decayed samples and normalizes the result by saturation.
func AxisValue(samples []Sample, now time.Time, p AxisParams) float64 {
	if p.Saturation <= 0 || p.HalfLife <= 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += DecayedWeight(s, now, p.HalfLife)
	}
	return clamp01(clamp(sum, 0, p.Saturation) / p.Saturation)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
