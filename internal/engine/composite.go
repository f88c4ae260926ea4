package engine

// Weights are the operator-configured blend weights. They are not required
// to sum to 1; the base score is normalized by the sum of the three axis weights.
type Weights struct {
	TimePressure    float64 `json:"time_pressure"`
	ContentQuality  float64 `json:"content_quality"`
	BehaviorPattern float64 `json:"behavior_pattern"`
	Circadian       float64 `json:"circadian"`
}

// Axis returns the weight configured for a.
func (w Weights) Axis(a Axis) float64 {
	switch a {
	case TimePressure:
		return w.TimePressure
	case ContentQuality:
		return w.ContentQuality
	case BehaviorPattern:
		return w.BehaviorPattern
	}
	return 0
}

// CircadianParams scale the circadian amplifier.
type CircadianParams struct {
	ReferenceWeight float64 // circadian weight that yields the full MaxBoost
	MaxBoost        float64 // amplification at circadian value 1 and reference weight
}

// DefaultCircadianParams returns reference weight 0.15 and max boost 0.8 (up to +80%).
func DefaultCircadianParams() CircadianParams {
	return CircadianParams{ReferenceWeight: 0.15, MaxBoost: 0.8}
}

// BaseScore is the weighted mean of the axis values. All-zero weights yield 0.
func BaseScore(values [len(Axes)]float64, w Weights) float64 {
	var sum, weightSum float64
	for _, a := range Axes {
		wa := w.Axis(a)
		sum += values[a] * wa
		weightSum += wa
	}
	if weightSum <= 0 {
		return 0
	}
	return sum / weightSum
}

// CircadianBoost returns the multiplicative amplifier for a circadian value.
// It is never below 1: lateness can only amplify drift.
func CircadianBoost(circadian float64, w Weights, p CircadianParams) float64 {
	if !positive(p.ReferenceWeight) || !positive(w.Circadian) || !positive(p.MaxBoost) {
		return 1
	}
	return 1 + clamp01(circadian)*(w.Circadian/p.ReferenceWeight)*p.MaxBoost
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

// Blend combines axis values and the circadian value into the final composite.
func Blend(values [len(Axes)]float64, circadian float64, w Weights, p CircadianParams) float64 {
	base := BaseScore(values, w)
	return clamp01(base * CircadianBoost(circadian, w, p))
}
