// Package scoring turns raw compliance scores into presentation labels and
// trends. It never computes a score itself; scores come from the external
// audit engine.
package scoring

// Classification thresholds. Lower bounds are inclusive.
const (
	excellentThreshold = 90
	goodThreshold      = 75
	attentionThreshold = 50
)

// Labels.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelAttention = "Attention"
	LabelCritical  = "Critical"
)

// Colors.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
)

// Classification is the label and color band for a score.
type Classification struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Classify maps a score to its band. Out of range values are not clamped:
// anything at or above 90 is Excellent and anything below 50 is Critical.
func Classify(score float64) Classification {
	switch {
	case score >= excellentThreshold:
		return Classification{Label: LabelExcellent, Color: ColorGreen}
	case score >= goodThreshold:
		return Classification{Label: LabelGood, Color: ColorYellow}
	case score >= attentionThreshold:
		return Classification{Label: LabelAttention, Color: ColorOrange}
	default:
		return Classification{Label: LabelCritical, Color: ColorRed}
	}
}

// ClassifyPtr returns nil for an absent score.
func ClassifyPtr(score *float64) *Classification {
	if score == nil {
		return nil
	}
	c := Classify(*score)
	return &c
}
