package scoring

import "math"

// Direction of a score change.
type Direction string

const (
	Up       Direction = "up"
	Down     Direction = "down"
	Flat     Direction = "flat"
	FirstRun Direction = "first_run"
)

const (
	epsilon       = 0.00001
	decimalPlaces = 2
)

// Trend describes the change between two consecutive scores.
type Trend struct {
	From         float64   `json:"from"`
	To           float64   `json:"to"`
	DeltaScore   float64   `json:"delta_score"`
	DeltaPercent float64   `json:"delta_percent"`
	Direction    Direction `json:"direction"`
}

// ComputeTrend compares prev to curr. DeltaPercent is 0 when prev is 0.
// All values are rounded to two decimal places, half away from zero.
func ComputeTrend(prev, curr float64) Trend {
	d := curr - prev

	dir := Flat
	if d > epsilon {
		dir = Up
	} else if d < -epsilon {
		dir = Down
	}

	dp := 0.0
	if math.Abs(prev) > epsilon {
		dp = (d / prev) * 100.0
	}

	return Trend{
		From:         round(prev, decimalPlaces),
		To:           round(curr, decimalPlaces),
		DeltaScore:   round(d, decimalPlaces),
		DeltaPercent: round(dp, decimalPlaces),
		Direction:    dir,
	}
}

// SingleTrend is the trend of a series with only one observation.
func SingleTrend(curr float64) Trend {
	c := round(curr, decimalPlaces)
	return Trend{From: c, To: c, Direction: FirstRun}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
