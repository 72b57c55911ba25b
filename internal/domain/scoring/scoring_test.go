package scoring_test

import (
	"testing"

	scoring "github.com/okian/compliance/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the classification bands", t, func() {
		cases := []struct {
			score float64
			label string
			color string
		}{
			{100, scoring.LabelExcellent, scoring.ColorGreen},
			{90, scoring.LabelExcellent, scoring.ColorGreen},
			{89.99, scoring.LabelGood, scoring.ColorYellow},
			{75, scoring.LabelGood, scoring.ColorYellow},
			{74.99, scoring.LabelAttention, scoring.ColorOrange},
			{50, scoring.LabelAttention, scoring.ColorOrange},
			{49.99, scoring.LabelCritical, scoring.ColorRed},
			{0, scoring.LabelCritical, scoring.ColorRed},
		}

		Convey("Then each boundary is inclusive on the lower side", func() {
			for _, c := range cases {
				got := scoring.Classify(c.score)
				So(got.Label, ShouldEqual, c.label)
				So(got.Color, ShouldEqual, c.color)
			}
		})

		Convey("Then out of range scores are not clamped", func() {
			So(scoring.Classify(150).Label, ShouldEqual, scoring.LabelExcellent)
			So(scoring.Classify(-5).Label, ShouldEqual, scoring.LabelCritical)
		})
	})

	Convey("Given an absent score", t, func() {
		Convey("Then ClassifyPtr returns nil", func() {
			So(scoring.ClassifyPtr(nil), ShouldBeNil)
		})
	})

	Convey("Given a present score", t, func() {
		s := 80.0

		Convey("Then ClassifyPtr matches Classify", func() {
			So(*scoring.ClassifyPtr(&s), ShouldResemble, scoring.Classify(s))
		})
	})
}

func TestComputeTrend(t *testing.T) {
	Convey("Given two scores", t, func() {
		Convey("When the score improves", func() {
			tr := scoring.ComputeTrend(70, 77.5)

			Convey("Then direction is up with rounded deltas", func() {
				So(tr.Direction, ShouldEqual, scoring.Up)
				So(tr.DeltaScore, ShouldEqual, 7.5)
				So(tr.DeltaPercent, ShouldEqual, 10.71)
				So(tr.From, ShouldEqual, 70)
				So(tr.To, ShouldEqual, 77.5)
			})
		})

		Convey("When the score drops", func() {
			tr := scoring.ComputeTrend(80, 60)

			Convey("Then direction is down", func() {
				So(tr.Direction, ShouldEqual, scoring.Down)
				So(tr.DeltaScore, ShouldEqual, -20)
				So(tr.DeltaPercent, ShouldEqual, -25)
			})
		})

		Convey("When the change is below epsilon", func() {
			tr := scoring.ComputeTrend(80, 80.000001)

			Convey("Then direction is flat", func() {
				So(tr.Direction, ShouldEqual, scoring.Flat)
				So(tr.DeltaScore, ShouldEqual, 0)
			})
		})

		Convey("When the previous score is zero", func() {
			tr := scoring.ComputeTrend(0, 40)

			Convey("Then the percent delta is zero instead of infinite", func() {
				So(tr.DeltaPercent, ShouldEqual, 0)
				So(tr.Direction, ShouldEqual, scoring.Up)
			})
		})
	})

	Convey("Given a single observation", t, func() {
		tr := scoring.SingleTrend(66.666)

		Convey("Then it is a first run without deltas", func() {
			So(tr.Direction, ShouldEqual, scoring.FirstRun)
			So(tr.From, ShouldEqual, 66.67)
			So(tr.To, ShouldEqual, 66.67)
			So(tr.DeltaScore, ShouldEqual, 0)
		})
	})
}
