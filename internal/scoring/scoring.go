// Package scoring holds the pure score primitives every aggregation in the
// repository is built from.
//
// A score of 0 means "not scored yet". Every average skips values <= 0, so
// a legitimately terrible answer and an unscored one look the same to the
// analytics; that convention is kept deliberately stable.
package scoring

import (
	"math"
	"strings"
)

// Accuracy labels returned by answer evaluation.
const (
	LabelExcellent = "excellent"
	LabelGood      = "good"
	LabelPartial   = "partial"
	LabelIncorrect = "incorrect"
	LabelIDK       = "idk"
)

// NeutralScore is used for labels outside the known set.
const NeutralScore = 5

// MaxScore is the upper bound of a question score.
const MaxScore = 10

var labelScores = map[string]int{
	LabelExcellent: 9,
	LabelGood:      7,
	LabelPartial:   5,
	LabelIncorrect: 2,
	LabelIDK:       1,
}

// Labels returns the known accuracy labels, best first.
func Labels() []string {
	return []string{LabelExcellent, LabelGood, LabelPartial, LabelIncorrect, LabelIDK}
}

// ScoreFromAccuracyLabel maps an accuracy label to a question score.
// Unknown labels score NeutralScore.
func ScoreFromAccuracyLabel(label string) int {
	if s, ok := labelScores[strings.ToLower(strings.TrimSpace(label))]; ok {
		return s
	}
	return NeutralScore
}

// Average returns the mean of the scores strictly greater than zero,
// rounded to one decimal. It returns 0 when nothing is scoreable.
func Average(scores []float64) float64 {
	sum, n := SumScored(scores)
	if n == 0 {
		return 0
	}
	return Round1(sum / float64(n))
}

// SumScored returns the sum and count of the scores strictly greater than
// zero.
func SumScored(scores []float64) (float64, int) {
	var sum float64
	var n int
	for _, s := range scores {
		if s > 0 {
			sum += s
			n++
		}
	}
	return sum, n
}

// Percentage returns round(100*part/whole), or 0 when whole <= 0.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// Round1 rounds x to one decimal place, halves away from zero.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
