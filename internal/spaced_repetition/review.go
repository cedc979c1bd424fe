// Package spaced_repetition implements the review-interval algorithm: a
// 4-point variant of SM-2 driving per-item scheduling state.
package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/holabot/pkg/models"
)

// Quality grades a single review attempt on the 4-point scale.
type Quality int

const (
	// QualityFailed: could not produce the item at all.
	QualityFailed Quality = 0
	// QualityWithHelp: produced only after help.
	QualityWithHelp Quality = 1
	// QualityHesitant: produced correctly, with hesitation.
	QualityHesitant Quality = 2
	// QualityPerfect: produced correctly and confidently.
	QualityPerfect Quality = 3
)

// MinEaseFactor is the floor the ease factor never drops under. There
// is no upper cap.
const MinEaseFactor = 1.3

// Review applies one graded attempt to a progress row, updating the
// scheduling state, the mastery counters, and the derived status. The
// row must be persisted by the caller in a single write; callers
// serialize reviews per learner.
func Review(uv *models.UserVocab, quality Quality, now time.Time) {
	if quality < QualityHesitant {
		// Failure path: start over from a one-day interval.
		uv.Repetitions = 0
		uv.IntervalDays = 1
	} else {
		switch uv.Repetitions {
		case 0:
			uv.IntervalDays = 1
		case 1:
			uv.IntervalDays = 3
		default:
			uv.IntervalDays = int(math.Round(float64(uv.IntervalDays) * uv.EaseFactor))
		}
		uv.Repetitions++
	}

	// The ease factor moves on both paths and is floored, never capped.
	uv.EaseFactor = math.Max(MinEaseFactor, uv.EaseFactor+0.1-float64(3-quality)*0.2)

	uv.NextReview = now.AddDate(0, 0, uv.IntervalDays)

	// Mastery uses the counters as they stood before this attempt; the
	// +1 in the denominator smooths items with little history.
	accuracy := float64(uv.TimesProducedCorrectly) /
		float64(uv.TimesProducedCorrectly+uv.TimesProducedWithHelp+uv.TimesCorrected+1)
	repScore := math.Min(1, float64(uv.Repetitions)/8)
	uv.MasteryScore = accuracy*0.4 + repScore*0.3 + 0.3

	switch {
	case uv.MasteryScore > 0.85 && uv.Repetitions >= 5:
		uv.Status = models.StatusMastered
	case uv.Repetitions >= 1:
		uv.Status = models.StatusReviewing
	default:
		uv.Status = models.StatusLearning
	}

	switch {
	case quality == QualityPerfect:
		uv.TimesProducedCorrectly++
	case quality >= QualityWithHelp:
		uv.TimesProducedWithHelp++
	default:
		uv.TimesCorrected++
	}
	uv.TimesSeen++
	uv.LastSeen = now
}
