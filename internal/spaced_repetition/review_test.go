package spaced_repetition

import (
	"testing"
	"time"

	"github.com/example/holabot/pkg/models"
)

func freshItem() *models.UserVocab {
	return &models.UserVocab{
		EaseFactor:   2.5,
		IntervalDays: 1,
		Repetitions:  0,
		Status:       models.StatusNew,
	}
}

func TestPerfectReviewSequence(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uv := freshItem()

	Review(uv, QualityPerfect, now)
	if uv.Repetitions != 1 || uv.IntervalDays != 1 {
		t.Fatalf("first review: reps=%d interval=%d, want 1/1", uv.Repetitions, uv.IntervalDays)
	}
	if !almostEqual(uv.EaseFactor, 2.6) {
		t.Fatalf("first review: ease=%f, want 2.6", uv.EaseFactor)
	}

	Review(uv, QualityPerfect, now)
	if uv.Repetitions != 2 || uv.IntervalDays != 3 {
		t.Fatalf("second review: reps=%d interval=%d, want 2/3", uv.Repetitions, uv.IntervalDays)
	}
	if !almostEqual(uv.EaseFactor, 2.7) {
		t.Fatalf("second review: ease=%f, want 2.7", uv.EaseFactor)
	}

	Review(uv, QualityPerfect, now)
	if uv.Repetitions != 3 || uv.IntervalDays != 8 {
		t.Fatalf("third review: reps=%d interval=%d, want 3/8", uv.Repetitions, uv.IntervalDays)
	}
	if !almostEqual(uv.EaseFactor, 2.8) {
		t.Fatalf("third review: ease=%f, want 2.8", uv.EaseFactor)
	}
}

func TestFailureResetsProgress(t *testing.T) {
	now := time.Now()
	uv := freshItem()
	uv.Repetitions = 6
	uv.IntervalDays = 42
	uv.EaseFactor = 2.1

	Review(uv, QualityFailed, now)

	if uv.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0", uv.Repetitions)
	}
	if uv.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1", uv.IntervalDays)
	}
	if uv.TimesCorrected != 1 {
		t.Errorf("times_corrected = %d, want 1", uv.TimesCorrected)
	}
}

func TestEaseFactorFloor(t *testing.T) {
	now := time.Now()
	uv := freshItem()

	// Repeated failures push the ease factor down 0.5 per attempt; it
	// must never drop under 1.3.
	for i := 0; i < 10; i++ {
		Review(uv, QualityFailed, now)
		if uv.EaseFactor < MinEaseFactor {
			t.Fatalf("ease factor %f fell below floor after %d failures", uv.EaseFactor, i+1)
		}
	}
	if !almostEqual(uv.EaseFactor, MinEaseFactor) {
		t.Errorf("ease factor = %f, want floor %f", uv.EaseFactor, MinEaseFactor)
	}
}

func TestEaseFactorNeverDecreasesOnPerfect(t *testing.T) {
	now := time.Now()
	uv := freshItem()
	prev := uv.EaseFactor
	for i := 0; i < 20; i++ {
		Review(uv, QualityPerfect, now)
		if uv.EaseFactor < prev {
			t.Fatalf("ease factor decreased on perfect review: %f -> %f", prev, uv.EaseFactor)
		}
		prev = uv.EaseFactor
	}
}

func TestMasteryScoreFloor(t *testing.T) {
	now := time.Now()
	qualities := [][]Quality{
		{QualityFailed, QualityFailed, QualityFailed},
		{QualityWithHelp, QualityWithHelp},
		{QualityFailed, QualityWithHelp, QualityFailed, QualityHesitant},
		{QualityPerfect, QualityFailed},
	}
	for _, seq := range qualities {
		uv := freshItem()
		for _, q := range seq {
			Review(uv, q, now)
			if uv.MasteryScore < 0.3 {
				t.Fatalf("mastery score %f below 0.3 floor for sequence %v", uv.MasteryScore, seq)
			}
		}
	}
}

func TestOutcomeCounterSelection(t *testing.T) {
	now := time.Now()
	tests := []struct {
		quality                      Quality
		correct, withHelp, corrected int
	}{
		{QualityPerfect, 1, 0, 0},
		{QualityHesitant, 0, 1, 0},
		{QualityWithHelp, 0, 1, 0},
		{QualityFailed, 0, 0, 1},
	}
	for _, tt := range tests {
		uv := freshItem()
		Review(uv, tt.quality, now)
		if uv.TimesProducedCorrectly != tt.correct ||
			uv.TimesProducedWithHelp != tt.withHelp ||
			uv.TimesCorrected != tt.corrected {
			t.Errorf("quality %d: counters (%d,%d,%d), want (%d,%d,%d)",
				tt.quality,
				uv.TimesProducedCorrectly, uv.TimesProducedWithHelp, uv.TimesCorrected,
				tt.correct, tt.withHelp, tt.corrected)
		}
		if uv.TimesSeen != 1 {
			t.Errorf("quality %d: times_seen = %d, want 1", tt.quality, uv.TimesSeen)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	now := time.Now()
	uv := freshItem()

	Review(uv, QualityPerfect, now)
	if uv.Status != models.StatusReviewing {
		t.Fatalf("status after one success = %s, want reviewing", uv.Status)
	}

	// Enough clean repetitions push mastery over 0.85 with reps >= 5.
	for i := 0; i < 7; i++ {
		Review(uv, QualityPerfect, now)
	}
	if uv.Status != models.StatusMastered {
		t.Fatalf("status after 8 perfect reviews = %s (mastery %f), want mastered", uv.Status, uv.MasteryScore)
	}
}

func TestNextReviewDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	uv := freshItem()
	Review(uv, QualityPerfect, now)
	want := now.AddDate(0, 0, 1)
	if !uv.NextReview.Equal(want) {
		t.Errorf("next review = %v, want %v", uv.NextReview, want)
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	return a-b < eps && b-a < eps
}
