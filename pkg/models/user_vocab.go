package models

import "time"

// VocabStatus is the learning state of a (user, vocab item) pair.
type VocabStatus string

const (
	StatusNew       VocabStatus = "new"
	StatusLearning  VocabStatus = "learning"
	StatusReviewing VocabStatus = "reviewing"
	StatusMastered  VocabStatus = "mastered"
)

// UserVocab tracks one learner's spaced-repetition state and mastery
// counters for a single vocabulary item. Created when the item is first
// introduced; updated on every review; never deleted.
type UserVocab struct {
	ID                     string      `json:"id" db:"id"`
	UserID                 string      `json:"user_id" db:"user_id"`
	VocabID                string      `json:"vocab_id" db:"vocab_id"`
	IntroducedInUnit       int         `json:"introduced_in_unit" db:"introduced_in_unit"`
	IntroducedInLesson     int         `json:"introduced_in_lesson" db:"introduced_in_lesson"`
	EaseFactor             float64     `json:"ease_factor" db:"ease_factor"`
	IntervalDays           int         `json:"interval_days" db:"interval_days"`
	Repetitions            int         `json:"repetitions" db:"repetitions"`
	NextReview             time.Time   `json:"next_review" db:"next_review"`
	TimesSeen              int         `json:"times_seen" db:"times_seen"`
	TimesProducedCorrectly int         `json:"times_produced_correctly" db:"times_produced_correctly"`
	TimesProducedWithHelp  int         `json:"times_produced_with_help" db:"times_produced_with_help"`
	TimesCorrected         int         `json:"times_corrected" db:"times_corrected"`
	LastSeen               time.Time   `json:"last_seen" db:"last_seen"`
	MasteryScore           float64     `json:"mastery_score" db:"mastery_score"`
	Status                 VocabStatus `json:"status" db:"status"`
	CreatedAt              time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at" db:"updated_at"`
}
