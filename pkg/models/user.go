package models

import "time"

// Dialect preference values.
const (
	DialectLatam     = "latam"
	DialectCastilian = "castilian"
)

// Accountability levels.
const (
	AccountabilityLight  = "light"
	AccountabilityMedium = "medium"
	AccountabilityHigh   = "high"
)

// User represents a learner, keyed by phone number. Created on the
// first-ever inbound message from an unseen number; never deleted.
type User struct {
	ID                    string     `json:"id" db:"id"`
	PhoneNumber           string     `json:"phone_number" db:"phone_number"`
	OnboardingStep        int        `json:"onboarding_step" db:"onboarding_step"`
	OnboardingCompleted   bool       `json:"onboarding_completed" db:"onboarding_completed"`
	CurrentLevel          Level      `json:"current_level" db:"current_level"`
	CurrentUnit           int        `json:"current_unit" db:"current_unit"`
	CurrentLesson         int        `json:"current_lesson" db:"current_lesson"`
	Goals                 StringList `json:"goals" db:"goals"`
	DialectPreference     string     `json:"dialect_preference" db:"dialect_preference"`
	DailyLessonCount      int        `json:"daily_lesson_count" db:"daily_lesson_count"`
	LessonTime            string     `json:"lesson_time" db:"lesson_time"` // HH:MM:SS wall clock
	AccountabilityLevel   string     `json:"accountability_level" db:"accountability_level"`
	XPTotal               int        `json:"xp_total" db:"xp_total"`
	XPCurrentLevel        int        `json:"xp_current_level" db:"xp_current_level"`
	StreakDays            int        `json:"streak_days" db:"streak_days"`
	LongestStreak         int        `json:"longest_streak" db:"longest_streak"`
	StreakLastActive      string     `json:"streak_last_active" db:"streak_last_active"` // YYYY-MM-DD, empty if never active
	TotalMessagesSent     int        `json:"total_messages_sent" db:"total_messages_sent"`
	TotalMessagesReceived int        `json:"total_messages_received" db:"total_messages_received"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}
