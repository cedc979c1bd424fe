package models

// DailyActivity is one learner's activity for one calendar day. Created
// lazily on the first activity of the day; not touched after the day
// rolls over.
type DailyActivity struct {
	ID               string     `json:"id" db:"id"`
	UserID           string     `json:"user_id" db:"user_id"`
	Date             string     `json:"date" db:"date"` // YYYY-MM-DD
	MessagesSent     int        `json:"messages_sent" db:"messages_sent"`
	MessagesReceived int        `json:"messages_received" db:"messages_received"`
	LessonsCompleted int        `json:"lessons_completed" db:"lessons_completed"`
	VocabReviewed    StringList `json:"vocab_reviewed" db:"vocab_reviewed"`
	VocabMastered    StringList `json:"vocab_mastered" db:"vocab_mastered"`
	XPEarned         int        `json:"xp_earned" db:"xp_earned"`
	StreakCounted    bool       `json:"streak_counted" db:"streak_counted"`
}
