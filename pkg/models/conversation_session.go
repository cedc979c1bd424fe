package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Session types.
const (
	SessionFreeform = "freeform"
	SessionLesson   = "lesson"
	SessionScenario = "scenario"
)

// ChatMessage is one entry in a session's ordered message log.
type ChatMessage struct {
	Role      string `json:"role"` // user | assistant
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// MessageLog is an ordered []ChatMessage stored as a JSON TEXT column.
type MessageLog []ChatMessage

func (m MessageLog) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *MessageLog) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// ErrorMade records a correction surfaced during conversation.
type ErrorMade struct {
	UserSaid   string `json:"user_said"`
	Correction string `json:"correction"`
	Concept    string `json:"concept,omitempty"`
}

// ErrorLog is a []ErrorMade stored as a JSON TEXT column.
type ErrorLog []ErrorMade

func (e ErrorLog) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (e *ErrorLog) Scan(src interface{}) error {
	return scanJSON(src, e)
}

// ConversationSession is an open-ended exchange with a learner. At most
// one session per learner is open at a time (lookup-before-create).
type ConversationSession struct {
	ID             string       `json:"id" db:"id"`
	UserID         string       `json:"user_id" db:"user_id"`
	StartedAt      time.Time    `json:"started_at" db:"started_at"`
	EndedAt        sql.NullTime `json:"ended_at" db:"ended_at"`
	SessionType    string       `json:"session_type" db:"session_type"`
	Messages       MessageLog   `json:"messages" db:"messages"`
	VocabPracticed StringList   `json:"vocab_practiced" db:"vocab_practiced"`
	ErrorsMade     ErrorLog     `json:"errors_made" db:"errors_made"`
	XPEarned       int          `json:"xp_earned" db:"xp_earned"`
	Completed      bool         `json:"completed" db:"completed"`
}
