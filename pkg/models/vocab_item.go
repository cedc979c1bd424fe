package models

import "time"

// VocabItem is an immutable catalog entry owned by the content pipeline.
// The core only reads these.
type VocabItem struct {
	ID                string    `json:"id" db:"id"`
	Spanish           string    `json:"spanish" db:"spanish"`
	English           string    `json:"english" db:"english"`
	Phonetic          string    `json:"phonetic" db:"phonetic"`
	Level             Level     `json:"level" db:"level"`
	Unit              int       `json:"unit" db:"unit"`
	Sequence          int       `json:"sequence" db:"sequence"` // position within the unit
	ExampleSentenceES string    `json:"example_sentence_es" db:"example_sentence_es"`
	ExampleSentenceEN string    `json:"example_sentence_en" db:"example_sentence_en"`
	Category          string    `json:"category" db:"category"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
