package models

// Level is a CEFR-style proficiency level.
type Level string

const (
	LevelA0 Level = "A0"
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
)

// Levels in ascending order.
var Levels = []Level{LevelA0, LevelA1, LevelA2, LevelB1, LevelB2}

// Name returns the human-readable name for a level.
func (l Level) Name() string {
	switch l {
	case LevelA0:
		return "Absolute Beginner"
	case LevelA1:
		return "Beginner"
	case LevelA2:
		return "Elementary"
	case LevelB1:
		return "Intermediate"
	case LevelB2:
		return "Upper Intermediate"
	}
	return string(l)
}

// Next returns the level above l, or false at the top.
func (l Level) Next() (Level, bool) {
	for i, lvl := range Levels {
		if lvl == l && i+1 < len(Levels) {
			return Levels[i+1], true
		}
	}
	return "", false
}
