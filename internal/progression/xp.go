// Package progression tracks experience, proficiency levels, and daily
// streaks for learners.
package progression

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/holabot/pkg/models"
)

// Experience rewards, mirroring the product's reward table.
const (
	XPLessonComplete     = 10
	XPLessonCorrectFirst = 15
	XPNewVocabCorrect    = 15
	XPNewVocabUnprompted = 25
	XPLessonAttempt      = 5
	XPFreeformExchange   = 5
	XPCorrectMistake     = 20
	XPUnitComplete       = 100
	XPOnboardingComplete = 15
	XPStreakBonusCap     = 70
)

// StreakBonus is the experience granted when a streak day is counted.
func StreakBonus(days int) int {
	bonus := days * 10
	if bonus > XPStreakBonusCap {
		bonus = XPStreakBonusCap
	}
	return bonus
}

// levelThresholds maps each level to the lifetime experience required
// to reach it.
var levelThresholds = map[models.Level]int{
	models.LevelA0: 0,
	models.LevelA1: 500,
	models.LevelA2: 2000,
	models.LevelB1: 6000,
	models.LevelB2: 15000,
}

// userStore is the slice of the user repository progression needs.
type userStore interface {
	AddXP(ctx context.Context, id string, amount int) (*models.User, error)
	SetLevel(ctx context.Context, id string, level models.Level, xpCurrentLevel int) error
	UpdateStreak(ctx context.Context, id string, days int, today string) error
}

// activityStore is the slice of the daily-activity repository needed
// for streak accounting.
type activityStore interface {
	AddXP(ctx context.Context, userID, date string, xp int) error
	MarkStreakCounted(ctx context.Context, userID, date string) error
	HadActivity(ctx context.Context, userID, date string) (bool, error)
}

// Accountant accrues experience and maintains streaks.
type Accountant struct {
	users    userStore
	activity activityStore

	// now is injectable for tests.
	now func() time.Time
}

// New creates an accountant over the given stores.
func New(users userStore, activity activityStore) *Accountant {
	return &Accountant{users: users, activity: activity, now: time.Now}
}

// LevelUp describes a level advancement triggered by an experience award.
type LevelUp struct {
	NewLevel models.Level
	Message  string
}

// AwardXP grants experience, refreshes the passed user in place, and
// advances the level when the lifetime total crosses the next
// threshold. One award advances at most one level.
func (a *Accountant) AwardXP(ctx context.Context, user *models.User, amount int, reason string) (*LevelUp, error) {
	log.Printf("Awarding %d XP to %s: %s", amount, user.ID, reason)

	updated, err := a.users.AddXP(ctx, user.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to award xp: %w", err)
	}
	if updated != nil {
		*user = *updated
	}

	next, ok := user.CurrentLevel.Next()
	if !ok {
		return nil, nil
	}
	threshold := levelThresholds[next]
	if user.XPTotal < threshold {
		return nil, nil
	}

	remaining := user.XPTotal - threshold
	if err := a.users.SetLevel(ctx, user.ID, next, remaining); err != nil {
		return nil, fmt.Errorf("failed to advance level: %w", err)
	}
	user.CurrentLevel = next
	user.XPCurrentLevel = remaining
	log.Printf("User %s leveled up to %s", user.ID, next)

	return &LevelUp{NewLevel: next, Message: levelUpMessage(next)}, nil
}

// Progress describes position within the current level.
type Progress struct {
	Current    int
	Required   int
	Percentage int
}

// ProgressToNextLevel reports how far the learner is through the
// current level; at the top level it reports 100%.
func (a *Accountant) ProgressToNextLevel(user *models.User) Progress {
	next, ok := user.CurrentLevel.Next()
	if !ok {
		return Progress{Current: user.XPTotal, Required: user.XPTotal, Percentage: 100}
	}

	currentThreshold := levelThresholds[user.CurrentLevel]
	nextThreshold := levelThresholds[next]
	required := nextThreshold - currentThreshold
	current := user.XPTotal - currentThreshold
	percentage := 0
	if required > 0 {
		percentage = int(float64(current)/float64(required)*100 + 0.5)
	}
	return Progress{Current: current, Required: required, Percentage: percentage}
}

func levelUpMessage(level models.Level) string {
	switch level {
	case models.LevelA1:
		return "🎉 ¡Felicidades! You've reached A1 (Beginner)! You're learning the fundamentals — basic present tense, common phrases, numbers and greetings. Keep going! 💪"
	case models.LevelA2:
		return "🎉 ¡Felicidades! You've reached A2 (Elementary)! You now know 500+ words and can talk about the past. New content unlocked: the preterite and richer scenarios. ¡Sigue así! 🌟"
	case models.LevelB1:
		return "🎉 ¡Felicidades! You've reached B1 (Intermediate)! You can handle most real-world situations in Spanish. New content unlocked: the subjunctive and complex sentences. 🚀"
	case models.LevelB2:
		return "🎉 ¡Felicidades! You've reached B2 (Upper Intermediate)! You're approaching fluency — nuanced expressions, idioms, native-level conversation. ¡Eres increíble! 🏆"
	}
	return fmt.Sprintf("🎉 ¡Felicidades! You've reached %s!", level)
}
