// Package commands implements the slash commands available to
// onboarded learners.
package commands

import (
	"context"
	"fmt"

	"github.com/example/holabot/internal/intent"
	"github.com/example/holabot/internal/onboarding"
	"github.com/example/holabot/internal/progression"
	"github.com/example/holabot/pkg/models"
)

type progressStore interface {
	CountByStatus(ctx context.Context, userID string) (map[models.VocabStatus]int, error)
	TotalLearned(ctx context.Context, userID string) (int, error)
	TotalMastered(ctx context.Context, userID string) (int, error)
}

type accountant interface {
	ProgressToNextLevel(user *models.User) progression.Progress
	GetStreakStatus(user *models.User) progression.StreakStatus
}

// Handler resolves slash commands into replies.
type Handler struct {
	progress progressStore
	xp       accountant
}

// New builds a command handler.
func New(progress progressStore, xp accountant) *Handler {
	return &Handler{progress: progress, xp: xp}
}

// Handle dispatches one recognized command.
func (h *Handler) Handle(ctx context.Context, user *models.User, command intent.Command, args string) (string, error) {
	switch command {
	case intent.CommandProgress:
		return h.handleProgress(ctx, user)
	case intent.CommandSettings:
		return h.handleSettings(user), nil
	case intent.CommandHelp:
		return h.handleHelp(), nil
	case intent.CommandWords:
		return h.handleWords(ctx, user)
	case intent.CommandReview:
		return h.handleWords(ctx, user)
	case intent.CommandLevel:
		return h.handleLevel(user), nil
	case intent.CommandPause:
		return h.handlePause(), nil
	case intent.CommandResume:
		return h.handleResume(user), nil
	case intent.CommandScenarios:
		return h.handlePractice(""), nil
	case intent.CommandPractice:
		return h.handlePractice(args), nil
	default:
		return "I don't recognize that command. Text /help for available commands.", nil
	}
}

func (h *Handler) handleProgress(ctx context.Context, user *models.User) (string, error) {
	progress := h.xp.ProgressToNextLevel(user)
	stats, err := h.progress.CountByStatus(ctx, user.ID)
	if err != nil {
		return "", err
	}
	totalLearned, err := h.progress.TotalLearned(ctx, user.ID)
	if err != nil {
		return "", err
	}
	totalMastered, err := h.progress.TotalMastered(ctx, user.ID)
	if err != nil {
		return "", err
	}
	streak := h.xp.GetStreakStatus(user)

	nextLevel := "max"
	if next, ok := user.CurrentLevel.Next(); ok {
		nextLevel = string(next)
	}

	atRiskNote := ""
	if streak.AtRisk {
		atRiskNote = "\n⚠️ " + streak.Message
	}

	return fmt.Sprintf(`📊 Tu Progreso

📈 Level
Current: %s (%s)
XP: %d / %d to %s

🔤 Vocabulary
Learned: %d words
Mastered: %d words
Reviewing: %d
Learning: %d

🔥 Streak
Current: %d days
Longest: %d days
%s
Keep going! ¡Sigue así! 💪`,
		user.CurrentLevel, user.CurrentLevel.Name(),
		progress.Current, progress.Required, nextLevel,
		totalLearned, totalMastered,
		stats[models.StatusReviewing], stats[models.StatusLearning],
		streak.Current, streak.Longest, atRiskNote), nil
}

func (h *Handler) handleSettings(user *models.User) string {
	dialect := "Latin American"
	if user.DialectPreference == models.DialectCastilian {
		dialect = "Castilian"
	}

	return fmt.Sprintf(`⚙️ Settings

1️⃣ Lessons & schedule
2️⃣ My level & progress
3️⃣ Language preferences
4️⃣ Reminders
5️⃣ View my profile

Reply with a number, or 'done' to exit.

Current settings:
• Lessons/day: %d
• Lesson time: %s
• Dialect: %s
• Accountability: %s`,
		user.DailyLessonCount,
		onboarding.FormatTime(user.LessonTime),
		dialect,
		user.AccountabilityLevel)
}

func (h *Handler) handleHelp() string {
	return `📚 Available Commands

/progress - View your stats
/settings - Adjust preferences
/words - See vocabulary breakdown
/level - Quick level check
/pause - Pause lessons
/resume - Resume lessons
/help - Show this message

You can also:
• Text in Spanish to practice
• Ask questions in English
• Just chat with me anytime!`
}

func (h *Handler) handleWords(ctx context.Context, user *models.User) (string, error) {
	stats, err := h.progress.CountByStatus(ctx, user.ID)
	if err != nil {
		return "", err
	}
	totalLearned, err := h.progress.TotalLearned(ctx, user.ID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`📚 Your Vocabulary (%d words)

By status:
• Mastered: %d ✓
• Reviewing: %d 🔄
• Learning: %d 📖
• New: %d ✨

Keep practicing! Every word you master is a step toward fluency.`,
		totalLearned,
		stats[models.StatusMastered], stats[models.StatusReviewing],
		stats[models.StatusLearning], stats[models.StatusNew]), nil
}

func (h *Handler) handleLevel(user *models.User) string {
	progress := h.xp.ProgressToNextLevel(user)

	levelLine := "You've reached the highest level!"
	if next, ok := user.CurrentLevel.Next(); ok {
		levelLine = fmt.Sprintf("Progress: %d/%d to %s (%d%%)",
			progress.Current, progress.Required, next, progress.Percentage)
	}

	return fmt.Sprintf(`📊 Level: %s (%s)

XP: %d total
%s

🔥 Streak: %d days`,
		user.CurrentLevel, user.CurrentLevel.Name(),
		user.XPTotal, levelLine, user.StreakDays)
}

func (h *Handler) handlePause() string {
	return `⏸️ Lessons paused.

I won't send scheduled lessons until you text /resume.

You can still text me anytime to practice!

How long do you want to pause?
• Reply "1 week" or "2 weeks"
• Or /resume to start again`
}

func (h *Handler) handleResume(user *models.User) string {
	return fmt.Sprintf(`▶️ Lessons resumed!

Your next lesson will arrive at %s.

Current streak: %d days
Let's keep it going! 🔥`,
		onboarding.FormatTime(user.LessonTime), user.StreakDays)
}

func (h *Handler) handlePractice(scenario string) string {
	if scenario == "" {
		return `🎭 Available Practice Scenarios:

• PRACTICE restaurant - Order food at a restaurant
• PRACTICE directions - Ask for directions
• PRACTICE shopping - Buy something at a store
• PRACTICE introduction - Meet someone new

Reply with one to start!`
	}

	return fmt.Sprintf(`Starting %q practice scenario...

(Scenarios coming soon! For now, just text me in Spanish to practice.)`, scenario)
}
