package progression

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/holabot/pkg/models"
)

// streakMilestones are the streak lengths that surface a celebratory
// message to the caller.
var streakMilestones = map[int]string{
	7:   "🔥 ONE WEEK STREAK! You're building a real habit. ¡Sigue así!",
	14:  "Two weeks of Spanish every day! You've learned more than most people who 'want to learn a language.' Keep going!",
	21:  "",
	30:  "🏆 30 DAYS! Un mes completo. You're in the top 5% of language learners. This is becoming part of who you are.",
	50:  "50 days. FIFTY. You're not just learning Spanish anymore — you're becoming someone who speaks Spanish.",
	100: "💯 ONE HUNDRED DAYS! ¡Increíble! This level of dedication is rare. You should be incredibly proud.",
	365: "🎉 ONE YEAR OF DAILY SPANISH! Un año entero. You've achieved what most people only dream about. ¡Eres increíble!",
}

const dateLayout = "2006-01-02"

// StreakResult is the outcome of one streak update.
type StreakResult struct {
	Updated   bool
	Streak    int
	BonusXP   int
	Milestone string
}

// UpdateStreak counts today's activity toward the learner's streak. It
// is a no-op when today was already counted. A calendar-day gap of
// exactly one, or recorded activity yesterday, continues the streak;
// any larger gap resets it to one, as does first-ever activity. A
// streak bonus is granted on every successful update.
func (a *Accountant) UpdateStreak(ctx context.Context, user *models.User) (StreakResult, error) {
	now := a.now()
	today := now.Format(dateLayout)

	if user.StreakLastActive == today {
		return StreakResult{Updated: false, Streak: user.StreakDays}, nil
	}

	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	hadYesterday, err := a.activity.HadActivity(ctx, user.ID, yesterday)
	if err != nil {
		return StreakResult{}, fmt.Errorf("failed to check yesterday's activity: %w", err)
	}

	var newStreak int
	switch {
	case user.StreakLastActive == "":
		// First-ever activity.
		newStreak = 1
	default:
		gap, err := daysBetween(user.StreakLastActive, today)
		if err != nil {
			return StreakResult{}, err
		}
		switch {
		case gap == 1 || hadYesterday:
			newStreak = user.StreakDays + 1
		case gap > 1:
			if user.StreakDays >= 7 {
				log.Printf("User %s broke a %d day streak", user.ID, user.StreakDays)
			}
			newStreak = 1
		default:
			newStreak = user.StreakDays
		}
	}

	if err := a.users.UpdateStreak(ctx, user.ID, newStreak, today); err != nil {
		return StreakResult{}, fmt.Errorf("failed to update streak: %w", err)
	}
	user.StreakDays = newStreak
	if newStreak > user.LongestStreak {
		user.LongestStreak = newStreak
	}
	user.StreakLastActive = today

	bonus := StreakBonus(newStreak)
	if _, err := a.AwardXP(ctx, user, bonus, fmt.Sprintf("Streak day %d", newStreak)); err != nil {
		return StreakResult{}, err
	}
	if err := a.activity.AddXP(ctx, user.ID, today, bonus); err != nil {
		return StreakResult{}, err
	}
	if err := a.activity.MarkStreakCounted(ctx, user.ID, today); err != nil {
		return StreakResult{}, err
	}

	return StreakResult{
		Updated:   true,
		Streak:    newStreak,
		BonusXP:   bonus,
		Milestone: milestoneMessage(newStreak),
	}, nil
}

// StreakStatus reports the current streak and whether it is at risk
// (nothing today and the evening already under way).
type StreakStatus struct {
	Current int
	Longest int
	AtRisk  bool
	Message string
}

// GetStreakStatus summarizes the learner's streak for status reports.
func (a *Accountant) GetStreakStatus(user *models.User) StreakStatus {
	now := a.now()
	today := now.Format(dateLayout)

	atRisk := false
	if user.StreakLastActive != "" && user.StreakLastActive != today && now.Hour() >= 20 {
		atRisk = true
	}

	status := StreakStatus{
		Current: user.StreakDays,
		Longest: user.LongestStreak,
		AtRisk:  atRisk,
	}
	if atRisk {
		status.Message = fmt.Sprintf("Your %d day streak is at risk! Practice now to keep it going.", user.StreakDays)
	}
	return status
}

func milestoneMessage(streak int) string {
	msg, ok := streakMilestones[streak]
	if !ok {
		return ""
	}
	if msg == "" {
		return fmt.Sprintf("🔥 %d day streak!", streak)
	}
	return msg
}

// daysBetween returns the absolute whole-day distance between two
// calendar dates.
func daysBetween(a, b string) (int, error) {
	da, err := time.Parse(dateLayout, a)
	if err != nil {
		return 0, fmt.Errorf("bad date %q: %w", a, err)
	}
	db, err := time.Parse(dateLayout, b)
	if err != nil {
		return 0, fmt.Errorf("bad date %q: %w", b, err)
	}
	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days, nil
}
