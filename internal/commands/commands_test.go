package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/holabot/internal/intent"
	"github.com/example/holabot/internal/progression"
	"github.com/example/holabot/pkg/models"
)

type fakeProgressStore struct {
	counts   map[models.VocabStatus]int
	learned  int
	mastered int
}

func (f *fakeProgressStore) CountByStatus(_ context.Context, _ string) (map[models.VocabStatus]int, error) {
	return f.counts, nil
}

func (f *fakeProgressStore) TotalLearned(_ context.Context, _ string) (int, error) {
	return f.learned, nil
}

func (f *fakeProgressStore) TotalMastered(_ context.Context, _ string) (int, error) {
	return f.mastered, nil
}

type fakeAccountant struct {
	progress progression.Progress
	streak   progression.StreakStatus
}

func (f *fakeAccountant) ProgressToNextLevel(_ *models.User) progression.Progress {
	return f.progress
}

func (f *fakeAccountant) GetStreakStatus(_ *models.User) progression.StreakStatus {
	return f.streak
}

func newTestHandler() *Handler {
	return New(
		&fakeProgressStore{
			counts: map[models.VocabStatus]int{
				models.StatusNew:       2,
				models.StatusLearning:  5,
				models.StatusReviewing: 3,
				models.StatusMastered:  4,
			},
			learned:  14,
			mastered: 4,
		},
		&fakeAccountant{
			progress: progression.Progress{Current: 250, Required: 500, Percentage: 50},
			streak:   progression.StreakStatus{Current: 6, Longest: 9},
		},
	)
}

func commandUser() *models.User {
	return &models.User{
		ID:                  "u1",
		CurrentLevel:        models.LevelA1,
		XPTotal:             750,
		StreakDays:          6,
		DailyLessonCount:    2,
		LessonTime:          "09:00:00",
		DialectPreference:   models.DialectLatam,
		AccountabilityLevel: models.AccountabilityMedium,
	}
}

func TestHandleProgress(t *testing.T) {
	h := newTestHandler()

	reply, err := h.Handle(context.Background(), commandUser(), intent.CommandProgress, "")
	require.NoError(t, err)

	assert.Contains(t, reply, "Tu Progreso")
	assert.Contains(t, reply, "Current: A1")
	assert.Contains(t, reply, "XP: 250 / 500 to A2")
	assert.Contains(t, reply, "Learned: 14 words")
	assert.Contains(t, reply, "Mastered: 4 words")
	assert.Contains(t, reply, "Current: 6 days")
	assert.Contains(t, reply, "Longest: 9 days")
	assert.NotContains(t, reply, "⚠️")
}

func TestHandleProgressShowsAtRiskWarning(t *testing.T) {
	h := newTestHandler()
	h.xp = &fakeAccountant{
		streak: progression.StreakStatus{Current: 6, Longest: 9, AtRisk: true, Message: "Practice today to keep your streak!"},
	}

	reply, err := h.Handle(context.Background(), commandUser(), intent.CommandProgress, "")
	require.NoError(t, err)
	assert.Contains(t, reply, "⚠️ Practice today")
}

func TestHandleSettingsShowsPreferences(t *testing.T) {
	h := newTestHandler()

	reply, err := h.Handle(context.Background(), commandUser(), intent.CommandSettings, "")
	require.NoError(t, err)
	assert.Contains(t, reply, "Lessons/day: 2")
	assert.Contains(t, reply, "Lesson time: 9 AM")
	assert.Contains(t, reply, "Dialect: Latin American")
}

func TestHandleWordsBreaksDownByStatus(t *testing.T) {
	h := newTestHandler()

	reply, err := h.Handle(context.Background(), commandUser(), intent.CommandWords, "")
	require.NoError(t, err)
	assert.Contains(t, reply, "(14 words)")
	assert.Contains(t, reply, "Mastered: 4")
	assert.Contains(t, reply, "Learning: 5")
	assert.Contains(t, reply, "New: 2")
}

func TestHandleLevelAtCeiling(t *testing.T) {
	h := newTestHandler()
	user := commandUser()
	user.CurrentLevel = models.LevelB2

	reply, err := h.Handle(context.Background(), user, intent.CommandLevel, "")
	require.NoError(t, err)
	assert.Contains(t, reply, "highest level")
}

func TestHandlePracticeListsScenarios(t *testing.T) {
	h := newTestHandler()

	reply, err := h.Handle(context.Background(), commandUser(), intent.CommandPractice, "")
	require.NoError(t, err)
	assert.Contains(t, reply, "restaurant")

	reply, err = h.Handle(context.Background(), commandUser(), intent.CommandPractice, "restaurant")
	require.NoError(t, err)
	assert.Contains(t, reply, `Starting "restaurant"`)
}

func TestHandleUnknownCommand(t *testing.T) {
	h := newTestHandler()

	reply, err := h.Handle(context.Background(), commandUser(), intent.Command("bogus"), "")
	require.NoError(t, err)
	assert.Contains(t, reply, "/help")
}
