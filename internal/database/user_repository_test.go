package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/holabot/pkg/models"
)

func TestCreateUserAppliesDefaults(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "+15551234567", user.PhoneNumber)
	assert.Equal(t, models.LevelA0, user.CurrentLevel)
	assert.Equal(t, 1, user.CurrentUnit)
	assert.Equal(t, "09:00:00", user.LessonTime)
	assert.Equal(t, "", user.StreakLastActive)
	assert.False(t, user.OnboardingCompleted)
}

func TestGetByPhoneAbsentReturnsNil(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.GetByPhone(context.Background(), "+15550000000")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetByIDAbsentReturnsNil(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.GetByID(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateDuplicatePhoneFails(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "+15551234567")
	assert.Error(t, err)
}

func TestUpdateWritesPreferences(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)

	user.CurrentLevel = models.LevelA2
	user.CurrentUnit = 4
	user.Goals = models.StringList{"travel", "family"}
	user.DialectPreference = "spain"
	user.LessonTime = "18:30:00"
	user.AccountabilityLevel = models.AccountabilityHigh
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LevelA2, got.CurrentLevel)
	assert.Equal(t, 4, got.CurrentUnit)
	assert.Equal(t, models.StringList{"travel", "family"}, got.Goals)
	assert.Equal(t, "spain", got.DialectPreference)
	assert.Equal(t, "18:30:00", got.LessonTime)
	assert.Equal(t, models.AccountabilityHigh, got.AccountabilityLevel)
}

func TestOnboardingStepProgression(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)

	require.NoError(t, repo.IncrementOnboardingStep(ctx, user.ID))
	require.NoError(t, repo.IncrementOnboardingStep(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.OnboardingStep)

	require.NoError(t, repo.CompleteOnboarding(ctx, user.ID))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.OnboardingCompleted)
	assert.Equal(t, 8, got.OnboardingStep)
}

func TestAddXPIncrementsBothTotals(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)

	got, err := repo.AddXP(ctx, user.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, got.XPTotal)
	assert.Equal(t, 15, got.XPCurrentLevel)

	got, err = repo.AddXP(ctx, user.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 20, got.XPTotal)
	assert.Equal(t, 20, got.XPCurrentLevel)
}

func TestSetLevelResetsWithinLevelTotal(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)
	_, err = repo.AddXP(ctx, user.ID, 510)
	require.NoError(t, err)

	require.NoError(t, repo.SetLevel(ctx, user.ID, models.LevelA1, 10))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LevelA1, got.CurrentLevel)
	assert.Equal(t, 510, got.XPTotal)
	assert.Equal(t, 10, got.XPCurrentLevel)
}

func TestAdvanceUnitResetsLessonCursor(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)
	user.CurrentLesson = 7
	require.NoError(t, repo.Update(ctx, user))

	require.NoError(t, repo.AdvanceUnit(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentUnit)
	assert.Equal(t, 1, got.CurrentLesson)
}

func TestUpdateStreakKeepsLongest(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStreak(ctx, user.ID, 5, "2026-03-10"))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StreakDays)
	assert.Equal(t, 5, got.LongestStreak)
	assert.Equal(t, "2026-03-10", got.StreakLastActive)

	// A reset to 1 must not shrink the longest streak.
	require.NoError(t, repo.UpdateStreak(ctx, user.ID, 1, "2026-03-14"))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StreakDays)
	assert.Equal(t, 5, got.LongestStreak)
	assert.Equal(t, "2026-03-14", got.StreakLastActive)
}

func TestIncrementMessageCount(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, "+15551234567")
	require.NoError(t, err)

	require.NoError(t, repo.IncrementMessageCount(ctx, user.ID, false))
	require.NoError(t, repo.IncrementMessageCount(ctx, user.ID, false))
	require.NoError(t, repo.IncrementMessageCount(ctx, user.ID, true))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalMessagesReceived)
	assert.Equal(t, 1, got.TotalMessagesSent)
}

func TestGetUsersDueForLesson(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	due, err := repo.Create(ctx, "+15551111111")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, due.ID))

	// Active earlier this week but not today: still due.
	activeBefore, err := repo.Create(ctx, "+15552222222")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, activeBefore.ID))
	require.NoError(t, repo.UpdateStreak(ctx, activeBefore.ID, 3, "2026-03-09"))

	// Already active today: not due again.
	activeToday, err := repo.Create(ctx, "+15553333333")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, activeToday.ID))
	require.NoError(t, repo.UpdateStreak(ctx, activeToday.ID, 4, "2026-03-10"))

	// Still mid-intake: never due.
	notOnboarded, err := repo.Create(ctx, "+15554444444")
	require.NoError(t, err)
	_ = notOnboarded

	// Different delivery time.
	evening, err := repo.Create(ctx, "+15555555555")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, evening.ID))
	evening.LessonTime = "19:00:00"
	require.NoError(t, repo.Update(ctx, evening))

	users, err := repo.GetUsersDueForLesson(ctx, "09:00:00", "2026-03-10")
	require.NoError(t, err)

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{due.ID, activeBefore.ID}, ids)
}

func TestGetUsersWithStreakAtRisk(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	atRisk, err := repo.Create(ctx, "+15551111111")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, atRisk.ID))
	require.NoError(t, repo.UpdateStreak(ctx, atRisk.ID, 6, "2026-03-09"))

	// Practiced today already.
	safe, err := repo.Create(ctx, "+15552222222")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, safe.ID))
	require.NoError(t, repo.UpdateStreak(ctx, safe.ID, 2, "2026-03-10"))

	// No streak to lose.
	fresh, err := repo.Create(ctx, "+15553333333")
	require.NoError(t, err)
	require.NoError(t, repo.CompleteOnboarding(ctx, fresh.ID))

	users, err := repo.GetUsersWithStreakAtRisk(ctx, "2026-03-09")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, atRisk.ID, users[0].ID)
}
