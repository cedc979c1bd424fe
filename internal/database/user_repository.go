package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/holabot/pkg/models"
)

// UserRepository handles database operations for learners.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance.
func NewUserRepository(m *Manager) *UserRepository {
	return &UserRepository{db: m.DB()}
}

// GetByPhone returns the user for a phone number, or nil if unseen.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT * FROM users WHERE phone_number = ?")
	err := r.db.GetContext(ctx, &user, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return &user, nil
}

// GetByID returns a user by ID, or nil if absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT * FROM users WHERE id = ?")
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user with default preferences and returns it.
func (r *UserRepository) Create(ctx context.Context, phone string) (*models.User, error) {
	id := uuid.NewString()
	query := r.db.Rebind("INSERT INTO users (id, phone_number) VALUES (?, ?)")
	if _, err := r.db.ExecContext(ctx, query, id, phone); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update writes the mutable preference and cursor fields back.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		UPDATE users SET
			current_level = ?,
			current_unit = ?,
			current_lesson = ?,
			goals = ?,
			dialect_preference = ?,
			daily_lesson_count = ?,
			lesson_time = ?,
			accountability_level = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		user.CurrentLevel,
		user.CurrentUnit,
		user.CurrentLesson,
		user.Goals,
		user.DialectPreference,
		user.DailyLessonCount,
		user.LessonTime,
		user.AccountabilityLevel,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// IncrementOnboardingStep advances the onboarding step counter by one.
func (r *UserRepository) IncrementOnboardingStep(ctx context.Context, id string) error {
	query := r.db.Rebind(`
		UPDATE users SET onboarding_step = onboarding_step + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// CompleteOnboarding marks the intake dialogue finished.
func (r *UserRepository) CompleteOnboarding(ctx context.Context, id string) error {
	query := r.db.Rebind(`
		UPDATE users SET onboarding_completed = TRUE, onboarding_step = 8, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// AddXP increments both experience totals in a single statement and
// returns the fresh row.
func (r *UserRepository) AddXP(ctx context.Context, id string, amount int) (*models.User, error) {
	query := r.db.Rebind(`
		UPDATE users SET
			xp_total = xp_total + ?,
			xp_current_level = xp_current_level + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, amount, amount, id); err != nil {
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}
	return r.GetByID(ctx, id)
}

// SetLevel advances the proficiency level and resets the within-level total.
func (r *UserRepository) SetLevel(ctx context.Context, id string, level models.Level, xpCurrentLevel int) error {
	query := r.db.Rebind(`
		UPDATE users SET current_level = ?, xp_current_level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, level, xpCurrentLevel, id)
	return err
}

// AdvanceUnit moves the lesson cursor to the next unit.
func (r *UserRepository) AdvanceUnit(ctx context.Context, id string) error {
	query := r.db.Rebind(`
		UPDATE users SET current_unit = current_unit + 1, current_lesson = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// UpdateStreak records a new streak value, today's date as the last
// active day, and bumps the longest streak when surpassed.
func (r *UserRepository) UpdateStreak(ctx context.Context, id string, days int, today string) error {
	query := r.db.Rebind(`
		UPDATE users SET
			streak_days = ?,
			streak_last_active = ?,
			longest_streak = MAX(longest_streak, ?),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	if r.db.DriverName() == "postgres" {
		query = r.db.Rebind(`
			UPDATE users SET
				streak_days = ?,
				streak_last_active = ?,
				longest_streak = GREATEST(longest_streak, ?),
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`)
	}
	_, err := r.db.ExecContext(ctx, query, days, today, days, id)
	return err
}

// IncrementMessageCount bumps a lifetime message counter.
func (r *UserRepository) IncrementMessageCount(ctx context.Context, id string, sent bool) error {
	column := "total_messages_received"
	if sent {
		column = "total_messages_sent"
	}
	query := r.db.Rebind(fmt.Sprintf(
		"UPDATE users SET %s = %s + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", column, column))
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// GetUsersDueForLesson returns onboarded users whose configured delivery
// time matches the given wall-clock time and who were not active today.
func (r *UserRepository) GetUsersDueForLesson(ctx context.Context, lessonTime, today string) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT * FROM users
		WHERE onboarding_completed = TRUE
		  AND lesson_time = ?
		  AND (streak_last_active = '' OR streak_last_active < ?)`)
	if err := r.db.SelectContext(ctx, &users, query, lessonTime, today); err != nil {
		return nil, fmt.Errorf("failed to get users due for lesson: %w", err)
	}
	return users, nil
}

// GetUsersWithStreakAtRisk returns users whose streak survives only if
// they practice today (last active exactly yesterday, nothing today).
func (r *UserRepository) GetUsersWithStreakAtRisk(ctx context.Context, yesterday string) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT * FROM users
		WHERE onboarding_completed = TRUE
		  AND streak_days > 0
		  AND streak_last_active = ?`)
	if err := r.db.SelectContext(ctx, &users, query, yesterday); err != nil {
		return nil, fmt.Errorf("failed to get at-risk users: %w", err)
	}
	return users, nil
}
