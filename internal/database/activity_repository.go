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

// ActivityRepository handles per-day activity rows. Rows are created
// lazily on the first activity of a day.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new repository instance.
func NewActivityRepository(m *Manager) *ActivityRepository {
	return &ActivityRepository{db: m.DB()}
}

// GetForDate returns the activity row for a (user, day), or nil.
func (r *ActivityRepository) GetForDate(ctx context.Context, userID, date string) (*models.DailyActivity, error) {
	var activity models.DailyActivity
	query := r.db.Rebind("SELECT * FROM daily_activity WHERE user_id = ? AND date = ?")
	err := r.db.GetContext(ctx, &activity, query, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily activity: %w", err)
	}
	return &activity, nil
}

// GetOrCreate returns the activity row for a day, creating it lazily.
func (r *ActivityRepository) GetOrCreate(ctx context.Context, userID, date string) (*models.DailyActivity, error) {
	existing, err := r.GetForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := uuid.NewString()
	query := r.db.Rebind("INSERT INTO daily_activity (id, user_id, date) VALUES (?, ?, ?)")
	if _, err := r.db.ExecContext(ctx, query, id, userID, date); err != nil {
		return nil, fmt.Errorf("failed to create daily activity: %w", err)
	}
	return r.GetForDate(ctx, userID, date)
}

// IncrementMessages bumps the day's sent or received counter.
func (r *ActivityRepository) IncrementMessages(ctx context.Context, userID, date string, sent bool) error {
	activity, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	column := "messages_received"
	if sent {
		column = "messages_sent"
	}
	query := r.db.Rebind(fmt.Sprintf(
		"UPDATE daily_activity SET %s = %s + 1 WHERE id = ?", column, column))
	_, err = r.db.ExecContext(ctx, query, activity.ID)
	return err
}

// IncrementLessons bumps the day's completed-lesson counter.
func (r *ActivityRepository) IncrementLessons(ctx context.Context, userID, date string) error {
	activity, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	query := r.db.Rebind("UPDATE daily_activity SET lessons_completed = lessons_completed + 1 WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, activity.ID)
	return err
}

// AddXP adds to the day's experience counter.
func (r *ActivityRepository) AddXP(ctx context.Context, userID, date string, xp int) error {
	activity, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	query := r.db.Rebind("UPDATE daily_activity SET xp_earned = xp_earned + ? WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, xp, activity.ID)
	return err
}

// AddVocabReviewed appends a vocab ID to the day's reviewed set if not
// already present. Callers serialize per learner.
func (r *ActivityRepository) AddVocabReviewed(ctx context.Context, userID, date, vocabID string) error {
	activity, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	if activity.VocabReviewed.Contains(vocabID) {
		return nil
	}
	updated := append(activity.VocabReviewed, vocabID)
	query := r.db.Rebind("UPDATE daily_activity SET vocab_reviewed = ? WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, updated, activity.ID)
	return err
}

// AddVocabMastered appends a vocab ID to the day's mastered set if not
// already present.
func (r *ActivityRepository) AddVocabMastered(ctx context.Context, userID, date, vocabID string) error {
	activity, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	if activity.VocabMastered.Contains(vocabID) {
		return nil
	}
	updated := append(activity.VocabMastered, vocabID)
	query := r.db.Rebind("UPDATE daily_activity SET vocab_mastered = ? WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, updated, activity.ID)
	return err
}

// MarkStreakCounted records that the day's streak credit was granted.
func (r *ActivityRepository) MarkStreakCounted(ctx context.Context, userID, date string) error {
	activity, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	query := r.db.Rebind("UPDATE daily_activity SET streak_counted = TRUE WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, activity.ID)
	return err
}

// HadActivity reports whether the learner sent anything on the given
// day. Used as the streak-continuity fallback check.
func (r *ActivityRepository) HadActivity(ctx context.Context, userID, date string) (bool, error) {
	activity, err := r.GetForDate(ctx, userID, date)
	if err != nil {
		return false, err
	}
	return activity != nil && activity.MessagesSent > 0, nil
}
