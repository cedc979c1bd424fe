package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/holabot/pkg/models"
)

// UserVocabRepository handles per-learner spaced-repetition rows.
type UserVocabRepository struct {
	db *sqlx.DB
}

// NewUserVocabRepository creates a new repository instance.
func NewUserVocabRepository(m *Manager) *UserVocabRepository {
	return &UserVocabRepository{db: m.DB()}
}

// GetByUserAndVocab returns the progress row for a (user, item) pair,
// or nil if the item was never introduced.
func (r *UserVocabRepository) GetByUserAndVocab(ctx context.Context, userID, vocabID string) (*models.UserVocab, error) {
	var uv models.UserVocab
	query := r.db.Rebind("SELECT * FROM user_vocab WHERE user_id = ? AND vocab_id = ?")
	err := r.db.GetContext(ctx, &uv, query, userID, vocabID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user vocab: %w", err)
	}
	return &uv, nil
}

// GetByID returns a progress row by ID, or nil if absent.
func (r *UserVocabRepository) GetByID(ctx context.Context, id string) (*models.UserVocab, error) {
	var uv models.UserVocab
	query := r.db.Rebind("SELECT * FROM user_vocab WHERE id = ?")
	err := r.db.GetContext(ctx, &uv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user vocab by id: %w", err)
	}
	return &uv, nil
}

// GetOrCreate returns the progress row for a pair, creating a fresh one
// (due immediately, ease 2.5) when the item is introduced for the first
// time.
func (r *UserVocabRepository) GetOrCreate(ctx context.Context, userID, vocabID string, unit, lesson int) (*models.UserVocab, error) {
	existing, err := r.GetByUserAndVocab(ctx, userID, vocabID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	query := r.db.Rebind(`
		INSERT INTO user_vocab (id, user_id, vocab_id, introduced_in_unit, introduced_in_lesson,
			next_review, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, id, userID, vocabID, unit, lesson, now, now); err != nil {
		return nil, fmt.Errorf("failed to create user vocab: %w", err)
	}
	return r.GetByID(ctx, id)
}

// DueForReview returns up to limit rows whose next review has passed,
// earliest due first.
func (r *UserVocabRepository) DueForReview(ctx context.Context, userID string, limit int, now time.Time) ([]models.UserVocab, error) {
	var rows []models.UserVocab
	query := r.db.Rebind(`
		SELECT * FROM user_vocab
		WHERE user_id = ?
		  AND status IN ('new', 'learning', 'reviewing')
		  AND next_review <= ?
		ORDER BY next_review ASC
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get due reviews: %w", err)
	}
	return rows, nil
}

// ApplyReview writes back every field the review algorithm mutates in a
// single statement.
func (r *UserVocabRepository) ApplyReview(ctx context.Context, uv *models.UserVocab) error {
	query := r.db.Rebind(`
		UPDATE user_vocab SET
			ease_factor = ?,
			interval_days = ?,
			repetitions = ?,
			next_review = ?,
			times_seen = ?,
			times_produced_correctly = ?,
			times_produced_with_help = ?,
			times_corrected = ?,
			last_seen = ?,
			mastery_score = ?,
			status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		uv.EaseFactor,
		uv.IntervalDays,
		uv.Repetitions,
		uv.NextReview,
		uv.TimesSeen,
		uv.TimesProducedCorrectly,
		uv.TimesProducedWithHelp,
		uv.TimesCorrected,
		uv.LastSeen,
		uv.MasteryScore,
		uv.Status,
		uv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply review: %w", err)
	}
	return nil
}

// CountByStatus returns row counts grouped by learning status.
func (r *UserVocabRepository) CountByStatus(ctx context.Context, userID string) (map[models.VocabStatus]int, error) {
	rows := []struct {
		Status models.VocabStatus `db:"status"`
		Count  int                `db:"count"`
	}{}
	query := r.db.Rebind(`
		SELECT status, COUNT(*) AS count FROM user_vocab
		WHERE user_id = ?
		GROUP BY status`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := map[models.VocabStatus]int{
		models.StatusNew:       0,
		models.StatusLearning:  0,
		models.StatusReviewing: 0,
		models.StatusMastered:  0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TotalLearned counts every item ever introduced to the learner.
func (r *UserVocabRepository) TotalLearned(ctx context.Context, userID string) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM user_vocab WHERE user_id = ?")
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count learned: %w", err)
	}
	return count, nil
}

// TotalMastered counts items with mastered status.
func (r *UserVocabRepository) TotalMastered(ctx context.Context, userID string) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM user_vocab WHERE user_id = ? AND status = 'mastered'")
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count mastered: %w", err)
	}
	return count, nil
}

// CountInUnit counts progress rows for items of one catalog unit, used
// to decide unit completion.
func (r *UserVocabRepository) CountInUnit(ctx context.Context, userID string, level models.Level, unit int) (int, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM user_vocab uv
		JOIN vocab_items vi ON uv.vocab_id = vi.id
		WHERE uv.user_id = ? AND vi.level = ? AND vi.unit = ?`)
	if err := r.db.GetContext(ctx, &count, query, userID, level, unit); err != nil {
		return 0, fmt.Errorf("failed to count unit progress: %w", err)
	}
	return count, nil
}
