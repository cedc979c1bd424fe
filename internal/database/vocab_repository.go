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

// VocabRepository reads the vocabulary catalog. The catalog itself is
// owned by the content pipeline; the core only selects from it.
type VocabRepository struct {
	db *sqlx.DB
}

// NewVocabRepository creates a new repository instance.
func NewVocabRepository(m *Manager) *VocabRepository {
	return &VocabRepository{db: m.DB()}
}

// GetByID returns a catalog item, or nil if absent.
func (r *VocabRepository) GetByID(ctx context.Context, id string) (*models.VocabItem, error) {
	var item models.VocabItem
	query := r.db.Rebind("SELECT * FROM vocab_items WHERE id = ?")
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vocab item: %w", err)
	}
	return &item, nil
}

// ListByLevelAndUnit returns a unit's items in catalog sequence order.
func (r *VocabRepository) ListByLevelAndUnit(ctx context.Context, level models.Level, unit int) ([]models.VocabItem, error) {
	var items []models.VocabItem
	query := r.db.Rebind(`
		SELECT * FROM vocab_items
		WHERE level = ? AND unit = ?
		ORDER BY sequence ASC`)
	if err := r.db.SelectContext(ctx, &items, query, level, unit); err != nil {
		return nil, fmt.Errorf("failed to list vocab items: %w", err)
	}
	return items, nil
}

// CountByLevelAndUnit returns how many catalog items a unit holds.
func (r *VocabRepository) CountByLevelAndUnit(ctx context.Context, level models.Level, unit int) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM vocab_items WHERE level = ? AND unit = ?")
	if err := r.db.GetContext(ctx, &count, query, level, unit); err != nil {
		return 0, fmt.Errorf("failed to count vocab items: %w", err)
	}
	return count, nil
}

// Upsert inserts a catalog item or updates the existing one with the
// same (spanish, level, unit) identity. Used by the importer only.
func (r *VocabRepository) Upsert(ctx context.Context, item *models.VocabItem) (created bool, err error) {
	var existingID string
	query := r.db.Rebind("SELECT id FROM vocab_items WHERE spanish = ? AND level = ? AND unit = ?")
	err = r.db.GetContext(ctx, &existingID, query, item.Spanish, item.Level, item.Unit)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		item.ID = uuid.NewString()
		query = r.db.Rebind(`
			INSERT INTO vocab_items (id, spanish, english, phonetic, level, unit, sequence,
				example_sentence_es, example_sentence_en, category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err = r.db.ExecContext(ctx, query,
			item.ID, item.Spanish, item.English, item.Phonetic, item.Level, item.Unit,
			item.Sequence, item.ExampleSentenceES, item.ExampleSentenceEN, item.Category)
		if err != nil {
			return false, fmt.Errorf("failed to insert vocab item: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up vocab item: %w", err)
	}

	item.ID = existingID
	query = r.db.Rebind(`
		UPDATE vocab_items SET english = ?, phonetic = ?, sequence = ?,
			example_sentence_es = ?, example_sentence_en = ?, category = ?
		WHERE id = ?`)
	_, err = r.db.ExecContext(ctx, query,
		item.English, item.Phonetic, item.Sequence,
		item.ExampleSentenceES, item.ExampleSentenceEN, item.Category, item.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update vocab item: %w", err)
	}
	return false, nil
}
