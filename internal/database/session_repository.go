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

// SessionRepository handles freeform conversation sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance.
func NewSessionRepository(m *Manager) *SessionRepository {
	return &SessionRepository{db: m.DB()}
}

// ActiveForUser returns the learner's open session, or nil. At most one
// session is open per learner; callers look up before creating.
func (r *SessionRepository) ActiveForUser(ctx context.Context, userID string) (*models.ConversationSession, error) {
	var session models.ConversationSession
	query := r.db.Rebind(`
		SELECT * FROM conversation_sessions
		WHERE user_id = ? AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1`)
	err := r.db.GetContext(ctx, &session, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return &session, nil
}

// Create opens a new session of the given type.
func (r *SessionRepository) Create(ctx context.Context, userID, sessionType string) (*models.ConversationSession, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO conversation_sessions (id, user_id, started_at, session_type)
		VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, id, userID, now, sessionType); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a session by ID, or nil if absent.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.ConversationSession, error) {
	var session models.ConversationSession
	query := r.db.Rebind("SELECT * FROM conversation_sessions WHERE id = ?")
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// AppendMessage adds one entry to the session's ordered message log.
// Callers serialize per learner, so read-modify-write is safe here.
func (r *SessionRepository) AppendMessage(ctx context.Context, id, role, content string) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", id)
	}
	updated := append(session.Messages, models.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	query := r.db.Rebind("UPDATE conversation_sessions SET messages = ? WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, updated, id)
	return err
}

// AppendError records an observed language error in the session.
func (r *SessionRepository) AppendError(ctx context.Context, id string, errMade models.ErrorMade) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", id)
	}
	updated := append(session.ErrorsMade, errMade)
	query := r.db.Rebind("UPDATE conversation_sessions SET errors_made = ? WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, updated, id)
	return err
}

// AddVocabPracticed appends a vocab ID to the session's touched set.
func (r *SessionRepository) AddVocabPracticed(ctx context.Context, id, vocabID string) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", id)
	}
	if session.VocabPracticed.Contains(vocabID) {
		return nil
	}
	updated := append(session.VocabPracticed, vocabID)
	query := r.db.Rebind("UPDATE conversation_sessions SET vocab_practiced = ? WHERE id = ?")
	_, err = r.db.ExecContext(ctx, query, updated, id)
	return err
}

// End closes a session and records the experience earned in it.
func (r *SessionRepository) End(ctx context.Context, id string, xpEarned int) error {
	query := r.db.Rebind(`
		UPDATE conversation_sessions
		SET ended_at = ?, xp_earned = ?, completed = TRUE
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), xpEarned, id)
	return err
}

// RecentMessages flattens the learner's latest sessions into the most
// recent limit messages, oldest first.
func (r *SessionRepository) RecentMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	var logs []models.MessageLog
	query := r.db.Rebind(`
		SELECT messages FROM conversation_sessions
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT 5`)
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var log models.MessageLog
		if err := rows.Scan(&log); err != nil {
			return nil, fmt.Errorf("failed to scan message log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sessions come newest first; flatten oldest session first so the
	// combined log stays chronological.
	var all []models.ChatMessage
	for i := len(logs) - 1; i >= 0; i-- {
		all = append(all, logs[i]...)
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
