package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Manager owns the database connection lifecycle. It is constructed once
// at startup and passed to the repositories; nothing here is global.
type Manager struct {
	db *sqlx.DB
}

// Open connects to the database, applies driver-specific settings, and
// initializes the schema.
func Open(driver, dsn string) (*Manager, error) {
	if driver == "sqlite3" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	m := &Manager{db: db}
	if err := m.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// DB exposes the underlying connection for the repositories.
func (m *Manager) DB() *sqlx.DB {
	return m.db
}

// Ping verifies the connection is still alive.
func (m *Manager) Ping() error {
	return m.db.Ping()
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	return m.db.Close()
}

// initializeSchema creates the tables if they don't exist. Types are
// restricted to what sqlite3 and postgres both accept.
func (m *Manager) initializeSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			phone_number TEXT UNIQUE NOT NULL,
			onboarding_step INTEGER DEFAULT 0,
			onboarding_completed BOOLEAN DEFAULT FALSE,
			current_level TEXT DEFAULT 'A0',
			current_unit INTEGER DEFAULT 1,
			current_lesson INTEGER DEFAULT 1,
			goals TEXT DEFAULT '[]',
			dialect_preference TEXT DEFAULT 'latam',
			daily_lesson_count INTEGER DEFAULT 2,
			lesson_time TEXT DEFAULT '09:00:00',
			accountability_level TEXT DEFAULT 'medium',
			xp_total INTEGER DEFAULT 0,
			xp_current_level INTEGER DEFAULT 0,
			streak_days INTEGER DEFAULT 0,
			longest_streak INTEGER DEFAULT 0,
			streak_last_active TEXT DEFAULT '',
			total_messages_sent INTEGER DEFAULT 0,
			total_messages_received INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS vocab_items (
			id TEXT PRIMARY KEY,
			spanish TEXT NOT NULL,
			english TEXT NOT NULL,
			phonetic TEXT DEFAULT '',
			level TEXT NOT NULL,
			unit INTEGER NOT NULL,
			sequence INTEGER NOT NULL,
			example_sentence_es TEXT DEFAULT '',
			example_sentence_en TEXT DEFAULT '',
			category TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(spanish, level, unit)
		)`,
		`CREATE TABLE IF NOT EXISTS user_vocab (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			vocab_id TEXT NOT NULL REFERENCES vocab_items(id),
			introduced_in_unit INTEGER DEFAULT 1,
			introduced_in_lesson INTEGER DEFAULT 1,
			ease_factor REAL DEFAULT 2.5,
			interval_days INTEGER DEFAULT 1,
			repetitions INTEGER DEFAULT 0,
			next_review TIMESTAMP NOT NULL,
			times_seen INTEGER DEFAULT 0,
			times_produced_correctly INTEGER DEFAULT 0,
			times_produced_with_help INTEGER DEFAULT 0,
			times_corrected INTEGER DEFAULT 0,
			last_seen TIMESTAMP NOT NULL,
			mastery_score REAL DEFAULT 0,
			status TEXT DEFAULT 'new',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, vocab_id)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_activity (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			date TEXT NOT NULL,
			messages_sent INTEGER DEFAULT 0,
			messages_received INTEGER DEFAULT 0,
			lessons_completed INTEGER DEFAULT 0,
			vocab_reviewed TEXT DEFAULT '[]',
			vocab_mastered TEXT DEFAULT '[]',
			xp_earned INTEGER DEFAULT 0,
			streak_counted BOOLEAN DEFAULT FALSE,
			UNIQUE(user_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS conversation_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP,
			session_type TEXT NOT NULL,
			messages TEXT DEFAULT '[]',
			vocab_practiced TEXT DEFAULT '[]',
			errors_made TEXT DEFAULT '[]',
			xp_earned INTEGER DEFAULT 0,
			completed BOOLEAN DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_vocab_due ON user_vocab(user_id, next_review)`,
		`CREATE INDEX IF NOT EXISTS idx_vocab_items_unit ON vocab_items(level, unit, sequence)`,
	}

	for _, stmt := range statements {
		if _, err := m.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
