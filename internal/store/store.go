package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and provides access to repositories.
type Store struct {
	db *sqlx.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// QuestionRepo returns a QuestionRepo backed by this store.
func (s *Store) QuestionRepo() QuestionRepo {
	return &questionRepo{db: s.db}
}

// MediaRepo returns a MediaRepo backed by this store.
func (s *Store) MediaRepo() MediaRepo {
	return &mediaRepo{db: s.db}
}

// ProgressRepo returns a ProgressRepo backed by this store.
func (s *Store) ProgressRepo() ProgressRepo {
	return &progressRepo{db: s.db}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// SessionRepo returns a SessionRepo backed by this store.
func (s *Store) SessionRepo() SessionRepo {
	return &sessionRepo{db: s.db}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS question_cache (
		id           TEXT PRIMARY KEY,
		level        INTEGER NOT NULL,
		preposition  TEXT NOT NULL,
		sentence     TEXT NOT NULL,
		options      TEXT NOT NULL,
		visual_prompt TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_question_cache_level_prep
		ON question_cache (level, preposition)`,
	`CREATE TABLE IF NOT EXISTS media (
		key        TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		prompt     TEXT NOT NULL,
		params     TEXT NOT NULL DEFAULT '',
		mime_type  TEXT NOT NULL DEFAULT '',
		data       BLOB,
		url        TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		id               INTEGER PRIMARY KEY CHECK (id = 1),
		xp               INTEGER NOT NULL DEFAULT 0,
		level            INTEGER NOT NULL DEFAULT 1,
		streak           INTEGER NOT NULL DEFAULT 0,
		best_streak      INTEGER NOT NULL DEFAULT 0,
		total_questions  INTEGER NOT NULL DEFAULT 0,
		correct_answers  INTEGER NOT NULL DEFAULT 0,
		level_stats      TEXT NOT NULL DEFAULT '{}',
		category_stats   TEXT NOT NULL DEFAULT '{}',
		last_played      TIMESTAMP,
		updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS question_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		preposition TEXT NOT NULL,
		category    TEXT NOT NULL,
		level       INTEGER NOT NULL,
		correct     INTEGER NOT NULL,
		xp_earned   INTEGER NOT NULL,
		answered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		model         TEXT NOT NULL,
		capability    TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       INTEGER NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS activity_sessions (
		id         TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		ended_at   TIMESTAMP,
		payload    TEXT NOT NULL DEFAULT '{}',
		posted     INTEGER NOT NULL DEFAULT 0
	)`,
}

func createSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PREPAL_DB environment variable
// 2. $XDG_DATA_HOME/prepal/prepal.db
// 3. ~/.local/share/prepal/prepal.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PREPAL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "prepal", "prepal.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
