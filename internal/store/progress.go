package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// TallyStat is a per-bucket answered/correct pair used for the level and
// category breakdowns.
type TallyStat struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// UserProgress is the single mastery ledger row.
type UserProgress struct {
	XP             int
	Level          int
	Streak         int
	BestStreak     int
	TotalQuestions int
	CorrectAnswers int
	LevelStats     map[string]TallyStat
	CategoryStats  map[string]TallyStat
	LastPlayed     *time.Time
}

// HistoryEntry is one answered question appended to the immutable history.
type HistoryEntry struct {
	ID          int64     `db:"id"`
	Preposition string    `db:"preposition"`
	Category    string    `db:"category"`
	Level       int       `db:"level"`
	Correct     bool      `db:"correct"`
	XPEarned    int       `db:"xp_earned"`
	AnsweredAt  time.Time `db:"answered_at"`
}

// ProgressRepo persists the mastery ledger.
type ProgressRepo interface {
	// Get returns the current progress, or a zeroed ledger at level 1 if
	// nothing has been recorded yet.
	Get(ctx context.Context) (*UserProgress, error)
	// Record writes the updated ledger and appends the history entry in a
	// single transaction.
	Record(ctx context.Context, p UserProgress, h HistoryEntry) error
	// History returns the most recent entries, newest first.
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
	// Reset deletes the ledger and all history.
	Reset(ctx context.Context) error
}

type progressRepo struct {
	db *sqlx.DB
}

type progressRow struct {
	XP             int          `db:"xp"`
	Level          int          `db:"level"`
	Streak         int          `db:"streak"`
	BestStreak     int          `db:"best_streak"`
	TotalQuestions int          `db:"total_questions"`
	CorrectAnswers int          `db:"correct_answers"`
	LevelStats     string       `db:"level_stats"`
	CategoryStats  string       `db:"category_stats"`
	LastPlayed     sql.NullTime `db:"last_played"`
}

func (r *progressRepo) Get(ctx context.Context) (*UserProgress, error) {
	var row progressRow
	err := r.db.GetContext(ctx, &row,
		`SELECT xp, level, streak, best_streak, total_questions, correct_answers,
		        level_stats, category_stats, last_played
		 FROM user_progress WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return &UserProgress{
			Level:         1,
			LevelStats:    map[string]TallyStat{},
			CategoryStats: map[string]TallyStat{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	p := &UserProgress{
		XP:             row.XP,
		Level:          row.Level,
		Streak:         row.Streak,
		BestStreak:     row.BestStreak,
		TotalQuestions: row.TotalQuestions,
		CorrectAnswers: row.CorrectAnswers,
		LevelStats:     map[string]TallyStat{},
		CategoryStats:  map[string]TallyStat{},
	}
	if row.LastPlayed.Valid {
		t := row.LastPlayed.Time
		p.LastPlayed = &t
	}
	// Corrupt stat maps degrade to empty rather than blocking play.
	_ = json.Unmarshal([]byte(row.LevelStats), &p.LevelStats)
	_ = json.Unmarshal([]byte(row.CategoryStats), &p.CategoryStats)
	return p, nil
}

func (r *progressRepo) Record(ctx context.Context, p UserProgress, h HistoryEntry) error {
	levelStats, err := json.Marshal(p.LevelStats)
	if err != nil {
		return fmt.Errorf("encode level stats: %w", err)
	}
	categoryStats, err := json.Marshal(p.CategoryStats)
	if err != nil {
		return fmt.Errorf("encode category stats: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_progress
		   (id, xp, level, streak, best_streak, total_questions, correct_answers,
		    level_stats, category_stats, last_played, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		   xp = excluded.xp,
		   level = excluded.level,
		   streak = excluded.streak,
		   best_streak = excluded.best_streak,
		   total_questions = excluded.total_questions,
		   correct_answers = excluded.correct_answers,
		   level_stats = excluded.level_stats,
		   category_stats = excluded.category_stats,
		   last_played = excluded.last_played,
		   updated_at = CURRENT_TIMESTAMP`,
		p.XP, p.Level, p.Streak, p.BestStreak, p.TotalQuestions, p.CorrectAnswers,
		string(levelStats), string(categoryStats), p.LastPlayed)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO question_history (preposition, category, level, correct, xp_earned)
		 VALUES (?, ?, ?, ?, ?)`,
		h.Preposition, h.Category, h.Level, h.Correct, h.XPEarned)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	return tx.Commit()
}

func (r *progressRepo) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, preposition, category, level, correct, xp_earned, answered_at
		 FROM question_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (r *progressRepo) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_progress`); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM question_history`); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	return tx.Commit()
}
