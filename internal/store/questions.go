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

// CachedQuestion is a fully-formed quiz question persisted for reuse.
type CachedQuestion struct {
	ID           string    `db:"id"`
	Level        int       `db:"level"`
	Preposition  string    `db:"preposition"`
	Sentence     string    `db:"sentence"`
	Options      []string  `db:"-"`
	VisualPrompt string    `db:"visual_prompt"`
	CreatedAt    time.Time `db:"created_at"`
}

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QuestionRepo persists and retrieves cached questions.
type QuestionRepo interface {
	// Put stores a question. Writing the same ID twice is a no-op, so
	// concurrent generators can race safely.
	Put(ctx context.Context, q CachedQuestion) error
	// Candidates returns every cached question for the level and
	// preposition. Rows whose options fail to decode are skipped.
	Candidates(ctx context.Context, level int, preposition string) ([]CachedQuestion, error)
	// Get returns a single question by ID.
	Get(ctx context.Context, id string) (*CachedQuestion, error)
	// Count returns the total number of cached questions.
	Count(ctx context.Context) (int, error)
}

type questionRepo struct {
	db *sqlx.DB
}

type questionRow struct {
	ID           string    `db:"id"`
	Level        int       `db:"level"`
	Preposition  string    `db:"preposition"`
	Sentence     string    `db:"sentence"`
	Options      string    `db:"options"`
	VisualPrompt string    `db:"visual_prompt"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *questionRepo) Put(ctx context.Context, q CachedQuestion) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO question_cache (id, level, preposition, sentence, options, visual_prompt)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		q.ID, q.Level, q.Preposition, q.Sentence, string(opts), q.VisualPrompt)
	if err != nil {
		return fmt.Errorf("put question: %w", err)
	}
	return nil
}

func (r *questionRepo) Candidates(ctx context.Context, level int, preposition string) ([]CachedQuestion, error) {
	var rows []questionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, level, preposition, sentence, options, visual_prompt, created_at
		 FROM question_cache
		 WHERE level = ? AND preposition = ?
		 ORDER BY created_at`,
		level, preposition)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	out := make([]CachedQuestion, 0, len(rows))
	for _, row := range rows {
		q, err := row.decode()
		if err != nil {
			// A corrupt row is a cache miss, not a failure.
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (r *questionRepo) Get(ctx context.Context, id string) (*CachedQuestion, error) {
	var row questionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, level, preposition, sentence, options, visual_prompt, created_at
		 FROM question_cache WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return row.decode()
}

func (r *questionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM question_cache`); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (row questionRow) decode() (*CachedQuestion, error) {
	var opts []string
	if err := json.Unmarshal([]byte(row.Options), &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &CachedQuestion{
		ID:           row.ID,
		Level:        row.Level,
		Preposition:  row.Preposition,
		Sentence:     row.Sentence,
		Options:      opts,
		VisualPrompt: row.VisualPrompt,
		CreatedAt:    row.CreatedAt,
	}, nil
}
