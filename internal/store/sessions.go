package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ActivitySession is a locally-persisted practice session. Payload holds the
// JSON document mirrored to the activity endpoint; Posted records whether the
// upload succeeded.
type ActivitySession struct {
	ID        string       `db:"id"`
	StartedAt time.Time    `db:"started_at"`
	EndedAt   sql.NullTime `db:"ended_at"`
	Payload   string       `db:"payload"`
	Posted    bool         `db:"posted"`
}

// SessionRepo persists activity sessions.
type SessionRepo interface {
	Save(ctx context.Context, s ActivitySession) error
	MarkPosted(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*ActivitySession, error)
}

type sessionRepo struct {
	db *sqlx.DB
}

func (r *sessionRepo) Save(ctx context.Context, s ActivitySession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_sessions (id, started_at, ended_at, payload, posted)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   ended_at = excluded.ended_at,
		   payload = excluded.payload,
		   posted = excluded.posted`,
		s.ID, s.StartedAt, s.EndedAt, s.Payload, s.Posted)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) MarkPosted(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE activity_sessions SET posted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*ActivitySession, error) {
	var s ActivitySession
	err := r.db.GetContext(ctx, &s,
		`SELECT id, started_at, ended_at, payload, posted
		 FROM activity_sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}
