package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Media is a generated asset (image, audio, or video) persisted for reuse.
// Either Data or URL is set depending on how the backend returned it.
type Media struct {
	Key       string    `db:"key"`
	Kind      string    `db:"kind"` // "image", "audio", "video"
	Prompt    string    `db:"prompt"`
	Params    string    `db:"params"` // kind-specific (aspect ratio, voice)
	MIMEType  string    `db:"mime_type"`
	Data      []byte    `db:"data"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
}

// MediaRepo persists generated media assets keyed by content hash.
type MediaRepo interface {
	Put(ctx context.Context, m Media) error
	Get(ctx context.Context, key string) (*Media, error)
}

type mediaRepo struct {
	db *sqlx.DB
}

func (r *mediaRepo) Put(ctx context.Context, m Media) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO media (key, kind, prompt, params, mime_type, data, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO NOTHING`,
		m.Key, m.Kind, m.Prompt, m.Params, m.MIMEType, m.Data, m.URL)
	if err != nil {
		return fmt.Errorf("put media: %w", err)
	}
	return nil
}

func (r *mediaRepo) Get(ctx context.Context, key string) (*Media, error) {
	var m Media
	err := r.db.GetContext(ctx, &m,
		`SELECT key, kind, prompt, params, mime_type, data, url, created_at
		 FROM media WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return &m, nil
}
