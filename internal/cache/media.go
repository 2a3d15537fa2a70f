package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/store"
)

// MediaKey derives the content-addressed cache key for a generated asset.
// Identical prompt and params always hit the same row.
func MediaKey(kind, prompt, params string) string {
	h := sha256.Sum256([]byte(kind + "|" + prompt + "|" + params))
	return hex.EncodeToString(h[:])
}

// Media caches generated assets by content hash.
type Media struct {
	repo store.MediaRepo
	log  *zap.Logger
}

// NewMedia creates a media cache.
func NewMedia(repo store.MediaRepo, log *zap.Logger) *Media {
	if log == nil {
		log = zap.NewNop()
	}
	return &Media{repo: repo, log: log}
}

// GetOrGenerate returns the cached asset for (kind, prompt, params), or
// calls generate and persists the result. Cache write failures are logged
// and the fresh asset is returned anyway.
func (m *Media) GetOrGenerate(ctx context.Context, kind, prompt, params string,
	generate func(ctx context.Context) (*store.Media, error)) (*store.Media, error) {

	key := MediaKey(kind, prompt, params)

	cached, err := m.repo.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		m.log.Warn("media cache read failed", zap.String("key", key), zap.Error(err))
	}

	fresh, err := generate(ctx)
	if err != nil {
		return nil, err
	}

	fresh.Key = key
	fresh.Kind = kind
	fresh.Prompt = prompt
	fresh.Params = params
	if err := m.repo.Put(ctx, *fresh); err != nil {
		m.log.Warn("media cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, nil
}
