package cache

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/store"
)

// Remote is an optional second cache tier shared across machines. A nil
// Remote means local-only operation; remote failures degrade silently to
// local behavior.
type Remote interface {
	Candidates(ctx context.Context, level int, preposition string) ([]store.CachedQuestion, error)
	Put(ctx context.Context, q store.CachedQuestion) error
}

// Questions is the two-tier question cache: SQLite locally, an optional
// Remote tier behind it. Lookups exclude recently-served questions so
// short sessions don't repeat themselves.
type Questions struct {
	repo   store.QuestionRepo
	remote Remote
	recent *Recency
	rng    *rand.Rand
	log    *zap.Logger
}

// NewQuestions creates a question cache. remote may be nil.
func NewQuestions(repo store.QuestionRepo, remote Remote, rng *rand.Rand, log *zap.Logger) *Questions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Questions{
		repo:   repo,
		remote: remote,
		recent: NewRecency(DefaultRecencyWindow),
		rng:    rng,
		log:    log,
	}
}

// Lookup returns a random cached question for the level and preposition,
// excluding recently-served ones. Recency is part of the match criteria:
// when every local candidate was served recently the remote tier is still
// consulted. ok is false on a miss; the caller then generates fresh.
func (c *Questions) Lookup(ctx context.Context, level int, preposition string) (*store.CachedQuestion, bool) {
	candidates, err := c.repo.Candidates(ctx, level, preposition)
	if err != nil {
		c.log.Warn("local cache read failed", zap.Error(err))
		candidates = nil
	}

	fresh := c.excludeRecent(candidates)
	if len(fresh) == 0 && c.remote != nil {
		fresh = c.excludeRecent(c.fromRemote(ctx, level, preposition))
	}
	if len(fresh) == 0 {
		return nil, false
	}

	q := fresh[c.rng.IntN(len(fresh))]
	c.recent.Add(q.ID)
	return &q, true
}

func (c *Questions) excludeRecent(candidates []store.CachedQuestion) []store.CachedQuestion {
	fresh := candidates[:0:0]
	for _, q := range candidates {
		if !c.recent.Contains(q.ID) {
			fresh = append(fresh, q)
		}
	}
	return fresh
}

// Store persists a freshly-generated question to both tiers and marks it
// recently served. Tier failures are logged, never surfaced: a question
// that could not be cached is still a perfectly good question.
func (c *Questions) Store(ctx context.Context, q store.CachedQuestion) {
	if err := c.repo.Put(ctx, q); err != nil {
		c.log.Warn("local cache write failed", zap.Error(err))
	}
	if c.remote != nil {
		if err := c.remote.Put(ctx, q); err != nil {
			c.log.Warn("remote cache write failed", zap.Error(err))
		}
	}
	c.recent.Add(q.ID)
}

// fromRemote pulls candidates from the remote tier and warms the local
// cache with them.
func (c *Questions) fromRemote(ctx context.Context, level int, preposition string) []store.CachedQuestion {
	candidates, err := c.remote.Candidates(ctx, level, preposition)
	if err != nil {
		c.log.Warn("remote cache read failed", zap.Error(err))
		return nil
	}
	for _, q := range candidates {
		if err := c.repo.Put(ctx, q); err != nil {
			c.log.Warn("local cache warm failed", zap.String("id", q.ID), zap.Error(err))
		}
	}
	return candidates
}
