// Package progress maintains the mastery ledger: XP, numeric level,
// streaks, and per-level and per-category accuracy.
package progress

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/catalog"
	"github.com/gitenglishhub/prepal/internal/store"
)

// BaseXP is the award for a correct answer before the level multiplier.
const BaseXP = 10

// LevelForXP converts total XP to the numeric level on a sqrt curve:
// level = floor(sqrt(xp/50)) + 1. The first level-up lands at 50 XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Floor(math.Sqrt(float64(xp)/50))) + 1
}

// AwardXP computes the XP for an answer: BaseXP scaled by the level the
// question was played at, nothing for a miss. Callers compute the award
// and pass it in through Result.XPEarned; the ledger only accumulates.
func AwardXP(playedLevel int, correct bool) int {
	if !correct {
		return 0
	}
	if playedLevel < 1 {
		playedLevel = 1
	}
	return BaseXP * playedLevel
}

// Result describes one answered question. XPEarned is supplied by the
// caller (see AwardXP) so the award reflects the level the question was
// played at, not the ledger's current level.
type Result struct {
	GameLevel   catalog.Level
	Preposition catalog.Preposition
	Category    catalog.Category
	Correct     bool
	XPEarned    int
}

// Outcome is the ledger state after recording a result.
type Outcome struct {
	XPEarned  int
	Progress  store.UserProgress
	LeveledUp bool
}

// Service owns ledger updates. Writes are serialized so two rapid answers
// can't read the same base state.
type Service struct {
	mu   sync.Mutex
	repo store.ProgressRepo
	now  func() time.Time
	log  *zap.Logger
}

// NewService creates a progress service.
func NewService(repo store.ProgressRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, now: time.Now, log: log}
}

// Get returns the current ledger state.
func (s *Service) Get(ctx context.Context) (*store.UserProgress, error) {
	return s.repo.Get(ctx)
}

// Record applies a result to the ledger: XP, level recalculation, streak
// bookkeeping, stat tallies, and a history append, all in one transaction.
func (s *Service) Record(ctx context.Context, r Result) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	xp := r.XPEarned
	if !r.Correct {
		xp = 0
	}
	oldLevel := p.Level

	p.TotalQuestions++
	p.XP += xp
	p.Level = LevelForXP(p.XP)

	if r.Correct {
		p.CorrectAnswers++
		p.Streak++
		if p.Streak > p.BestStreak {
			p.BestStreak = p.Streak
		}
	} else {
		p.Streak = 0
	}

	if p.LevelStats == nil {
		p.LevelStats = map[string]store.TallyStat{}
	}
	if p.CategoryStats == nil {
		p.CategoryStats = map[string]store.TallyStat{}
	}
	bump(p.LevelStats, fmt.Sprintf("%d", int(r.GameLevel)), r.Correct)
	if r.Category != "" {
		bump(p.CategoryStats, string(r.Category), r.Correct)
	}

	now := s.now()
	p.LastPlayed = &now

	entry := store.HistoryEntry{
		Preposition: string(r.Preposition),
		Category:    string(r.Category),
		Level:       int(r.GameLevel),
		Correct:     r.Correct,
		XPEarned:    xp,
	}
	if err := s.repo.Record(ctx, *p, entry); err != nil {
		return nil, fmt.Errorf("record result: %w", err)
	}

	if p.Level > oldLevel {
		s.log.Info("level up",
			zap.Int("from", oldLevel), zap.Int("to", p.Level), zap.Int("xp", p.XP))
	}

	return &Outcome{
		XPEarned:  xp,
		Progress:  *p,
		LeveledUp: p.Level > oldLevel,
	}, nil
}

// Reset clears the ledger and history.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Reset(ctx)
}

func bump(stats map[string]store.TallyStat, key string, correct bool) {
	stat := stats[key]
	stat.Answered++
	if correct {
		stat.Correct++
	}
	stats[key] = stat
}
