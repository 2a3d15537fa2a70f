// Package telemetry records practice sessions locally and mirrors them to
// the learning analytics endpoint. Uploads are best-effort: a dead network
// never interrupts play.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/store"
)

// DefaultEndpoint receives session uploads.
const DefaultEndpoint = "https://gitenglishhub.com/api/data/track-session"

// sourceTag identifies this client in uploaded payloads.
const sourceTag = "practice_uni"

// FocusItem is one tracked learning moment inside an activity.
type FocusItem struct {
	FocusCategory        string   `json:"focus_category"`
	FocusItem            string   `json:"focus_item"`
	TimeSpentSeconds     float64  `json:"time_spent_seconds"`
	PerformanceScore     *float64 `json:"performance_score"`
	AttemptsCount        int      `json:"attempts_count"`
	ErrorPatternDetected []string `json:"error_pattern_detected"`
	ContextSentence      string   `json:"context_sentence,omitempty"`
	Timestamp            string   `json:"timestamp"`
}

// Activity is one logical unit of practice within a session.
type Activity struct {
	ActivityID          string         `json:"activity_id"`
	ActivityType        string         `json:"activity_type"` // "drill", "reading", ...
	ActivityDescription string         `json:"activity_description"`
	StartTime           string         `json:"start_time"`
	EndTime             *string        `json:"end_time"`
	DurationSeconds     *float64       `json:"duration_seconds"`
	FocusItems          []FocusItem    `json:"focus_items"`
	Metadata            map[string]any `json:"metadata"`
}

// Session is the full uploaded document.
type Session struct {
	SessionID  string     `json:"session_id"`
	UserID     string     `json:"user_id"`
	ModuleID   string     `json:"module_id"`
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
	Activities []Activity `json:"activities"`
	Source     string     `json:"source"`
}

// Logger accumulates a session's activities and persists on every activity
// boundary so a crash loses at most the open activity.
type Logger struct {
	mu        sync.Mutex
	moduleID  string
	userID    string
	sessionID string
	started   time.Time
	finished  []Activity
	current   *Activity

	repo     store.SessionRepo
	client   *http.Client
	endpoint string
	now      func() time.Time
	log      *zap.Logger
}

// NewLogger creates a session logger. repo may be nil to skip local
// persistence (used by some tests).
func NewLogger(moduleID, userID string, repo store.SessionRepo, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{
		moduleID:  moduleID,
		userID:    userID,
		sessionID: "session_" + uuid.NewString(),
		started:   time.Now(),
		repo:      repo,
		client:    &http.Client{Timeout: 5 * time.Second},
		endpoint:  DefaultEndpoint,
		now:       time.Now,
		log:       log,
	}
}

// SessionID returns the generated session identifier.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// StartSession marks the session start and persists the empty session.
func (l *Logger) StartSession(ctx context.Context) {
	l.mu.Lock()
	l.started = l.now()
	l.mu.Unlock()
	l.persist(ctx)
}

// StartActivity opens a new activity, closing any activity still open.
func (l *Logger) StartActivity(ctx context.Context, id, activityType, description string) {
	l.mu.Lock()
	open := l.current != nil
	l.mu.Unlock()
	if open {
		l.EndActivity(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &Activity{
		ActivityID:          id,
		ActivityType:        activityType,
		ActivityDescription: description,
		StartTime:           l.now().UTC().Format(time.RFC3339),
		FocusItems:          []FocusItem{},
		Metadata:            map[string]any{},
	}
}

// EndActivity closes the open activity and persists the session.
func (l *Logger) EndActivity(ctx context.Context) {
	l.mu.Lock()
	if l.current == nil {
		l.mu.Unlock()
		return
	}

	now := l.now()
	start, err := time.Parse(time.RFC3339, l.current.StartTime)
	if err != nil {
		start = now
	}
	end := now.UTC().Format(time.RFC3339)
	duration := now.Sub(start).Seconds()
	l.current.EndTime = &end
	l.current.DurationSeconds = &duration

	l.finished = append(l.finished, *l.current)
	l.current = nil
	l.mu.Unlock()

	l.persist(ctx)
}

// AddMetadata annotates the open activity. No-op when nothing is open.
func (l *Logger) AddMetadata(key string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		l.current.Metadata[key] = value
	}
}

// LogFocusItem records a tracked learning moment on the open activity.
func (l *Logger) LogFocusItem(item FocusItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return
	}
	item.Timestamp = l.now().UTC().Format(time.RFC3339)
	l.current.FocusItems = append(l.current.FocusItems, item)
}

// persist saves the session snapshot locally and uploads it. Both halves
// are best-effort.
func (l *Logger) persist(ctx context.Context) {
	l.mu.Lock()
	session := Session{
		SessionID:  l.sessionID,
		UserID:     l.userID,
		ModuleID:   l.moduleID,
		StartTime:  l.started.UTC().Format(time.RFC3339),
		EndTime:    l.now().UTC().Format(time.RFC3339),
		Activities: append([]Activity{}, l.finished...),
		Source:     sourceTag,
	}
	started := l.started
	l.mu.Unlock()

	payload, err := json.Marshal(session)
	if err != nil {
		l.log.Warn("encode session failed", zap.Error(err))
		return
	}

	if l.repo != nil {
		rec := store.ActivitySession{
			ID:        session.SessionID,
			StartedAt: started,
			Payload:   string(payload),
		}
		if err := l.repo.Save(ctx, rec); err != nil {
			l.log.Warn("save session locally failed", zap.Error(err))
		}
	}

	if err := l.post(ctx, payload); err != nil {
		l.log.Warn("session upload failed", zap.Error(err))
		return
	}
	if l.repo != nil {
		if err := l.repo.MarkPosted(ctx, session.SessionID); err != nil {
			l.log.Warn("mark session posted failed", zap.Error(err))
		}
	}
}

func (l *Logger) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}
