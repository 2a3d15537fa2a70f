package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gitenglishhub/prepal/internal/store"
)

func newTestLogger(t *testing.T, endpoint string) (*Logger, *store.Store) {
	t.Helper()
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	l := NewLogger("preposition-pal", "user-1", st.SessionRepo(), nil)
	l.endpoint = endpoint
	return l, st
}

func TestSessionUploadCarriesSourceTag(t *testing.T) {
	var got Session
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l, _ := newTestLogger(t, srv.URL)
	ctx := context.Background()

	l.StartSession(ctx)
	l.StartActivity(ctx, "drill-1", "drill", "Preposition drill: under")
	l.LogFocusItem(FocusItem{
		FocusCategory:        "Grammar",
		FocusItem:            "under",
		TimeSpentSeconds:     3.2,
		AttemptsCount:        1,
		ErrorPatternDetected: []string{},
	})
	l.EndActivity(ctx)

	if got.Source != "practice_uni" {
		t.Errorf("source = %q, want practice_uni", got.Source)
	}
	if got.ModuleID != "preposition-pal" || got.UserID != "user-1" {
		t.Errorf("identity lost: %+v", got)
	}
	if len(got.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(got.Activities))
	}
	act := got.Activities[0]
	if act.EndTime == nil || act.DurationSeconds == nil {
		t.Error("activity not closed")
	}
	if len(act.FocusItems) != 1 || act.FocusItems[0].FocusItem != "under" {
		t.Errorf("focus items lost: %+v", act.FocusItems)
	}
}

func TestSessionPersistedLocallyAndMarkedPosted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l, st := newTestLogger(t, srv.URL)
	ctx := context.Background()

	l.StartActivity(ctx, "drill-1", "drill", "drill")
	l.EndActivity(ctx)

	sess, err := st.SessionRepo().Get(ctx, l.SessionID())
	if err != nil {
		t.Fatalf("session not saved locally: %v", err)
	}
	if !sess.Posted {
		t.Error("session not marked posted after successful upload")
	}
}

func TestUploadFailureDoesNotBlockLocalSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l, st := newTestLogger(t, srv.URL)
	ctx := context.Background()

	l.StartActivity(ctx, "drill-1", "drill", "drill")
	l.EndActivity(ctx)

	sess, err := st.SessionRepo().Get(ctx, l.SessionID())
	if err != nil {
		t.Fatalf("session not saved locally: %v", err)
	}
	if sess.Posted {
		t.Error("failed upload must not be marked posted")
	}
}

func TestStartActivityClosesOpenActivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l, _ := newTestLogger(t, srv.URL)
	ctx := context.Background()

	l.StartActivity(ctx, "a", "drill", "first")
	l.StartActivity(ctx, "b", "drill", "second")
	l.EndActivity(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.finished) != 2 {
		t.Fatalf("expected 2 finished activities, got %d", len(l.finished))
	}
	if l.finished[0].ActivityID != "a" || l.finished[1].ActivityID != "b" {
		t.Fatalf("activity order wrong: %+v", l.finished)
	}
}

func TestMetadataIgnoredWithoutOpenActivity(t *testing.T) {
	l, _ := newTestLogger(t, "http://127.0.0.1:0")
	l.AddMetadata("explanation_viewed", true) // no panic, no-op

	l.StartActivity(context.Background(), "a", "drill", "d")
	l.AddMetadata("explanation_viewed", true)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current.Metadata["explanation_viewed"] != true {
		t.Error("metadata not attached to open activity")
	}
}

func TestFocusItemTimestamped(t *testing.T) {
	l, _ := newTestLogger(t, "http://127.0.0.1:0")
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.StartActivity(context.Background(), "a", "drill", "d")
	l.LogFocusItem(FocusItem{FocusCategory: "Grammar", FocusItem: "into"})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current.FocusItems[0].Timestamp != "2026-02-03T04:05:06Z" {
		t.Errorf("timestamp = %q", l.current.FocusItems[0].Timestamp)
	}
}
