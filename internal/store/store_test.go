package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestQuestionPutAndCandidates(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	q := CachedQuestion{
		ID:           "q1",
		Level:        3,
		Preposition:  "under",
		Sentence:     "The cat sleeps ___ the table.",
		Options:      []string{"under", "over", "near"},
		VisualPrompt: "a cat sleeping under a wooden table",
	}
	if err := repo.Put(ctx, q); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Putting the same ID again is a no-op, not an error.
	if err := repo.Put(ctx, q); err != nil {
		t.Fatalf("put duplicate: %v", err)
	}

	got, err := repo.Candidates(ctx, 3, "under")
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Sentence != q.Sentence {
		t.Errorf("sentence = %q, want %q", got[0].Sentence, q.Sentence)
	}
	if len(got[0].Options) != 3 {
		t.Errorf("options = %v", got[0].Options)
	}

	// Different level or preposition is a miss.
	got, err = repo.Candidates(ctx, 4, "under")
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestQuestionCorruptOptionsSkipped(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	_, err := s.DB().Exec(
		`INSERT INTO question_cache (id, level, preposition, sentence, options)
		 VALUES ('bad', 1, 'in', 'He lives ___ Paris.', 'not json')`)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	got, err := repo.Candidates(ctx, 1, "in")
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt row should be skipped, got %d candidates", len(got))
	}
}

func TestQuestionGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.QuestionRepo().Get(context.Background(), "missing")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMediaPutAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.MediaRepo()
	ctx := context.Background()

	m := Media{
		Key:      "abc123",
		Kind:     "audio",
		Prompt:   "The ball rolled under the couch.",
		Params:   "Kore",
		MIMEType: "audio/wav",
		Data:     []byte{1, 2, 3},
	}
	if err := repo.Put(ctx, m); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Kind != "audio" || len(got.Data) != 3 {
		t.Fatalf("unexpected media: %+v", got)
	}

	if _, err := repo.Get(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProgressDefaultsWhenEmpty(t *testing.T) {
	s := openTestStore(t)
	p, err := s.ProgressRepo().Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Level != 1 || p.XP != 0 || p.Streak != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.LevelStats == nil || p.CategoryStats == nil {
		t.Fatal("stat maps should be initialized")
	}
}

func TestProgressRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := UserProgress{
		XP:             50,
		Level:          2,
		Streak:         5,
		BestStreak:     5,
		TotalQuestions: 5,
		CorrectAnswers: 5,
		LevelStats:     map[string]TallyStat{"1": {Answered: 5, Correct: 5}},
		CategoryStats:  map[string]TallyStat{"Location": {Answered: 5, Correct: 5}},
		LastPlayed:     &now,
	}
	h := HistoryEntry{Preposition: "in", Category: "Location", Level: 1, Correct: true, XPEarned: 10}

	if err := repo.Record(ctx, p, h); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.XP != 50 || got.Level != 2 || got.Streak != 5 {
		t.Fatalf("unexpected progress: %+v", got)
	}
	if got.LevelStats["1"].Correct != 5 {
		t.Fatalf("level stats lost: %+v", got.LevelStats)
	}
	if got.LastPlayed == nil {
		t.Fatal("last played lost")
	}

	hist, err := repo.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Preposition != "in" || !hist[0].Correct {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestProgressReset(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	p := UserProgress{XP: 10, Level: 1, LevelStats: map[string]TallyStat{}, CategoryStats: map[string]TallyStat{}}
	h := HistoryEntry{Preposition: "on", Category: "Location", Level: 1, Correct: true, XPEarned: 10}
	if err := repo.Record(ctx, p, h); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.XP != 0 || got.Level != 1 {
		t.Fatalf("expected zeroed ledger, got %+v", got)
	}
	hist, err := repo.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("expected empty history, got %d", len(hist))
	}
}

func TestEventAppendAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := LLMRequestEventData{
		Model:       "gemini-2.5-flash",
		Capability:  "text",
		Purpose:     "question_sentence",
		LatencyMs:   120,
		Success:     true,
		InputTokens: 200,
		RequestBody: "prompt",
	}
	if err := repo.AppendLLMRequest(ctx, data); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.RecentLLMRequests(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Capability != "text" || !events[0].Success {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestSessionSaveAndMarkPosted(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	sess := ActivitySession{
		ID:        "s1",
		StartedAt: time.Now().UTC(),
		Payload:   `{"activities":[]}`,
	}
	if err := repo.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := repo.MarkPosted(ctx, "s1"); err != nil {
		t.Fatalf("mark posted: %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Posted {
		t.Fatal("expected posted session")
	}
}
