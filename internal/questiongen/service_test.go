package questiongen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gitenglishhub/prepal/internal/cache"
	"github.com/gitenglishhub/prepal/internal/catalog"
	"github.com/gitenglishhub/prepal/internal/llm"
	"github.com/gitenglishhub/prepal/internal/store"
)

func newTestService(t *testing.T, mock *llm.MockProvider) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	rng := testRNG()
	questions := cache.NewQuestions(st.QuestionRepo(), nil, rng, nil)
	media := cache.NewMedia(st.MediaRepo(), nil)
	svc := NewService(mock, questions, media, DefaultConfig(), rng, nil)
	return svc, st
}

func queueQuestion(mock *llm.MockProvider, sentence string) {
	mock.AddText(llm.MockTextResponse{Text: sentence})
	mock.AddImage(llm.MockMediaResponse{Data: []byte{0xFF}, MIMEType: "image/png"})
}

func TestNextQuestionGeneratesAndCaches(t *testing.T) {
	mock := llm.NewMockProvider()
	queueQuestion(mock, "The cat waits ______ the kitchen.")
	mock.AddText(llm.MockTextResponse{Text: "**In** marks containment."})
	svc, st := newTestService(t, mock)
	ctx := context.Background()

	q, err := svc.NextQuestion(ctx, Request{Level: catalog.Level1, Sequence: 1})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}

	if !strings.Contains(q.Sentence, Blank) {
		t.Fatalf("sentence has no blank: %q", q.Sentence)
	}
	if q.FromCache {
		t.Fatal("first question should be freshly generated")
	}
	if !containsPrep(q.Options, q.Preposition) {
		t.Fatalf("options %v missing answer %q", q.Options, q.Preposition)
	}
	if q.Media.Kind != MediaImage || len(q.Media.Data) == 0 {
		t.Fatalf("expected inline image, got %+v", q.Media)
	}

	// The generated question must now be in the cache.
	n, err := st.QuestionRepo().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 cached question, got %d", n)
	}

	// The explanation was prefetched in the background; Explain returns it
	// without another provider round-trip.
	exp, err := svc.Explain(ctx, q)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if exp != "**In** marks containment." {
		t.Fatalf("unexpected explanation: %q", exp)
	}
	textCalls := 0
	for _, call := range mock.Calls {
		if call.Capability == "text" {
			textCalls++
		}
	}
	if textCalls != 2 {
		t.Fatalf("expected sentence + prefetch only, got %d text calls", textCalls)
	}
}

func TestNextQuestionServesFromCache(t *testing.T) {
	mock := llm.NewMockProvider()
	svc, st := newTestService(t, mock)
	ctx := context.Background()

	// Seed the cache for every preposition unlocked at level 1 so the
	// lookup hits regardless of which one the selector draws.
	for _, p := range catalog.Allowed(catalog.Level1) {
		for i := range 20 {
			err := st.QuestionRepo().Put(ctx, store.CachedQuestion{
				ID:          string(p) + "-" + strings.Repeat("x", i+1),
				Level:       1,
				Preposition: string(p),
				Sentence:    "The keys are ______ the drawer.",
				Options:     []string{string(p), "near", "behind"},
			})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
	}

	mock.AddText(llm.MockTextResponse{Text: "**In** marks containment."})

	q, err := svc.NextQuestion(ctx, Request{Level: catalog.Level1, Sequence: 1})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if !q.FromCache {
		t.Fatal("expected a cache hit")
	}

	// Join the explanation prefetch, then check that it was the only text
	// call: the sentence itself came from the cache. The seeded rows carry
	// no visual prompt, so no media call happened either.
	if _, err := svc.Explain(ctx, q); err != nil {
		t.Fatalf("explain: %v", err)
	}
	textCalls := 0
	for _, call := range mock.Calls {
		if call.Capability != "text" {
			t.Fatalf("unexpected %s call on a cache hit", call.Capability)
		}
		textCalls++
	}
	if textCalls != 1 {
		t.Fatalf("cache hit must not generate a sentence, got %d text calls", textCalls)
	}
}

func TestDeepDiveBypassesCache(t *testing.T) {
	mock := llm.NewMockProvider()
	queueQuestion(mock, "She thrives ______ pressure.")
	svc, st := newTestService(t, mock)
	ctx := context.Background()

	q, err := svc.NextQuestion(ctx, Request{Level: catalog.Level3, Sequence: 1, DeepDive: true})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if q.FromCache {
		t.Fatal("deep dive must not be served from cache")
	}

	// Deep-dive questions are not persisted either.
	n, err := st.QuestionRepo().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("deep dive polluted the cache: %d rows", n)
	}
}

func TestImageFailureFallsBackToPlaceholder(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(llm.MockTextResponse{Text: "The lamp stands ______ the desk."})
	mock.AddImage(llm.MockMediaResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	svc, _ := newTestService(t, mock)

	q, err := svc.NextQuestion(context.Background(), Request{Level: catalog.Level1, Sequence: 1})
	if err != nil {
		t.Fatalf("image failure must not sink the question: %v", err)
	}
	if !strings.HasPrefix(q.Media.URL, "https://picsum.photos/") {
		t.Fatalf("expected placeholder URL, got %+v", q.Media)
	}
}

func TestVideoRoundCadence(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockProvider())
	for _, tt := range []struct {
		seq  int
		want bool
	}{
		{1, false}, {4, false}, {5, true}, {9, false}, {10, true}, {0, false},
	} {
		if got := svc.IsVideoRound(tt.seq); got != tt.want {
			t.Errorf("IsVideoRound(%d) = %v, want %v", tt.seq, got, tt.want)
		}
	}
}

func TestVideoRoundGeneratesVideo(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(llm.MockTextResponse{Text: "The dog runs ______ the tunnel."})
	mock.AddVideo(llm.MockMediaResponse{Data: []byte{1, 2}, MIMEType: "video/mp4"})
	svc, st := newTestService(t, mock)
	ctx := context.Background()

	q, err := svc.NextQuestion(ctx, Request{Level: catalog.Level7, Sequence: 5})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if q.Media.Kind != MediaVideo {
		t.Fatalf("expected video media, got %+v", q.Media)
	}
	if !catalog.IsDynamic(q.Preposition) {
		t.Fatalf("video round should drill a motion preposition, got %q", q.Preposition)
	}
	if !strings.Contains(q.VisualPrompt, "ACTION-ORIENTED") {
		t.Fatal("video prompt missing motion directives")
	}

	// Video questions are one-offs and stay out of the cache.
	n, err := st.QuestionRepo().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("video question leaked into the cache: %d rows", n)
	}
}

func TestVideoFailureFallsBackToImage(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(llm.MockTextResponse{Text: "The cat jumps ______ the fence."})
	mock.AddVideo(llm.MockMediaResponse{Err: &llm.ErrUnsupported{Provider: "openai", Capability: "video"}})
	mock.AddImage(llm.MockMediaResponse{Data: []byte{9}, MIMEType: "image/png"})
	svc, _ := newTestService(t, mock)

	q, err := svc.NextQuestion(context.Background(), Request{Level: catalog.Level7, Sequence: 5})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if q.Media.Kind != MediaImage {
		t.Fatalf("expected image fallback, got %+v", q.Media)
	}
}

func TestCredentialErrorPassesThrough(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(llm.MockTextResponse{Err: &llm.ErrCredential{Err: errors.New("401")}})
	svc, _ := newTestService(t, mock)

	_, err := svc.NextQuestion(context.Background(), Request{Level: catalog.Level1, Sequence: 1})
	var cred *llm.ErrCredential
	if !errors.As(err, &cred) {
		t.Fatalf("expected ErrCredential, got %v", err)
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		t.Fatal("credential errors must not be wrapped as retryable")
	}
}

func TestTransientErrorWrappedAsGenerationError(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(llm.MockTextResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	svc, _ := newTestService(t, mock)

	_, err := svc.NextQuestion(context.Background(), Request{Level: catalog.Level1, Sequence: 1})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Stage != "sentence" {
		t.Fatalf("unexpected stage %q", genErr.Stage)
	}
}

func TestExplainUsesAnswerInSentence(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(llm.MockTextResponse{Text: "**Under** signals a position directly below."})
	svc, _ := newTestService(t, mock)

	q := &Question{
		Sentence:    "The cat sleeps ______ the table.",
		Preposition: catalog.Under,
	}
	exp, err := svc.Explain(context.Background(), q)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if exp == "" {
		t.Fatal("empty explanation")
	}
	if len(mock.Calls) != 1 || !strings.Contains(mock.Calls[0].Prompt, "under") {
		t.Fatalf("explanation prompt missing the answer: %+v", mock.Calls)
	}
}

func TestNarrateCachesAudioByTextAndVoice(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddSpeech(llm.MockMediaResponse{Data: []byte{5}, MIMEType: "audio/wav"})
	svc, _ := newTestService(t, mock)
	ctx := context.Background()

	q := &Question{
		Sentence:    "The keys are ______ the drawer.",
		Preposition: catalog.In,
	}

	first, err := svc.Narrate(ctx, q, true)
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if first.Kind != MediaAudio || len(first.Data) == 0 {
		t.Fatalf("unexpected audio: %+v", first)
	}

	// Second narration of the same text hits the media cache; the mock
	// queue is empty so a real call would fail.
	if _, err := svc.Narrate(ctx, q, true); err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}
	speechCalls := 0
	for _, call := range mock.Calls {
		if call.Capability == "speech" {
			speechCalls++
		}
	}
	if speechCalls != 1 {
		t.Fatalf("expected 1 speech call, got %d", speechCalls)
	}
}

func TestNarrateHidesAnswerBeforeReveal(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddSpeech(llm.MockMediaResponse{Data: []byte{5}, MIMEType: "audio/wav"})
	svc, _ := newTestService(t, mock)

	q := &Question{
		Sentence:    "The keys are ______ the drawer.",
		Preposition: catalog.In,
	}
	if _, err := svc.Narrate(context.Background(), q, false); err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Prompt, "blank") {
		t.Fatalf("unrevealed narration should read 'blank': %q", mock.Calls[0].Prompt)
	}
}
