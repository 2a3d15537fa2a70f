package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/gitenglishhub/prepal/internal/store"
)

type fakeMediaRepo struct {
	media map[string]store.Media
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{media: map[string]store.Media{}}
}

func (f *fakeMediaRepo) Put(_ context.Context, m store.Media) error {
	f.media[m.Key] = m
	return nil
}

func (f *fakeMediaRepo) Get(_ context.Context, key string) (*store.Media, error) {
	m, ok := f.media[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func TestMediaKeyDeterministic(t *testing.T) {
	a := MediaKey("audio", "The cat is on the mat.", "Kore")
	b := MediaKey("audio", "The cat is on the mat.", "Kore")
	if a != b {
		t.Fatal("same inputs must produce the same key")
	}
	if a == MediaKey("audio", "The cat is on the mat.", "Puck") {
		t.Fatal("different voice must produce a different key")
	}
	if a == MediaKey("video", "The cat is on the mat.", "Kore") {
		t.Fatal("different kind must produce a different key")
	}
}

func TestGetOrGenerateCachesResult(t *testing.T) {
	repo := newFakeMediaRepo()
	c := NewMedia(repo, nil)
	ctx := context.Background()

	calls := 0
	gen := func(context.Context) (*store.Media, error) {
		calls++
		return &store.Media{Data: []byte{42}, MIMEType: "audio/wav"}, nil
	}

	first, err := c.GetOrGenerate(ctx, "audio", "hello", "Kore", gen)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := c.GetOrGenerate(ctx, "audio", "hello", "Kore", gen)
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 generation, got %d", calls)
	}
	if first.Key != second.Key || len(second.Data) != 1 {
		t.Fatalf("cache round trip broken: %+v vs %+v", first, second)
	}
}

func TestGetOrGeneratePropagatesGenerationError(t *testing.T) {
	c := NewMedia(newFakeMediaRepo(), nil)
	wantErr := errors.New("render failed")

	_, err := c.GetOrGenerate(context.Background(), "video", "p", "16:9",
		func(context.Context) (*store.Media, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected generation error, got %v", err)
	}
}
