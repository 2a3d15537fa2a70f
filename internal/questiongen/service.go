package questiongen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/cache"
	"github.com/gitenglishhub/prepal/internal/catalog"
	"github.com/gitenglishhub/prepal/internal/llm"
	"github.com/gitenglishhub/prepal/internal/store"
)

// GenerationError wraps a transient pipeline failure. The caller may simply
// ask for another question; credential errors are never wrapped in it.
type GenerationError struct {
	Stage string // "sentence", "image", "video", "speech", "explanation"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Request describes the next question to produce.
type Request struct {
	Level catalog.Level
	// Category pins selection to one category. Nil means level-based
	// selection.
	Category *catalog.Category
	// Sequence is the 1-based question number within the session, used
	// for the video round cadence.
	Sequence int
	// DeepDive forces a polysemy-focused sentence. Deep-dive questions
	// bypass the cache in both directions: they must be fresh, and their
	// narrow framing would pollute the shared pool.
	DeepDive bool
	// OnProgress receives human-readable status updates during long
	// generations (video rendering). May be nil.
	OnProgress func(string)
}

// Service is the question pipeline: select a preposition, consult the
// cache, otherwise generate sentence and media, persist, and return a
// playable question.
type Service struct {
	provider  llm.Provider
	questions *cache.Questions
	media     *cache.Media
	cfg       Config
	rng       *rand.Rand
	log       *zap.Logger

	expMu      sync.Mutex
	prefetched map[string]*explanationFuture
}

// explanationFuture is an in-flight explanation prefetch. done is closed
// when text and err are set.
type explanationFuture struct {
	done chan struct{}
	text string
	err  error
}

// NewService creates a question service.
func NewService(provider llm.Provider, questions *cache.Questions, media *cache.Media, cfg Config, rng *rand.Rand, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RoundLength < 0 {
		cfg.RoundLength = 0
	}
	return &Service{
		provider:   provider,
		questions:  questions,
		media:      media,
		cfg:        cfg,
		rng:        rng,
		log:        log,
		prefetched: make(map[string]*explanationFuture),
	}
}

// IsVideoRound reports whether the given 1-based sequence number lands on
// a video question.
func (s *Service) IsVideoRound(sequence int) bool {
	return s.cfg.RoundLength > 0 && sequence > 0 && sequence%s.cfg.RoundLength == 0
}

// NextQuestion produces the next question for the session.
func (s *Service) NextQuestion(ctx context.Context, req Request) (*Question, error) {
	videoRound := s.IsVideoRound(req.Sequence)
	item := SelectPreposition(req.Level, req.Category, videoRound, s.rng, s.log)

	// Video rounds always render fresh; a cached sentence may not
	// describe motion. Deep dives bypass the cache entirely.
	if !req.DeepDive && !videoRound {
		if cached, ok := s.questions.Lookup(ctx, int(req.Level), string(item.Preposition)); ok {
			return s.fromCache(ctx, cached, item)
		}
	}

	sentence, err := s.generateSentence(ctx, req.Level, item, req.DeepDive)
	if err != nil {
		return nil, err
	}

	options := Options(item.Preposition, req.Level, s.rng)
	visualPrompt := BuildVisualPrompt(sentence, item.Preposition, videoRound)

	q := &Question{
		ID:           uuid.NewString(),
		Level:        req.Level,
		Preposition:  item.Preposition,
		Category:     item.Category,
		Sentence:     sentence,
		Options:      options,
		VisualPrompt: visualPrompt,
	}

	q.Media = s.attachMedia(ctx, visualPrompt, videoRound, req.OnProgress)

	// Deep dives and video questions are one-offs; everything else feeds
	// the shared pool.
	if !req.DeepDive && !videoRound {
		s.questions.Store(ctx, store.CachedQuestion{
			ID:           q.ID,
			Level:        int(q.Level),
			Preposition:  string(q.Preposition),
			Sentence:     q.Sentence,
			Options:      optionStrings(q.Options),
			VisualPrompt: q.VisualPrompt,
		})
	}

	s.prefetchExplanation(ctx, q)
	return q, nil
}

// fromCache rebuilds a playable question from a cache hit. The image is
// re-resolved through the media cache, which hits by prompt hash.
func (s *Service) fromCache(ctx context.Context, cached *store.CachedQuestion, item catalog.Item) (*Question, error) {
	q := &Question{
		ID:           cached.ID,
		Level:        catalog.Level(cached.Level),
		Preposition:  item.Preposition,
		Category:     item.Category,
		Sentence:     cached.Sentence,
		Options:      optionPreps(cached.Options),
		VisualPrompt: cached.VisualPrompt,
		FromCache:    true,
	}
	if q.VisualPrompt != "" {
		q.Media = s.attachMedia(ctx, q.VisualPrompt, false, nil)
	}
	s.prefetchExplanation(ctx, q)
	return q, nil
}

func (s *Service) generateSentence(ctx context.Context, level catalog.Level, item catalog.Item, deepDive bool) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeSentence)
	prompt := BuildSentencePrompt(level, item.Preposition, s.cfg.HumorLevel, deepDive, s.rng)

	resp, err := s.provider.GenerateText(ctx, llm.TextRequest{Prompt: prompt})
	if err != nil {
		var cred *llm.ErrCredential
		if errors.As(err, &cred) {
			return "", err
		}
		return "", &GenerationError{Stage: "sentence", Err: err}
	}

	return EnsureBlank(resp.Text, item), nil
}

// attachMedia resolves the question's visual. Video failures fall back to
// a still image; image failures fall back to a stock placeholder. Only a
// credential rejection would have aborted earlier, so by this point the
// question itself is already sound and media trouble must not sink it.
func (s *Service) attachMedia(ctx context.Context, visualPrompt string, video bool, onProgress func(string)) Media {
	if video {
		m, err := s.generateVideo(ctx, visualPrompt, onProgress)
		if err == nil {
			return m
		}
		s.log.Warn("video generation failed, falling back to image", zap.Error(err))
	}

	m, err := s.generateImage(ctx, visualPrompt)
	if err != nil {
		s.log.Warn("image generation failed, using placeholder", zap.Error(err))
		return Media{
			Kind: MediaImage,
			URL:  fmt.Sprintf("https://picsum.photos/800/450?random=%d", s.rng.IntN(1_000_000)),
		}
	}
	return m
}

func (s *Service) generateImage(ctx context.Context, prompt string) (Media, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeImage)
	asset, err := s.media.GetOrGenerate(ctx, "image", prompt, "", func(ctx context.Context) (*store.Media, error) {
		result, err := s.provider.GenerateImage(ctx, llm.ImageRequest{Prompt: prompt})
		if err != nil {
			return nil, err
		}
		return &store.Media{Data: result.Data, URL: result.URL, MIMEType: result.MIMEType}, nil
	})
	if err != nil {
		return Media{}, err
	}
	return Media{Kind: MediaImage, Data: asset.Data, URL: asset.URL, MIMEType: asset.MIMEType}, nil
}

func (s *Service) generateVideo(ctx context.Context, prompt string, onProgress func(string)) (Media, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeVideo)
	aspect := llm.Landscape
	asset, err := s.media.GetOrGenerate(ctx, "video", prompt, string(aspect), func(ctx context.Context) (*store.Media, error) {
		result, err := s.provider.GenerateVideo(ctx, llm.VideoRequest{
			Prompt:      prompt,
			AspectRatio: aspect,
			OnProgress:  onProgress,
		})
		if err != nil {
			return nil, err
		}
		return &store.Media{Data: result.Data, URL: result.URL, MIMEType: result.MIMEType}, nil
	})
	if err != nil {
		return Media{}, err
	}
	return Media{Kind: MediaVideo, Data: asset.Data, URL: asset.URL, MIMEType: asset.MIMEType}, nil
}

// prefetchExplanation starts the explanation request in the background so
// the answer reveal does not wait on the provider. The result is consumed
// by Explain, if at all.
func (s *Service) prefetchExplanation(ctx context.Context, q *Question) {
	f := &explanationFuture{done: make(chan struct{})}
	s.expMu.Lock()
	// Only the newest question's explanation can still be consumed, so
	// earlier unconsumed futures are dropped here.
	s.prefetched = map[string]*explanationFuture{q.ID: f}
	s.expMu.Unlock()

	go func() {
		f.text, f.err = s.explain(ctx, q)
		close(f.done)
	}()
}

// Explain returns the short explanation of why the answer is correct. It
// uses the prefetched result when one is ready; a failed prefetch falls
// back to a fresh request.
func (s *Service) Explain(ctx context.Context, q *Question) (string, error) {
	s.expMu.Lock()
	f := s.prefetched[q.ID]
	delete(s.prefetched, q.ID)
	s.expMu.Unlock()

	if f != nil {
		select {
		case <-f.done:
			if f.err == nil {
				return f.text, nil
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.explain(ctx, q)
}

func (s *Service) explain(ctx context.Context, q *Question) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)
	prompt := BuildExplanationPrompt(q.Sentence, q.Preposition)

	resp, err := s.provider.GenerateText(ctx, llm.TextRequest{Prompt: prompt})
	if err != nil {
		var cred *llm.ErrCredential
		if errors.As(err, &cred) {
			return "", err
		}
		return "", &GenerationError{Stage: "explanation", Err: err}
	}
	return strings.TrimSpace(resp.Text), nil
}

// ExplainExtended returns the long-form explanation with extra examples.
func (s *Service) ExplainExtended(ctx context.Context, q *Question) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExtendedExplanation)
	prompt := BuildExtendedExplanationPrompt(q.Sentence, q.Preposition)

	resp, err := s.provider.GenerateText(ctx, llm.TextRequest{Prompt: prompt})
	if err != nil {
		var cred *llm.ErrCredential
		if errors.As(err, &cred) {
			return "", err
		}
		return "", &GenerationError{Stage: "explanation", Err: err}
	}
	return strings.TrimSpace(resp.Text), nil
}

// Narrate returns spoken audio for the sentence, cached by text and voice.
// reveal controls whether the blank is read as the answer or as "blank".
func (s *Service) Narrate(ctx context.Context, q *Question, reveal bool) (Media, error) {
	filler := "blank"
	if reveal {
		filler = string(q.Preposition)
	}
	text := strings.Replace(q.Sentence, Blank, filler, 1)

	ctx = llm.WithPurpose(ctx, llm.PurposeNarration)
	asset, err := s.media.GetOrGenerate(ctx, "audio", text, s.cfg.Voice, func(ctx context.Context) (*store.Media, error) {
		result, err := s.provider.GenerateSpeech(ctx, llm.SpeechRequest{Text: text, Voice: s.cfg.Voice})
		if err != nil {
			return nil, err
		}
		return &store.Media{Data: result.Data, URL: result.URL, MIMEType: result.MIMEType}, nil
	})
	if err != nil {
		var cred *llm.ErrCredential
		if errors.As(err, &cred) {
			return Media{}, err
		}
		return Media{}, &GenerationError{Stage: "speech", Err: err}
	}
	return Media{Kind: MediaAudio, Data: asset.Data, URL: asset.URL, MIMEType: asset.MIMEType}, nil
}

func optionStrings(options []catalog.Preposition) []string {
	out := make([]string, len(options))
	for i, p := range options {
		out[i] = string(p)
	}
	return out
}

func optionPreps(options []string) []catalog.Preposition {
	out := make([]catalog.Preposition, len(options))
	for i, p := range options {
		out[i] = catalog.Preposition(p)
	}
	return out
}
