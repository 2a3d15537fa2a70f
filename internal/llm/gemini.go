package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini text model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiProvider implements Provider using the Google Gemini SDK. It is the
// only backend that covers all four capabilities (text, image, speech via
// the TTS models, video via Veo).
type GeminiProvider struct {
	client *genai.Client
	cfg    GeminiConfig
	model  string

	// sleep is swapped out in tests to avoid real waits during polling.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	cfg = cfg.withDefaults()

	return &GeminiProvider{
		client: client,
		cfg:    cfg,
		model:  resolveModel(cfg.Model, geminiModels),
		sleep:  sleepCtx,
	}, nil
}

func (p *GeminiProvider) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty completion")}
	}

	resp := &TextResponse{Text: text, Model: p.model}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) GenerateImage(ctx context.Context, req ImageRequest) (*MediaResult, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.cfg.ImageModel, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &MediaResult{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return nil, &ErrInvalidResponse{Err: fmt.Errorf("no image in response")}
}

func (p *GeminiProvider) GenerateSpeech(ctx context.Context, req SpeechRequest) (*MediaResult, error) {
	voice := req.Voice
	if voice == "" {
		voice = p.cfg.Voice
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Text}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.cfg.SpeechModel, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &MediaResult{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return nil, &ErrInvalidResponse{Err: fmt.Errorf("no audio in response")}
}

// videoPhases are the progress descriptions reported while a Veo operation
// runs, advanced as polling time passes.
var videoPhases = []struct {
	after time.Duration
	label string
}{
	{0, "Setting up the scene..."},
	{15 * time.Second, "Rendering frames..."},
	{45 * time.Second, "Adding motion and detail..."},
	{90 * time.Second, "Finalizing your video..."},
}

func (p *GeminiProvider) GenerateVideo(ctx context.Context, req VideoRequest) (*MediaResult, error) {
	aspect := string(req.AspectRatio)
	if aspect == "" {
		aspect = string(Landscape)
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio: aspect,
	}

	op, err := p.client.Models.GenerateVideos(ctx, p.cfg.VideoModel, req.Prompt, nil, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	report := func(s string) {
		if req.OnProgress != nil {
			req.OnProgress(s)
		}
	}
	report(videoPhases[0].label)

	start := time.Now()
	for !op.Done {
		if elapsed := time.Since(start); elapsed > p.cfg.VideoMaxWait {
			return nil, &ErrProviderUnavailable{
				Err: fmt.Errorf("video generation exceeded %s", p.cfg.VideoMaxWait),
			}
		}

		if err := p.sleep(ctx, p.cfg.VideoPollInterval); err != nil {
			return nil, err
		}

		op, err = p.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, mapGeminiError(err)
		}
		report(phaseFor(time.Since(start)))
	}

	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("operation completed without a video")}
	}

	video := op.Response.GeneratedVideos[0].Video
	if len(video.VideoBytes) > 0 {
		return &MediaResult{Data: video.VideoBytes, MIMEType: video.MIMEType}, nil
	}
	if video.URI != "" {
		return &MediaResult{URL: video.URI, MIMEType: video.MIMEType}, nil
	}
	return nil, &ErrInvalidResponse{Err: fmt.Errorf("generated video has no bytes or URI")}
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func phaseFor(elapsed time.Duration) string {
	label := videoPhases[0].label
	for _, ph := range videoPhases {
		if elapsed >= ph.after {
			label = ph.label
		}
	}
	return label
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return &ErrCredential{Err: err}
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.Code >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	// The API reports a missing or revoked key entitlement as a not-found
	// entity rather than a 401.
	if strings.Contains(err.Error(), "Requested entity was not found") {
		return &ErrCredential{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
