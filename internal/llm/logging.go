package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gitenglishhub/prepal/internal/store"
)

// LoggingProvider is a decorator that records every generation request as
// an event row.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	start := time.Now()
	resp, err := l.inner.GenerateText(ctx, req)

	data := l.eventData(ctx, "text", serializeText(req), start, err)
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = resp.Text
	}
	l.append(ctx, data)

	return resp, err
}

func (l *LoggingProvider) GenerateImage(ctx context.Context, req ImageRequest) (*MediaResult, error) {
	start := time.Now()
	resp, err := l.inner.GenerateImage(ctx, req)
	l.appendMedia(ctx, "image", req.Prompt, start, resp, err)
	return resp, err
}

func (l *LoggingProvider) GenerateSpeech(ctx context.Context, req SpeechRequest) (*MediaResult, error) {
	start := time.Now()
	resp, err := l.inner.GenerateSpeech(ctx, req)
	l.appendMedia(ctx, "speech", req.Text, start, resp, err)
	return resp, err
}

func (l *LoggingProvider) GenerateVideo(ctx context.Context, req VideoRequest) (*MediaResult, error) {
	start := time.Now()
	resp, err := l.inner.GenerateVideo(ctx, req)
	l.appendMedia(ctx, "video", req.Prompt, start, resp, err)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) eventData(ctx context.Context, capability, body string, start time.Time, err error) store.LLMRequestEventData {
	data := store.LLMRequestEventData{
		Model:       l.inner.ModelID(),
		Capability:  capability,
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: body,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	return data
}

func (l *LoggingProvider) appendMedia(ctx context.Context, capability, prompt string, start time.Time, resp *MediaResult, err error) {
	data := l.eventData(ctx, capability, prompt, start, err)
	if resp != nil {
		if resp.URL != "" {
			data.ResponseBody = resp.URL
		} else {
			data.ResponseBody = fmt.Sprintf("%d bytes (%s)", len(resp.Data), resp.MIMEType)
		}
	}
	l.append(ctx, data)
}

// append records the event but never fails the request over a logging error.
func (l *LoggingProvider) append(ctx context.Context, data store.LLMRequestEventData) {
	if err := l.eventRepo.AppendLLMRequest(ctx, data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log generation event: %v\n", err)
	}
}

// serializeText builds a readable representation of a text request.
func serializeText(req TextRequest) string {
	if req.System == "" {
		return req.Prompt
	}
	return "[system]\n" + req.System + "\n\n[user]\n" + req.Prompt
}
