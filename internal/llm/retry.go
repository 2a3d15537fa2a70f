package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter. All four capabilities share the same
// retry policy.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	var resp *TextResponse
	err := r.retry(ctx, func() error {
		var callErr error
		resp, callErr = r.inner.GenerateText(ctx, req)
		return callErr
	})
	return resp, err
}

func (r *RetryProvider) GenerateImage(ctx context.Context, req ImageRequest) (*MediaResult, error) {
	var resp *MediaResult
	err := r.retry(ctx, func() error {
		var callErr error
		resp, callErr = r.inner.GenerateImage(ctx, req)
		return callErr
	})
	return resp, err
}

func (r *RetryProvider) GenerateSpeech(ctx context.Context, req SpeechRequest) (*MediaResult, error) {
	var resp *MediaResult
	err := r.retry(ctx, func() error {
		var callErr error
		resp, callErr = r.inner.GenerateSpeech(ctx, req)
		return callErr
	})
	return resp, err
}

// GenerateVideo is not retried beyond the poll loop the backend already
// runs; a failed multi-minute render is surfaced to the caller, who owns
// the decision to start another one.
func (r *RetryProvider) GenerateVideo(ctx context.Context, req VideoRequest) (*MediaResult, error) {
	return r.inner.GenerateVideo(ctx, req)
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) retry(ctx context.Context, call func() error) error {
	var lastErr error
	invalidRetried := false

	for attempt := range r.config.MaxAttempts {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.shouldRetry(err, &invalidRetried) {
			return err
		}

		// Last attempt — don't sleep, just return the error.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}

// shouldRetry determines if an error is retryable.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// A rejected credential needs re-authentication, not another attempt.
	var cred *ErrCredential
	if errors.As(err, &cred) {
		return false
	}

	// A missing capability will stay missing.
	var unsup *ErrUnsupported
	if errors.As(err, &unsup) {
		return false
	}

	// Invalid response gets one retry.
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	// Rate limit and provider unavailable are retryable.
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var unavail *ErrProviderUnavailable
	if errors.As(err, &unavail) {
		return true
	}

	// Other errors (network, etc.) are treated as transient.
	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
