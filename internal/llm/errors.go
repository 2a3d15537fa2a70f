package llm

import (
	"fmt"
	"time"
)

// ErrCredential indicates the provider rejected the request for
// authentication or entitlement reasons. Callers must treat this as
// "re-authenticate", never as retryable.
type ErrCredential struct {
	Err error
}

func (e *ErrCredential) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider credential rejected: %v", e.Err)
	}
	return "provider credential rejected"
}

func (e *ErrCredential) Unwrap() error { return e.Err }

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return "provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the provider returned content the caller
// cannot use (empty completion, no image part, malformed payload).
type ErrInvalidResponse struct {
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid provider response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrUnsupported indicates the configured provider has no implementation of
// the requested capability (e.g. video on a text-only backend).
type ErrUnsupported struct {
	Provider   string
	Capability string
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("%s provider does not support %s generation", e.Provider, e.Capability)
}
