package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")

	wrapped := []error{
		&ErrCredential{Err: base},
		&ErrRateLimit{Err: base},
		&ErrProviderUnavailable{Err: base},
		&ErrInvalidResponse{Err: base},
	}
	for _, err := range wrapped {
		if !errors.Is(err, base) {
			t.Errorf("%T does not unwrap to base error", err)
		}
	}
}

func TestErrUnsupportedMessage(t *testing.T) {
	err := &ErrUnsupported{Provider: "anthropic", Capability: "speech"}
	if !strings.Contains(err.Error(), "anthropic") || !strings.Contains(err.Error(), "speech") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestMapGeminiErrorNotFoundEntityIsCredential(t *testing.T) {
	err := mapGeminiError(errors.New("rpc error: Requested entity was not found."))
	var cred *ErrCredential
	if !errors.As(err, &cred) {
		t.Fatalf("expected ErrCredential, got %T", err)
	}
}
