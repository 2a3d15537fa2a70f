package llm

import "context"

// CredentialProvider answers whether a usable API credential exists and,
// when the backend reports a rejected key, obtains a fresh one. Callers
// receiving an ErrCredential should call RequestCredential and then retry
// the operation with a rebuilt provider.
type CredentialProvider interface {
	HasCredential() bool
	RequestCredential(ctx context.Context) error
}

// StaticCredential is the default CredentialProvider: the key comes from
// the environment and cannot be refreshed at runtime.
type StaticCredential struct {
	Key string
}

func (s StaticCredential) HasCredential() bool {
	return s.Key != ""
}

// RequestCredential cannot mint a new key; it reports whether the existing
// one is present so the caller can surface a re-auth message.
func (s StaticCredential) RequestCredential(context.Context) error {
	if s.Key == "" {
		return &ErrCredential{}
	}
	return nil
}
