package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purpose labels for event logging. The question pipeline tags every
// request so `prepal llm list --purpose` can slice the event log by what
// the request was for.
const (
	PurposeSentence            = "question_sentence"
	PurposeImage               = "question_image"
	PurposeVideo               = "question_video"
	PurposeExplanation         = "explanation"
	PurposeExtendedExplanation = "extended_explanation"
	PurposeNarration           = "narration"
)

// WithPurpose attaches a purpose label to the context. The logging
// decorator records it on the event row.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
