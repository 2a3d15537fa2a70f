package llm

import "context"

// Provider is the abstraction over the generative content service. A single
// provider exposes the four generation surfaces the game uses; providers
// that lack a capability return *ErrUnsupported for it, and the factory
// documents which backends support what.
type Provider interface {
	// GenerateText sends a prompt and returns the completion text verbatim.
	GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error)

	// GenerateImage produces a single static image for the prompt.
	GenerateImage(ctx context.Context, req ImageRequest) (*MediaResult, error)

	// GenerateSpeech synthesizes narration audio for the given text.
	GenerateSpeech(ctx context.Context, req SpeechRequest) (*MediaResult, error)

	// GenerateVideo produces a short video clip. This is a long-running
	// operation: implementations poll for completion and report phase
	// changes through req.OnProgress when set.
	GenerateVideo(ctx context.Context, req VideoRequest) (*MediaResult, error)

	// ModelID returns the text model identifier this provider is
	// configured to use.
	ModelID() string
}

// TextRequest describes a single-turn text completion.
type TextRequest struct {
	// System sets the model's role and constraints. Optional.
	System string

	// Prompt is the user instruction.
	Prompt string

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// TextResponse holds a text completion.
type TextResponse struct {
	Text  string
	Usage Usage
	Model string
}

// ImageRequest describes a static image generation.
type ImageRequest struct {
	Prompt string
}

// SpeechRequest describes a text-to-speech synthesis.
type SpeechRequest struct {
	Text string
	// Voice names the synthesis voice. Empty means provider default.
	Voice string
}

// AspectRatio is the frame shape for generated video.
type AspectRatio string

const (
	Landscape AspectRatio = "16:9"
	Portrait  AspectRatio = "9:16"
)

// VideoRequest describes a video generation.
type VideoRequest struct {
	Prompt      string
	AspectRatio AspectRatio

	// OnProgress receives human-readable phase descriptions while the
	// operation runs. May be nil. Called from the polling loop, so
	// callbacks must be quick and must not block.
	OnProgress func(status string)
}

// MediaResult is a generated binary artifact. Exactly one of Data and URL
// is set: Data for inline bytes, URL when the provider serves the artifact
// from storage.
type MediaResult struct {
	Data []byte
	URL  string
	// MIMEType describes Data when known ("image/png", "audio/pcm", ...).
	MIMEType string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
