package questiongen

import (
	"github.com/gitenglishhub/prepal/internal/catalog"
)

// MediaKind identifies the visual asset attached to a question.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaNone  MediaKind = ""
)

// Media is the visual asset attached to a question. Data holds inline
// bytes; URL points at an externally-hosted asset (including the
// placeholder used when image generation fails).
type Media struct {
	Kind     MediaKind
	Data     []byte
	URL      string
	MIMEType string
}

// Question is a fully-formed quiz question ready to present.
type Question struct {
	ID          string
	Level       catalog.Level
	Preposition catalog.Preposition
	Category    catalog.Category
	// Sentence contains exactly one "______" blank.
	Sentence string
	// Options holds the answer plus its distractors, shuffled.
	Options []catalog.Preposition
	// VisualPrompt is the prompt the media was generated from, kept for
	// cache reuse.
	VisualPrompt string
	Media        Media
	// FromCache reports whether the question was served from the cache
	// rather than freshly generated.
	FromCache bool
}

// Answer returns the correct preposition.
func (q *Question) Answer() catalog.Preposition {
	return q.Preposition
}
