package questiongen

// DefaultRoundLength is how many questions make up a round; the last
// question of each round is a video question.
const DefaultRoundLength = 5

// Config tunes question generation.
type Config struct {
	// HumorLevel is the 0-10 tone dial fed into the sentence prompt.
	HumorLevel int
	// RoundLength is the video round cadence. Zero disables video rounds.
	RoundLength int
	// Voice is the TTS voice used for narration. Empty uses the
	// provider default.
	Voice string
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		HumorLevel:  5,
		RoundLength: DefaultRoundLength,
	}
}
