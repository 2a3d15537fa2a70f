package questiongen

import (
	"math/rand/v2"

	"github.com/gitenglishhub/prepal/internal/catalog"
)

// wrongCountFor scales the number of distractors with difficulty: two at
// the easiest levels up to five at the hardest.
func wrongCountFor(level catalog.Level) int {
	switch {
	case level <= catalog.Level2:
		return 2
	case level <= catalog.Level5:
		return 3
	case level <= catalog.Level8:
		return 4
	default:
		return 5
	}
}

// Options builds the shuffled answer set for a question: the correct
// preposition plus level-scaled distractors. Distractors that would also
// fit the sentence (per the ambiguity table) are excluded; if the pool
// runs dry the exclusions are relaxed from the tail, since the table lists
// the most confusable pairs first.
func Options(answer catalog.Preposition, level catalog.Level, rng *rand.Rand) []catalog.Preposition {
	wrongCount := wrongCountFor(level)
	excluded := catalog.ExclusionsFor(answer)

	pool := make([]catalog.Preposition, 0, len(catalog.All()))
	for _, item := range catalog.All() {
		pool = append(pool, item.Preposition)
	}

	options := []catalog.Preposition{answer}
	for len(options) < wrongCount+1 {
		candidates := eligible(pool, options, excluded)
		if len(candidates) == 0 {
			if len(excluded) == 0 {
				break
			}
			excluded = excluded[:len(excluded)-1]
			continue
		}
		options = append(options, candidates[rng.IntN(len(candidates))])
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

func eligible(pool, chosen, excluded []catalog.Preposition) []catalog.Preposition {
	var out []catalog.Preposition
	for _, p := range pool {
		if containsPrep(chosen, p) || containsPrep(excluded, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsPrep(list []catalog.Preposition, p catalog.Preposition) bool {
	for _, existing := range list {
		if existing == p {
			return true
		}
	}
	return false
}
