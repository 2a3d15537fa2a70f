package questiongen

import (
	"regexp"
	"strings"

	"github.com/gitenglishhub/prepal/internal/catalog"
)

// EnsureBlank guarantees the sentence contains exactly one blank token.
// Models occasionally return the completed sentence instead; in that case
// the target preposition is substituted out wherever it appears. If even
// that fails, the catalog's static example sentence is used so the learner
// always gets a playable question.
func EnsureBlank(sentence string, item catalog.Item) string {
	sentence = strings.TrimSpace(sentence)
	if strings.Contains(sentence, Blank) {
		return sentence
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(string(item.Preposition)) + `\b`)
	repaired := re.ReplaceAllString(sentence, Blank)
	if strings.Contains(repaired, Blank) {
		return collapseBlanks(repaired, item.Preposition)
	}

	return strings.Replace(item.ExampleSentence, "___", Blank, 1)
}

// collapseBlanks keeps only the first blank. A sentence using the
// preposition twice would otherwise show two holes, so later occurrences
// are restored to the word itself.
func collapseBlanks(sentence string, prep catalog.Preposition) string {
	first := strings.Index(sentence, Blank)
	if first == -1 {
		return sentence
	}
	head := sentence[:first+len(Blank)]
	tail := strings.ReplaceAll(sentence[first+len(Blank):], Blank, string(prep))
	return head + tail
}
