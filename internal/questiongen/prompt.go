package questiongen

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gitenglishhub/prepal/internal/catalog"
)

// Blank is the placeholder token the learner fills in.
const Blank = "______"

// levelStyle pins sentence difficulty to COCA (Corpus of Contemporary
// American English) frequency bands. typedChance is the probability the
// sentence is asked as a question or exclamation instead of a statement.
type levelStyle struct {
	vocab       string
	structure   string
	typedChance float64
}

var levelStyles = map[catalog.Level]levelStyle{
	catalog.Level1: {
		vocab:     "STRICTLY usage of only the Top 500 words in COCA (American). Use varied and interesting lexical choices.",
		structure: "Simple Active Subject-Verb-Object. Max 6 words.",
	},
	catalog.Level2: {
		vocab:     "STRICTLY usage of only the Top 800 words in COCA. Use varied and interesting lexical choices.",
		structure: "Active sentences. Max 7 words.",
	},
	catalog.Level3: {
		vocab:     "STRICTLY usage of only the Top 1200 words in COCA. Use varied and interesting lexical choices.",
		structure: "Simple compound sentences. Max 9 words. Vary grammatical patterns.",
	},
	catalog.Level4: {
		vocab:     "STRICTLY usage of only the Top 1800 words in COCA. Use varied and interesting lexical choices.",
		structure: "Sentences with basic adjectives. Max 10 words. Vary grammatical patterns and simple clauses.",
	},
	catalog.Level5: {
		vocab:     "STRICTLY usage of only the Top 2500 words in COCA. Use varied and interesting lexical choices.",
		structure: "Conversational American English. Max 12 words. Incorporate more complex clauses or phrases.",
	},
	catalog.Level6: {
		vocab:     "STRICTLY usage of only the Top 3200 words in COCA. Use varied and interesting lexical choices.",
		structure: "Conversational. Max 13 words. Utilize various tenses (Future/Past) and more complex sentence structures.",
	},
	catalog.Level7: {
		vocab:       "Usage of Top 4000 words in COCA. Use varied and interesting lexical choices.",
		structure:   "Natural, fluent American phrasing. Max 15 words. Include diverse grammatical structures.",
		typedChance: 0.2,
	},
	catalog.Level8: {
		vocab:       "Usage of the full Top 5000 words in COCA (Mastery). Use varied and interesting lexical choices.",
		structure:   "Natural, fluent American phrasing. Max 16 words. Include diverse and more complex grammatical structures.",
		typedChance: 0.2,
	},
	catalog.Level9: {
		vocab:       "Advanced vocabulary (Top 8000 COCA). Use varied and interesting lexical choices.",
		structure:   "Complex, nuanced American idioms. Max 18 words. Explore sophisticated grammatical constructions.",
		typedChance: 0.25,
	},
	catalog.Level10: {
		vocab:       "Unrestricted Native-level American eloquence. Use varied and interesting lexical choices.",
		structure:   "Highly sophisticated, abstract, or literary structures. Max 20 words. Employ a full range of grammatical complexity.",
		typedChance: 0.25,
	},
}

var fallbackStyle = levelStyle{
	vocab:     "Top 2000 COCA words. Use varied and interesting lexical choices.",
	structure: "Standard American English. Vary grammatical patterns.",
}

// deepDiveContexts are the polysemy framings a deep-dive question can take.
var deepDiveContexts = []string{
	"a physical/spatial context (e.g., location, surface)",
	"a temporal context (e.g., time, duration, sequence)",
	"an abstract or metaphorical context (e.g., emotions, ideas)",
	"an idiomatic expression or phrasal verb usage",
}

// toneFor maps the 0-10 humor dial to a tone directive.
func toneFor(humorLevel int) string {
	switch {
	case humorLevel <= 2:
		return "Tone: Professional, academic, and direct."
	case humorLevel <= 5:
		return "Tone: Casual, friendly, and conversational."
	case humorLevel <= 8:
		return "Tone: Energetic, enthusiastic, and lively."
	default:
		return "Tone: Playful, witty, and clever."
	}
}

// BuildSentencePrompt builds the generation prompt for a fill-in-the-blank
// sentence. deepDive forces the sentence into one of the polysemy framings
// instead of a generic usage.
func BuildSentencePrompt(level catalog.Level, prep catalog.Preposition, humorLevel int, deepDive bool, rng *rand.Rand) string {
	style, ok := levelStyles[level]
	if !ok {
		style = fallbackStyle
	}

	sentenceType := "declarative"
	if style.typedChance > 0 && rng.Float64() < style.typedChance {
		if rng.Float64() < 0.5 {
			sentenceType = "interrogative"
		} else {
			sentenceType = "exclamatory"
		}
	}

	var typeInstruction string
	switch sentenceType {
	case "interrogative":
		typeInstruction = "The sentence MUST be an **INTERROGATIVE QUESTION**. Ensure the question can be visually depicted."
	case "exclamatory":
		typeInstruction = "The sentence MUST be an **EXCLAMATORY STATEMENT**. Ensure the exclamation can be visually depicted."
	default:
		typeInstruction = "The sentence MUST be a **DECLARATIVE STATEMENT**."
	}

	var deepDiveContext string
	if deepDive {
		contextType := deepDiveContexts[rng.IntN(len(deepDiveContexts))]
		deepDiveContext = fmt.Sprintf(`
TASK: This is a DEEP DIVE into the polysemous nature of %q.
CONSTRAINT: You MUST generate a sentence using %q in specifically **%s**.
Avoid generic usages. Explore the nuance of this word.
`, prep, prep, contextType)
	}

	return fmt.Sprintf(`Generate ONE single, natural-sounding **American English** sentence using the preposition %q.
Include a single blank '%s' where the preposition should fit.

CRITICAL PEDAGOGICAL DIRECTIVES:
1. **REAL AMERICAN ENGLISH ONLY**: Absolutely NO British spellings or vocabulary.
2. **Pedagogical Level**: %s
3. **Structure & Type**: %s %s
4. **Context & Ambiguity Prevention**:
   - The sentence MUST depict a clear **REAL-WORLD, EVERYDAY** physical scene.
   - **CRITICAL**: The context must rule out other common prepositions.
     - If the target is "IN" (Location), DO NOT use movement verbs like "walk", "run", or "go" that could imply "THROUGH" or "TO". Use containment verbs like "sit", "wait", "stand", "live", or "hide".
     - If the target is "TO" (Direction), ensure there is a clear destination point, not a container.
     - Example Bad: "She walks %s the park." (Could be IN, THROUGH, or TO).
     - Example Good: "She has a picnic %s the park." (Clearly IN).
   - **Verb Selection**: Use active verbs (e.g., "places", "holds") over static "is/are" whenever possible, UNLESS a static verb is required to prevent ambiguity (as above).
   - **FORBIDDEN**: NO fantasy, NO sci-fi, NO video game aesthetics.
5. %s
%s
Return ONLY the sentence.`,
		prep, Blank, style.vocab, typeInstruction, style.structure,
		Blank, Blank, toneFor(humorLevel), deepDiveContext)
}

// BuildVisualPrompt builds the image or video prompt for a completed
// sentence. forVideo appends motion directives so the clip shows the
// action rather than a still arrangement.
func BuildVisualPrompt(sentence string, prep catalog.Preposition, forVideo bool) string {
	completed := strings.Replace(sentence, Blank, string(prep), 1)
	prompt := fmt.Sprintf(`Cinematic, photorealistic photography, documentary style. The image MUST be a LITERAL visual translation of the following scene: %q. Focus strictly on the physical spatial relationship described by %q. Natural lighting. Real world setting. NO text. NO visual metaphors. NO magical elements.`,
		completed, prep)
	if forVideo {
		prompt += " ACTION-ORIENTED: This is a video. Capture the DYNAMIC MOTION and MOVEMENT described. The scene must show active changing state or continuous action."
	}
	return prompt
}

// BuildExplanationPrompt builds the prompt for the short why-is-this-right
// explanation shown after a wrong answer.
func BuildExplanationPrompt(sentence string, prep catalog.Preposition) string {
	completed := strings.Replace(sentence, Blank, fmt.Sprintf("%q", prep), 1)
	return fmt.Sprintf(`Explain strictly the grammatical or contextual reason why %q is correct in the sentence: %q.

STRICT FORMATTING RULES:
1. Start the explanation IMMEDIATELY. DO NOT use filler phrases like "That's a great question" or "Here is why".
2. Use **bold** for the preposition and key words.
3. Keep it under 40 words.
4. Be direct and educational.
5. Strictly American English.`, prep, completed)
}

// BuildExtendedExplanationPrompt builds the prompt for the longer
// explanation with extra example sentences.
func BuildExtendedExplanationPrompt(sentence string, prep catalog.Preposition) string {
	completed := strings.Replace(sentence, Blank, string(prep), 1)
	return fmt.Sprintf(`Provide a detailed grammatical and contextual explanation for the preposition %q in the sentence %q.

Include 2-3 additional clear and distinct example sentences illustrating different uses or nuances of %q.

STRICT FORMATTING RULES:
1. Start immediately. DO NOT use conversational fillers.
2. Use **bold** for the preposition and key grammatical terms.
3. Ensure the explanation is educational and covers various semantic aspects (e.g., spatial, temporal, abstract).
4. Strictly American English.`, prep, completed, prep)
}
