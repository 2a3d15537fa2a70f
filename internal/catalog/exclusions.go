package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

func bytesReader(s string) io.Reader { return strings.NewReader(s) }

// The exclusion table lists, for each preposition, the other prepositions
// considered semantically confusable with it in many contexts. Those must
// never be offered as wrong answers alongside it, because a generated
// sentence is not guaranteed to rule them out.
//
// The table is configuration data, so it ships as embedded JSON and is
// validated against a schema at load time.

//go:embed exclusions.json
var exclusionsRaw []byte

const exclusionsSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {"type": "string", "minLength": 1},
		"uniqueItems": true
	}
}`

// Exclusions maps a preposition to the set of prepositions that may not
// appear as distractors for it.
type Exclusions map[Preposition][]Preposition

var exclusions = mustLoadExclusions()

// ExclusionsFor returns the exclusion set for p. Missing entries mean no
// exclusions. Callers must not mutate the returned slice.
func ExclusionsFor(p Preposition) []Preposition {
	return exclusions[p]
}

// ExclusionTable returns the whole loaded table.
func ExclusionTable() Exclusions {
	return exclusions
}

func mustLoadExclusions() Exclusions {
	ex, err := loadExclusions(exclusionsRaw)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded exclusion table: %v", err))
	}
	return ex
}

func loadExclusions(raw []byte) (Exclusions, error) {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytesReader(exclusionsSchema))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://exclusions.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema://exclusions.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse exclusions: %w", err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("exclusion table invalid: %w", err)
	}

	var table map[Preposition][]Preposition
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode exclusions: %w", err)
	}

	// Every key and value must name a known preposition.
	for key, vals := range table {
		if _, ok := byPreposition[key]; !ok {
			return nil, fmt.Errorf("exclusion table: unknown preposition %q", key)
		}
		for _, v := range vals {
			if _, ok := byPreposition[v]; !ok {
				return nil, fmt.Errorf("exclusion table: unknown preposition %q under %q", v, key)
			}
			if v == key {
				return nil, fmt.Errorf("exclusion table: %q excludes itself", key)
			}
		}
	}

	return table, nil
}

// Gap is one missing half of an exclusion pair: A excludes B but B does not
// exclude A.
type Gap struct {
	From Preposition
	To   Preposition
}

// ExclusionGaps reports asymmetric pairs in the table, sorted for stable
// output. The table is hand-curated, so gaps are reported rather than
// silently patched; whether a gap is a curation bug or deliberate is a call
// for a human.
func ExclusionGaps() []Gap {
	var gaps []Gap
	for from, vals := range exclusions {
		for _, to := range vals {
			if !containsPrep(exclusions[to], from) {
				gaps = append(gaps, Gap{From: from, To: to})
			}
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].From != gaps[j].From {
			return gaps[i].From < gaps[j].From
		}
		return gaps[i].To < gaps[j].To
	})
	return gaps
}

func containsPrep(list []Preposition, p Preposition) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
