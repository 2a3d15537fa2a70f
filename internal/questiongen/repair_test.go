package questiongen

import (
	"strings"
	"testing"

	"github.com/gitenglishhub/prepal/internal/catalog"
)

func itemFor(t *testing.T, p catalog.Preposition) catalog.Item {
	t.Helper()
	item, ok := catalog.Lookup(p)
	if !ok {
		t.Fatalf("unknown preposition %q", p)
	}
	return item
}

func TestEnsureBlankKeepsWellFormedSentence(t *testing.T) {
	item := itemFor(t, catalog.Under)
	got := EnsureBlank("The dog hides ______ the bed.", item)
	if got != "The dog hides ______ the bed." {
		t.Fatalf("sentence altered: %q", got)
	}
}

func TestEnsureBlankSubstitutesMissingBlank(t *testing.T) {
	item := itemFor(t, catalog.Under)
	got := EnsureBlank("The dog hides under the bed.", item)
	if got != "The dog hides ______ the bed." {
		t.Fatalf("unexpected repair: %q", got)
	}
}

func TestEnsureBlankIsCaseInsensitive(t *testing.T) {
	item := itemFor(t, catalog.Under)
	got := EnsureBlank("Under the bridge, the river flows.", item)
	if !strings.HasPrefix(got, "______") {
		t.Fatalf("case-insensitive match failed: %q", got)
	}
}

func TestEnsureBlankDoesNotMatchSubstrings(t *testing.T) {
	// "in" appears inside "inside"; the word boundary must protect it.
	item := itemFor(t, catalog.In)
	got := EnsureBlank("She waits inside while it rains in town.", item)
	if strings.Contains(got, "______side") {
		t.Fatalf("substring mangled: %q", got)
	}
	if !strings.Contains(got, "______") {
		t.Fatalf("no blank produced: %q", got)
	}
}

func TestEnsureBlankMultiWordPreposition(t *testing.T) {
	item := itemFor(t, catalog.OutOf)
	got := EnsureBlank("The cat jumped out of the box.", item)
	if got != "The cat jumped ______ the box." {
		t.Fatalf("multi-word repair failed: %q", got)
	}
}

func TestEnsureBlankFallsBackToExample(t *testing.T) {
	item := itemFor(t, catalog.Under)
	got := EnsureBlank("A sentence about something else entirely.", item)
	if !strings.Contains(got, "______") {
		t.Fatalf("fallback has no blank: %q", got)
	}
	if strings.Contains(got, "something else") {
		t.Fatalf("expected the catalog example, got: %q", got)
	}
}

func TestEnsureBlankCollapsesRepeatedUse(t *testing.T) {
	item := itemFor(t, catalog.On)
	got := EnsureBlank("The book is on the shelf on the wall.", item)
	if strings.Count(got, Blank) != 1 {
		t.Fatalf("expected exactly one blank: %q", got)
	}
	// The second occurrence reads as the word again.
	if !strings.Contains(got, "on the wall") {
		t.Fatalf("second occurrence lost: %q", got)
	}
}
