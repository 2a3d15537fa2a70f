package questiongen

import (
	"testing"

	"github.com/gitenglishhub/prepal/internal/catalog"
)

func TestSelectRespectsLevelAllowList(t *testing.T) {
	rng := testRNG()
	allowed := catalog.AllowedSet(catalog.Level1)
	for range 100 {
		item := SelectPreposition(catalog.Level1, nil, false, rng, nil)
		if !allowed[item.Preposition] {
			t.Fatalf("%q is not unlocked at level 1", item.Preposition)
		}
	}
}

func TestSelectLowLevelsStayConcrete(t *testing.T) {
	rng := testRNG()
	for range 100 {
		item := SelectPreposition(catalog.Level2, nil, false, rng, nil)
		if item.Category != catalog.Location && item.Category != catalog.Direction {
			t.Fatalf("level 2 drew from %q", item.Category)
		}
	}
}

func TestSelectMidLevelsAddTime(t *testing.T) {
	rng := testRNG()
	seen := map[catalog.Category]bool{}
	for range 500 {
		item := SelectPreposition(catalog.Level4, nil, false, rng, nil)
		seen[item.Category] = true
		switch item.Category {
		case catalog.Location, catalog.Direction, catalog.Time:
		default:
			t.Fatalf("level 4 drew from %q", item.Category)
		}
	}
	if !seen[catalog.Time] {
		t.Fatal("level 4 never drew a time preposition")
	}
}

func TestSelectPinnedCategory(t *testing.T) {
	rng := testRNG()
	cat := catalog.Time
	for range 50 {
		item := SelectPreposition(catalog.Level4, &cat, false, rng, nil)
		if item.Category != catalog.Time {
			t.Fatalf("pinned category ignored: got %q", item.Category)
		}
	}
}

func TestSelectVideoRoundPrefersMotion(t *testing.T) {
	rng := testRNG()
	for range 100 {
		item := SelectPreposition(catalog.Level7, nil, true, rng, nil)
		if !catalog.IsDynamic(item.Preposition) {
			t.Fatalf("video round chose static preposition %q", item.Preposition)
		}
	}
}

func TestSelectVideoRoundFallsBackWhenNoDynamicAvailable(t *testing.T) {
	// Pinning to Time leaves no dynamic candidates; the selector must
	// still return something playable from that category.
	rng := testRNG()
	cat := catalog.Time
	item := SelectPreposition(catalog.Level4, &cat, true, rng, nil)
	if item.Category != catalog.Time {
		t.Fatalf("fallback left the pinned category: %q", item.Category)
	}
}

func TestSelectFallbackBasics(t *testing.T) {
	// Agent prepositions unlock late; pinning the category at level 1
	// leaves nothing, which triggers the in/on/at fallback.
	rng := testRNG()
	cat := catalog.Agent
	for range 20 {
		item := SelectPreposition(catalog.Level1, &cat, false, rng, nil)
		switch item.Preposition {
		case catalog.In, catalog.On, catalog.At:
		default:
			t.Fatalf("unexpected fallback preposition %q", item.Preposition)
		}
	}
}
