package catalog

import "testing"

func TestAllCount(t *testing.T) {
	if got := len(All()); got != 37 {
		t.Fatalf("expected 37 prepositions, got %d", got)
	}
}

func TestLookup(t *testing.T) {
	it, ok := Lookup(Between)
	if !ok {
		t.Fatal("expected between to exist")
	}
	if it.Category != Location {
		t.Errorf("expected Location category, got %q", it.Category)
	}
	if it.ExampleSentence == "" {
		t.Error("expected example sentence")
	}

	if _, ok := Lookup(Preposition("betwixt")); ok {
		t.Error("unknown preposition should not resolve")
	}
}

func TestByCategory(t *testing.T) {
	items := ByCategory(Agent)
	if len(items) != 1 || items[0].Preposition != By {
		t.Fatalf("expected only 'by' in Agent, got %v", items)
	}

	both := ByCategory(Location, Direction)
	seen := make(map[Preposition]int)
	for _, it := range both {
		seen[it.Preposition]++
		if it.Category != Location && it.Category != Direction {
			t.Errorf("unexpected category %q for %q", it.Category, it.Preposition)
		}
	}
	for p, n := range seen {
		if n > 1 {
			t.Errorf("%q appeared %d times", p, n)
		}
	}
}

func TestDetailFallsBackToDescription(t *testing.T) {
	if Detail(Per) == "" {
		t.Error("expected detail for per")
	}
	if Detail(Preposition("nope")) != "" {
		t.Error("expected empty detail for unknown preposition")
	}
}

func TestAllowedEveryLevelNonEmpty(t *testing.T) {
	for lvl := Level1; lvl <= Level10; lvl++ {
		list := Allowed(lvl)
		if len(list) == 0 {
			t.Errorf("level %d has empty allow-list", lvl)
		}
		for _, p := range list {
			if _, ok := Lookup(p); !ok {
				t.Errorf("level %d allows unknown preposition %q", lvl, p)
			}
		}
	}
}

func TestAllowedClampsOutOfRange(t *testing.T) {
	if got, want := Allowed(Level(0)), Allowed(Level1); len(got) != len(want) {
		t.Error("below-range level should clamp to Level1")
	}
	if got, want := Allowed(Level(99)), Allowed(Level10); len(got) != len(want) {
		t.Error("above-range level should clamp to Level10")
	}
}

func TestLevelFromRank(t *testing.T) {
	cases := []struct {
		rank int
		want Level
	}{
		{1, Level1},
		{3, Level1},
		{4, Level2},
		{18, Level5},
		{36, Level10},
		{0, Level1},
		{99, Level10},
	}
	for _, c := range cases {
		if got := LevelFromRank(c.rank); got != c.want {
			t.Errorf("LevelFromRank(%d) = %d, want %d", c.rank, got, c.want)
		}
	}
}

func TestRankTitle(t *testing.T) {
	if RankTitle(1) != "Novice I" {
		t.Errorf("unexpected title for rank 1: %q", RankTitle(1))
	}
	if RankTitle(36) != "Legend IV" {
		t.Errorf("unexpected title for rank 36: %q", RankTitle(36))
	}
	if RankTitle(0) != "Novice I" || RankTitle(100) != "Legend IV" {
		t.Error("out-of-range ranks should clamp")
	}
}

func TestIsDynamic(t *testing.T) {
	if !IsDynamic(Through) {
		t.Error("through should be dynamic")
	}
	if IsDynamic(Beneath) {
		t.Error("beneath should not be dynamic")
	}
}
