package catalog

import "math"

// Level is the 10-step difficulty ladder the game plays on. Each level maps
// to a CEFR band and carries an explicit allow-list of prepositions.
type Level int

const (
	Level1  Level = 1  // A1
	Level2  Level = 2  // A1.5
	Level3  Level = 3  // A2
	Level4  Level = 4  // A2.5
	Level5  Level = 5  // B1
	Level6  Level = 6  // B1.5
	Level7  Level = 7  // B2
	Level8  Level = 8  // B2.5
	Level9  Level = 9  // C1
	Level10 Level = 10 // C1.5
)

// MaxRank is the top of the fine-grained 36-rank proficiency ladder that the
// settings surface exposes; ranks map onto the 10 game levels.
const MaxRank = 36

// allowByLevel gates which prepositions may be drilled at each level,
// independent of category.
var allowByLevel = map[Level][]Preposition{
	Level1:  {In, On, At, To},
	Level2:  {From, Up, With, By, For},
	Level3:  {Under, Over, For},
	Level4:  {Before, After, Near},
	Level5:  {Behind, Into, Off},
	Level6:  {Between, Among, Around},
	Level7:  {Through, Across, Along},
	Level8:  {Past, Inside, Towards},
	Level9:  {OutOf, Above, Below, Within},
	Level10: {Beneath, Beside, Against, Beyond, Upon, Per},
}

// Allowed returns the allow-list for lvl. Out-of-range levels clamp to the
// nearest valid level.
func Allowed(lvl Level) []Preposition {
	return allowByLevel[clampLevel(lvl)]
}

// AllowedSet returns the allow-list for lvl as a membership map.
func AllowedSet(lvl Level) map[Preposition]bool {
	list := Allowed(lvl)
	m := make(map[Preposition]bool, len(list))
	for _, p := range list {
		m[p] = true
	}
	return m
}

func clampLevel(lvl Level) Level {
	if lvl < Level1 {
		return Level1
	}
	if lvl > Level10 {
		return Level10
	}
	return lvl
}

// dynamic is the subset of prepositions whose core meaning implies movement,
// preferred when a round's media is video.
var dynamic = map[Preposition]bool{
	Through: true, Along: true, Across: true,
	Into: true, OutOf: true, Past: true,
	Around: true, Towards: true, Over: true,
	Under: true, Up: true, Off: true, From: true,
}

// IsDynamic reports whether p reads as motion and so films well.
func IsDynamic(p Preposition) bool {
	return dynamic[p]
}

// LevelFromRank maps a 1..36 proficiency rank onto the 10-level ladder.
func LevelFromRank(rank int) Level {
	if rank < 1 {
		rank = 1
	}
	if rank > MaxRank {
		rank = MaxRank
	}
	return clampLevel(Level(math.Ceil(float64(rank) / 3.6)))
}

// rankTitles are the display names of the 36 proficiency ranks.
var rankTitles = []string{
	"Novice I", "Novice II", "Novice III", "Novice IV",
	"Beginner I", "Beginner II", "Beginner III", "Beginner IV",
	"Competent I", "Competent II", "Competent III", "Competent IV",
	"Intermediate I", "Intermediate II", "Intermediate III", "Intermediate IV",
	"Proficient I", "Proficient II", "Proficient III", "Proficient IV",
	"Advanced I", "Advanced II", "Advanced III", "Advanced IV",
	"Expert I", "Expert II", "Expert III", "Expert IV",
	"Master I", "Master II", "Master III", "Master IV",
	"Legend I", "Legend II", "Legend III", "Legend IV",
}

// RankTitle returns the display title for a 1..36 rank.
func RankTitle(rank int) string {
	if rank < 1 {
		rank = 1
	}
	if rank > MaxRank {
		rank = MaxRank
	}
	return rankTitles[rank-1]
}
