package questiongen

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/gitenglishhub/prepal/internal/catalog"
)

// SelectPreposition picks the target preposition for the next question.
//
// When the learner pinned a category, only that category is considered.
// Otherwise early levels stay on the concrete spatial basics and the pool
// widens as the learner advances. Video rounds pull from Direction and
// prefer prepositions that imply motion, since a static arrangement makes
// a dull clip.
func SelectPreposition(level catalog.Level, category *catalog.Category, videoRound bool, rng *rand.Rand, log *zap.Logger) catalog.Item {
	if log == nil {
		log = zap.NewNop()
	}

	var cats []catalog.Category
	switch {
	case category != nil:
		cats = []catalog.Category{*category}
	case videoRound:
		cats = []catalog.Category{catalog.Direction}
	case level <= catalog.Level3:
		cats = []catalog.Category{catalog.Location, catalog.Direction}
	case level <= catalog.Level5:
		cats = []catalog.Category{catalog.Location, catalog.Direction, catalog.Time}
	default:
		cats = catalog.Categories()
	}

	allowed := catalog.AllowedSet(level)
	var available []catalog.Item
	for _, item := range catalog.ByCategory(cats...) {
		if allowed[item.Preposition] {
			available = append(available, item)
		}
	}

	if videoRound {
		var dynamic []catalog.Item
		for _, item := range available {
			if catalog.IsDynamic(item.Preposition) {
				dynamic = append(dynamic, item)
			}
		}
		if len(dynamic) > 0 {
			return dynamic[rng.IntN(len(dynamic))]
		}
	}

	if len(available) == 0 {
		// Nothing matched the filters; fall back to the universal basics.
		log.Warn("no prepositions matched filters, falling back to basics",
			zap.Int("level", int(level)), zap.Bool("video_round", videoRound))
		var basics []catalog.Item
		for _, p := range []catalog.Preposition{catalog.In, catalog.On, catalog.At} {
			if item, ok := catalog.Lookup(p); ok {
				basics = append(basics, item)
			}
		}
		return basics[rng.IntN(len(basics))]
	}

	return available[rng.IntN(len(available))]
}
