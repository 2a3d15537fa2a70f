// Package catalog holds the static preposition reference data: the full
// preposition set, category groupings, per-level allow-lists, the dynamic
// (motion) subset, and the distractor exclusion table.
package catalog

// Preposition is one of the finite set of English prepositions the game
// drills. The value is the literal lowercase word as it appears in sentences.
type Preposition string

const (
	In       Preposition = "in"
	Into     Preposition = "into"
	To       Preposition = "to"
	Towards  Preposition = "towards"
	Through  Preposition = "through"
	OutOf    Preposition = "out of"
	From     Preposition = "from"
	AwayFrom Preposition = "away from"
	On       Preposition = "on"
	At       Preposition = "at"
	Against  Preposition = "against"
	Near     Preposition = "near"
	Between  Preposition = "between"
	Among    Preposition = "among"
	Under    Preposition = "under"
	Below    Preposition = "below"
	By       Preposition = "by"
	Around   Preposition = "around"
	Past     Preposition = "past"
	Across   Preposition = "across"
	Along    Preposition = "along"
	Up       Preposition = "up"
	Above    Preposition = "above"
	Over     Preposition = "over"
	After    Preposition = "after"
	Within   Preposition = "within"
	Inside   Preposition = "inside"
	Off      Preposition = "off"
	Behind   Preposition = "behind"
	Before   Preposition = "before"
	Beneath  Preposition = "beneath"
	Beside   Preposition = "beside"
	With     Preposition = "with"
	Beyond   Preposition = "beyond"
	Upon     Preposition = "upon"
	Per      Preposition = "per"
	For      Preposition = "for"
)

// Category groups prepositions by the semantic role they most commonly play.
type Category string

const (
	Location   Category = "Location"
	Direction  Category = "Direction"
	Time       Category = "Time"
	Manner     Category = "Manner"
	Cause      Category = "Cause"
	Possession Category = "Possession"
	Agent      Category = "Agent"
	Frequency  Category = "Frequency"
	Instrument Category = "Instrument"
	Purpose    Category = "Purpose"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{
		Location, Direction, Time, Manner, Cause,
		Possession, Agent, Frequency, Instrument, Purpose,
	}
}

// Item is the full reference record for one preposition.
type Item struct {
	Preposition     Preposition
	Category        Category
	Description     string
	ExampleSentence string
}

// all is the master list. Example sentences use "___" where the preposition
// belongs; the repair path widens that to the game's blank marker.
var all = []Item{
	{In, Location, "Used for an enclosed space, a large area, or a period of time.", "The cat is sleeping ___ the box."},
	{Into, Direction, "Used for movement towards the inside of something.", "He walked ___ the room."},
	{To, Direction, "Used for indicating direction or a destination.", "She went ___ the store."},
	{Towards, Direction, "Used for indicating movement in the direction of something.", "The bird flew ___ the window."},
	{Through, Direction, "Used for movement from one side of something to the other.", "The train passed ___ the tunnel."},
	{OutOf, Direction, "Used for movement from the inside to the outside.", "He stepped ___ the car."},
	{From, Direction, "Used to indicate the starting point of a movement or origin.", "She came ___ Paris."},
	{AwayFrom, Direction, "Used to indicate movement departing from something.", "The dog ran ___ the noisy crowd."},
	{On, Location, "Used for a surface, a day or date, or a public transport vehicle.", "The book is ___ the table."},
	{At, Location, "Used for a specific point, a small area, or a specific time.", "She is ___ home."},
	{Against, Location, "Used for touching something, often for support or resistance.", "He leaned ___ the wall."},
	{Near, Location, "Used for a short distance from something.", "The park is ___ my house."},
	{Between, Location, "Used for something in the space separating two distinct things.", "The ball is ___ the two chairs."},
	{Among, Location, "Used for something in the middle of three or more distinct things.", "The rabbit hid ___ the bushes."},
	{Under, Location, "Used for something directly below something else.", "The cat is ___ the bed."},
	{Below, Location, "Used for something at a lower level than something else.", "The temperature is ___ freezing."},
	{By, Agent, "Used to show the person or thing that does an action (in a passive sentence).", "The book was written ___ a famous author."},
	{Around, Direction, "Used for movement encircling something.", "The children ran ___ the tree."},
	{Past, Direction, "Used for movement beyond something.", "He walked ___ the library."},
	{Across, Direction, "Used for movement from one side of something to the other.", "They swam ___ the river."},
	{Along, Direction, "Used for movement in a line next to something long.", "We walked ___ the beach."},
	{Up, Direction, "Used for movement to a higher position.", "He climbed ___ the ladder."},
	{Above, Location, "Used for something at a higher level than something else, often not touching.", "The clouds are ___ the mountains."},
	{Over, Direction, "Used for movement from one side to another, often implying an arch or covering.", "The bird flew ___ the fence."},
	{After, Time, "Used for following in time or order.", "Let's meet ___ dinner."},
	{Within, Location, "Used for inside the limits of something.", "The answer is ___ the text."},
	{Inside, Location, "Used for the inner part or area of something.", "She keeps her keys ___ her purse."},
	{Off, Direction, "Used for movement away from a surface or position.", "The ball rolled ___ the table."},
	{Behind, Location, "Used for at the back of something.", "The dog is hiding ___ the couch."},
	{Before, Time, "Used for earlier than, or in front of.", "Please finish your work ___ you play."},
	{Beneath, Location, "Used for in or to a lower position than, under.", "The treasure was buried ___ the old tree."},
	{Beside, Location, "Used for next to or at the side of.", "He sat ___ her during the movie."},
	{With, Instrument, "Used for accompanied by, or using a tool.", "She painted the picture ___ a brush."},
	{Beyond, Location, "Used for on the far side of, or past.", "The mountains stretched ___ the horizon."},
	{Upon, Location, "Used for on (often in a formal context).", "Once ___ a time, there was a princess."},
	{Per, Frequency, "Used to express rates, prices, or measurements for each unit.", "The car was traveling 60 miles ___ hour."},
	{For, Purpose, "Used to indicate the use of something or the reason for something.", "This gift is ___ you."},
}

var byPreposition = func() map[Preposition]Item {
	m := make(map[Preposition]Item, len(all))
	for _, it := range all {
		m[it.Preposition] = it
	}
	return m
}()

// All returns the full preposition reference list. Callers must not mutate
// the returned slice.
func All() []Item {
	return all
}

// Lookup returns the Item for p.
func Lookup(p Preposition) (Item, bool) {
	it, ok := byPreposition[p]
	return it, ok
}

// ByCategory returns all items whose category is in cats, de-duplicated and
// in master-list order.
func ByCategory(cats ...Category) []Item {
	want := make(map[Category]bool, len(cats))
	for _, c := range cats {
		want[c] = true
	}
	var out []Item
	for _, it := range all {
		if want[it.Category] {
			out = append(out, it)
		}
	}
	return out
}

// details are the one-line learner-facing definitions shown on option hover
// and used by the drill loop when reviewing an answer.
var details = map[Preposition]string{
	In:       "Used to indicate inclusion within space, a place, or limits.",
	Into:     "Movement or action with the result that something becomes enclosed.",
	To:       "Expresses motion in the direction of a particular location.",
	Towards:  "Movement in the direction of someone or something.",
	Through:  "Moving in one side and out of the other side.",
	OutOf:    "From the inside to the outside of something.",
	From:     "Indicates the starting point of motion or origin.",
	AwayFrom: "Moving to a greater distance from something.",
	On:       "Physically in contact with and supported by a surface.",
	At:       "Expresses a specific location, arrival point, or time.",
	Against:  "In contact or collision with; in opposition to.",
	Near:     "At or to a short distance away; not far.",
	Between:  "In the space separating two distinct objects or points.",
	Among:    "Surrounded by or in the middle of a group.",
	Under:    "Extending or directly below something.",
	Below:    "At a lower level or layer than something else.",
	By:       "Identifying the agent performing an action; close to.",
	Around:   "Located or moving on every side of something.",
	Past:     "To or on the further side of something.",
	Across:   "From one side to the other of a clear boundary.",
	Along:    "Moving in a constant direction on a long surface.",
	Up:       "Towards a higher place or position.",
	Above:    "In extended space over and not touching.",
	Over:     "Extending directly upwards from; covering.",
	After:    "In the time following an event.",
	Within:   "Inside the limits or boundaries of.",
	Inside:   "Situated within the inner part of.",
	Off:      "Moving away and often down from a place.",
	Behind:   "At the back of something, often hidden by it.",
	Before:   "During the period of time preceding an event.",
	Beneath:  "Extending or directly underneath (more formal).",
	Beside:   "At the side of; next to.",
	With:     "Using an instrument or tool; or accompanied by.",
	Beyond:   "At or to the further side of; outside the limits.",
	Upon:     "A more formal or emphatic term for 'on'.",
	Per:      "For each; for every (used to express rates).",
	For:      "Used to indicate the purpose or recipient of something.",
}

// Detail returns the short learner-facing definition of p, falling back to
// the catalog description when no dedicated detail exists.
func Detail(p Preposition) string {
	if d, ok := details[p]; ok {
		return d
	}
	if it, ok := byPreposition[p]; ok {
		return it.Description
	}
	return ""
}
