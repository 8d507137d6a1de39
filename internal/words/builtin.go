// internal/words/builtin.go
package words

// Builtin returns the default master table. Definitions are short glosses
// shown in the post-round summary.
func Builtin() map[string]string {
	return map[string]string{
		// 3-4 letters
		"ant":  "a small insect that lives in organized colonies",
		"bolt": "a metal fastener with a threaded shank",
		"cask": "a barrel-shaped container for liquids",
		"dune": "a mound of sand shaped by the wind",
		"echo": "a sound reflected back to its source",
		"fern": "a flowerless plant with feathery fronds",
		"gale": "a very strong wind",
		"hymn": "a song of praise, typically religious",
		"iris": "the colored part of the eye",
		"jolt": "an abrupt rough shake or shock",
		"kiln": "an oven for firing pottery or bricks",
		"loom": "a device for weaving cloth",
		"mast": "a tall upright post carrying a ship's sails",
		"oath": "a solemn promise",
		"pier": "a platform extending from shore over water",
		"quay": "a landing place for loading ships",
		"rune": "a letter of an ancient Germanic alphabet",
		"silo": "a tower for storing grain",
		"tusk": "a long pointed tooth protruding from the mouth",
		"veil": "a piece of fine material concealing the face",
		"wisp": "a small thin strand or streak",
		"yolk": "the yellow center of an egg",
		"zeal": "great energy in pursuit of a cause",
		// 5-7 letters
		"abacus":  "a frame with beads used for counting",
		"bramble": "a prickly scrambling shrub",
		"cascade": "a small waterfall falling in stages",
		"dappled": "marked with spots of a different shade",
		"eclipse": "the obscuring of one celestial body by another",
		"fathom":  "a unit of six feet used to measure water depth",
		"glacier": "a slowly moving mass of ice",
		"harvest": "the gathering of ripened crops",
		"isthmus": "a narrow strip of land joining two larger areas",
		"jubilee": "a special anniversary celebration",
		"kindred": "one's family and relations",
		"lantern": "a lamp in a transparent case",
		"meadow":  "a field of grass and wildflowers",
		"nectar":  "a sugary fluid produced by flowers",
		"orchard": "a piece of land planted with fruit trees",
		"plateau": "an area of fairly level high ground",
		"quiver":  "a case for holding arrows",
		"rivulet": "a very small stream",
		"saunter": "to walk in a slow relaxed manner",
		"thicket": "a dense group of bushes or trees",
		"uncanny": "strange in an unsettling way",
		"vantage": "a position giving a good view",
		"whittle": "to carve wood by cutting small slices",
		"zephyr":  "a soft gentle breeze",
		// 8+ letters
		"aqueduct":    "a channel built to convey water across land",
		"brimstone":   "an archaic name for sulfur",
		"chrysalis":   "the pupa of a butterfly",
		"driftwood":   "wood floating on water or washed ashore",
		"ephemeral":   "lasting for a very short time",
		"fortnight":   "a period of two weeks",
		"gossamer":    "a fine filmy substance of spider webs",
		"hibernate":   "to spend the winter in a dormant state",
		"illuminate":  "to light up",
		"juggernaut":  "a huge overwhelming force",
		"kaleidoscope": "a tube of mirrors producing changing patterns",
		"labyrinth":   "a complicated network of paths; a maze",
		"mellifluous": "sweet or musical, pleasant to hear",
		"nocturnal":   "active at night",
		"obsidian":    "dark glass-like volcanic rock",
		"penumbra":    "the partially shaded outer region of a shadow",
		"quicksilver": "an old name for the element mercury",
		"resplendent": "attractive and impressive through rich color",
		"serendipity": "finding good things without looking for them",
		"tributary":   "a stream flowing into a larger river",
		"undulate":    "to move with a smooth wavelike motion",
		"vermilion":   "a brilliant red pigment",
		"wanderlust":  "a strong desire to travel",
		"xylophone":   "a percussion instrument of wooden bars",
		"yesteryear":  "last year or the recent past",
		"zeitgeist":   "the defining spirit of a period",
	}
}
