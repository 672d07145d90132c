package classify

// Closed vocabulary of words that end a death line. Exact word match only.
var deathWords = map[string]bool{
	"dies":       true,
	"died":       true,
	"slain":      true,
	"killed":     true,
	"destroyed":  true,
	"banished":   true,
	"vanishes":   true,
	"disappears": true,
	"vortex":     true,
	"perishes":   true,
	"dissipates": true,
	"crumbles":   true,
	"expires":    true,
	"collapses":  true,
	"dead":       true,
}

// Action verbs stripped from a damage line when the target cannot be
// resolved against the room.
var actionVerbs = map[string]bool{
	"hit": true, "hits": true,
	"slash": true, "slashes": true,
	"pierce": true, "pierces": true,
	"bash": true, "bashes": true,
	"strike": true, "strikes": true,
	"smite": true, "smites": true,
	"blast": true, "blasts": true,
	"burn": true, "burns": true,
	"freeze": true, "freezes": true,
	"shock": true, "shocks": true,
	"claw": true, "claws": true,
	"bite": true, "bites": true,
	"punch": true, "punches": true,
	"kick": true, "kicks": true,
	"stab": true, "stabs": true,
	"crush": true, "crushes": true,
	"maul": true, "mauls": true,
	"sting": true, "stings": true,
	"whip": true, "whips": true,
	"cleave": true, "cleaves": true,
	"attack": true, "attacks": true,
	"wound": true, "wounds": true,
}

// Words that begin the damage clause at the tail of a damage line.
var damageClause = map[string]bool{
	"and":     true,
	"for":     true,
	"doing":   true,
	"causing": true,
	"dealing": true,
	"with":    true,
}

// Words in a line that mark damage to the player.
var playerMarkers = map[string]bool{
	"you":   true,
	"your":  true,
	"you!":  true,
	"yours": true,
}

// Words that mark an area effect rather than a single attacker.
var areaMarkers = map[string]bool{
	"explodes":  true,
	"engulfs":   true,
	"erupts":    true,
	"surrounds": true,
	"everyone":  true,
	"area":      true,
}

// damageMarker is the word a damage line must end with.
const damageMarker = "damage"
