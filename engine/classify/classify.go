// Package classify turns raw game lines into typed events.
// Each grammar is a named predicate+extractor; a line that matches nothing
// produces no events and is not an error.
package classify

import (
	"sync"

	"github.com/nathoo/rosebot/types"
)

// grammar is one named line pattern.
type grammar struct {
	name  string
	match func(line string, room types.RoomSnapshot) (Event, bool)
}

// Detectors that may fire on any line, independently of each other.
var detectors = []grammar{
	{"shield", matchShield},
	{"need", matchNeed},
	{"loot", matchLoot},
	{"player-death", matchPlayerDeath},
}

// Exclusive grammars in priority order; at most one fires per line.
var exclusive = []grammar{
	{"death", matchDeath},
	{"area-damage", matchAreaDamage},
	{"player-damage", matchPlayerDamage},
	{"monster-damage", matchMonsterDamage},
	{"melee-targeting", matchTargeting},
}

// Classifier applies every grammar to a line. It owns the experience
// baseline, the only state carried between lines. Safe for concurrent use.
type Classifier struct {
	mu  sync.Mutex
	exp *ExperienceMeter
}

// New creates a classifier whose experience gains are clamped at ceiling.
func New(ceiling int) *Classifier {
	return &Classifier{exp: NewExperienceMeter(ceiling)}
}

// Classify returns the events found in line, resolving monster references
// against room. It never panics on malformed input.
func (c *Classifier) Classify(line types.TextLine, room types.RoomSnapshot) []Event {
	text := Clean(line.Text)
	if text == "" {
		return nil
	}

	var events []Event

	// 1. Experience status may ride along on any line.
	if cur, _, left, ok := parseExperience(text); ok {
		c.mu.Lock()
		gain, clamped, ok := c.exp.Observe(cur, left)
		c.mu.Unlock()
		if ok {
			events = append(events, ExperienceGain{Amount: gain, Clamped: clamped})
		}
	}

	// 2. Independent fixed-phrase detectors.
	for _, g := range detectors {
		if ev, ok := g.match(text, room); ok {
			events = append(events, ev)
		}
	}

	// 3. First exclusive grammar wins.
	for _, g := range exclusive {
		if ev, ok := g.match(text, room); ok {
			events = append(events, ev)
			break
		}
	}

	return events
}

// Reset forgets the experience baseline, e.g. after a reconnect.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exp.Reset()
}

// Name returns a short label for an event, used in logs and traces.
func Name(ev Event) string {
	switch ev.(type) {
	case PlayerDamage:
		return "player-damage"
	case MonsterDamage:
		return "monster-damage"
	case AreaDamage:
		return "area-damage"
	case Death:
		return "death"
	case ExperienceGain:
		return "experience"
	case MeleeTargeting:
		return "melee-targeting"
	case ShieldChange:
		return "shield"
	case NeedChange:
		return "need"
	case LootSighted:
		return "loot"
	case PlayerDeath:
		return "player-death"
	default:
		return "unknown"
	}
}
