package classify

import "github.com/nathoo/rosebot/types"

// Event is one structured fact extracted from a game line. The set of
// implementations is closed; switch on the concrete type.
type Event interface {
	event()
}

// PlayerDamage is damage the player dealt to a monster.
type PlayerDamage struct {
	Target string
	Amount int
}

// MonsterDamage is damage a monster dealt to the player.
type MonsterDamage struct {
	Monster string
	Amount  int
}

// AreaDamage is damage the player took from an area effect.
type AreaDamage struct {
	Source string
	Amount int
}

// Death lists the room monsters named by a death line.
type Death struct {
	Monsters []string
	Raw      string
}

// ExperienceGain is the experience gained since the previous status line.
type ExperienceGain struct {
	Amount  int
	Clamped bool // gain exceeded the sanity ceiling
}

// MeleeTargeting reports the monster the player focused on.
type MeleeTargeting struct {
	Monster string
}

// ShieldChange reports the player's protective shield going up or down.
type ShieldChange struct {
	Active bool
}

// NeedChange reports a hunger or thirst transition.
type NeedChange struct {
	Kind  types.NeedKind
	State types.NeedState
}

// LootSighted reports coins that can be picked up.
type LootSighted struct {
	Raw string
}

// PlayerDeath reports that the player died.
type PlayerDeath struct {
	Raw string
}

func (PlayerDamage) event()   {}
func (MonsterDamage) event()  {}
func (AreaDamage) event()     {}
func (Death) event()          {}
func (ExperienceGain) event() {}
func (MeleeTargeting) event() {}
func (ShieldChange) event()   {}
func (NeedChange) event()     {}
func (LootSighted) event()    {}
func (PlayerDeath) event()    {}
