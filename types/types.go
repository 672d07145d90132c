// Package types defines the shared data structures for rosebot.
// This package holds type definitions and their string forms only.
package types

import "time"

// TextLine is one decoded line from the game session and its arrival time.
type TextLine struct {
	Text string
	At   time.Time
}

// Disposition is a monster's current stance as reported by room state.
type Disposition int

const (
	Neutral Disposition = iota
	Aggressive
)

// Monster describes one monster entry in the current room.
type Monster struct {
	Name            string
	Disposition     Disposition
	TargetingPlayer bool
	Count           int // stack count; 0 or 1 means a single monster
}

// RoomSnapshot is the monster list of the room the player is standing in.
// Replaced wholesale on room change; never mutated by the core.
type RoomSnapshot struct {
	ID       string
	Monsters []Monster
}

// Vitals holds the player's current stats and the two action cooldowns.
type Vitals struct {
	HP    int
	MaxHP int
	MP    int
	MaxMP int
	MV    int
	MaxMV int
	AT    int // attack-ready-in
	AC    int // action-ready-in
}

// ActiveCombat is one encounter against a single monster identity.
type ActiveCombat struct {
	Monster            string
	DamageDealt        int
	DamageTaken        int
	Started            time.Time
	LastDamage         time.Time
	AwaitingExperience bool
	DiedAt             time.Time // zero until the monster dies
	Targeted           bool
	TargetedAt         time.Time
}

// CombatStatus is how a finished encounter ended.
type CombatStatus string

const (
	StatusVictory CombatStatus = "victory"
	StatusDeath   CombatStatus = "death"
	StatusFled    CombatStatus = "fled"
	StatusTimeout CombatStatus = "timeout"
)

// CombatEntry is the immutable record of a finished encounter.
type CombatEntry struct {
	ID          string
	Monster     string
	DamageDealt int
	DamageTaken int
	Started     time.Time
	Ended       time.Time
	Duration    time.Duration
	Status      CombatStatus
	Experience  int
}

// CombatStats aggregates the completed-combat history.
type CombatStats struct {
	Total           int
	Victories       int
	Deaths          int
	Fled            int
	Timeouts        int
	DamageDealt     int
	DamageTaken     int
	Experience      int
	WinRate         float64
	DeathRate       float64
	FleeRate        float64
	AverageDPS      float64
	TotalCombatTime time.Duration
}

// Phase is the automation engine's encounter state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaitingForEncounterTimers
	PhaseInEncounter
	PhaseWaitingForHealTimers
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaitingForEncounterTimers:
		return "waiting-for-encounter-timers"
	case PhaseInEncounter:
		return "in-encounter"
	case PhaseWaitingForHealTimers:
		return "waiting-for-heal-timers"
	}
	return "unknown"
}

// NeedKind identifies a hunger/thirst style need.
type NeedKind string

const (
	NeedHunger NeedKind = "hunger"
	NeedThirst NeedKind = "thirst"
)

// NeedState is the reported level of a need.
type NeedState string

const (
	NeedSatisfied NeedState = "satisfied"
	NeedWanting   NeedState = "wanting"  // hungry / thirsty
	NeedCritical  NeedState = "critical" // starving / parched
)
