// Package config holds the automation settings the policy engine reads on
// every evaluation, plus the application config for the binary.
package config

import (
	"fmt"
	"strings"
	"time"
)

// CriticalAction is what the engine does when HP drops to the critical
// threshold.
type CriticalAction string

const (
	CriticalStop       CriticalAction = "stop"
	CriticalDisconnect CriticalAction = "disconnect"
	CriticalScript     CriticalAction = "script"
)

// HealTier sizes a heal spell.
type HealTier string

const (
	HealSmall  HealTier = "small"
	HealMedium HealTier = "medium"
	HealLarge  HealTier = "large"
)

// Spell is a castable shield.
type Spell struct {
	Name    string
	Command string
	Mana    int
}

// HealSpell is a castable heal. It is eligible once the HP deficit reaches
// MinDeficit.
type HealSpell struct {
	Name       string
	Tier       HealTier
	Command    string
	Mana       int
	MinDeficit int
}

// AutomationConfig is the full set of policy thresholds, intervals, toggles,
// commands and spells. HP thresholds are percentages of MaxHP.
type AutomationConfig struct {
	MinCombatHP int
	AutoHealHP  int
	WarningHP   int
	CriticalHP  int

	ShieldRefresh         time.Duration
	ShieldEmergency       time.Duration
	RingInterval          time.Duration
	HealInterval          time.Duration
	AttackRearm           time.Duration
	LootInterval          time.Duration
	LootSettle            time.Duration
	CriticalRepeat        time.Duration
	EncounterSpawnTimeout time.Duration

	AutoShield bool
	AutoGong   bool
	AutoAttack bool
	AutoHeal   bool
	AutoLoot   bool

	GongCommand   string
	StopCommand   string
	AttackCommand string // fmt verb %s receives the target key
	LootCommand   string

	TopShield string // name of the preferred entry in Shields
	Shields   []Spell
	Heals     []HealSpell

	CriticalAction CriticalAction
	CriticalScript string // ';'-separated, used when CriticalAction is script
}

// Defaults returns the configuration used when no profile is loaded. Every
// automation toggle starts off.
func Defaults() AutomationConfig {
	return AutomationConfig{
		MinCombatHP: 50,
		AutoHealHP:  70,
		WarningHP:   35,
		CriticalHP:  20,

		ShieldRefresh:         30 * time.Second,
		ShieldEmergency:       2 * time.Minute,
		RingInterval:          1500 * time.Millisecond,
		HealInterval:          3 * time.Second,
		AttackRearm:           10 * time.Second,
		LootInterval:          2 * time.Second,
		LootSettle:            time.Second,
		CriticalRepeat:        10 * time.Second,
		EncounterSpawnTimeout: 10 * time.Second,

		GongCommand:   "r g",
		StopCommand:   "stop",
		AttackCommand: "kill %s",
		LootCommand:   "get all",

		CriticalAction: CriticalStop,
	}
}

// Clone returns a deep copy.
func (c AutomationConfig) Clone() AutomationConfig {
	c.Shields = append([]Spell(nil), c.Shields...)
	c.Heals = append([]HealSpell(nil), c.Heals...)
	return c
}

// Shield returns the shield spell with the given name.
func (c AutomationConfig) Shield(name string) (Spell, bool) {
	for _, s := range c.Shields {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Spell{}, false
}

// Problems lists every inconsistency in c. An empty result means valid.
func (c AutomationConfig) Problems() []string {
	var out []string

	pct := []struct {
		name string
		v    int
	}{
		{"min_combat_hp", c.MinCombatHP},
		{"auto_heal_hp", c.AutoHealHP},
		{"warning_hp", c.WarningHP},
		{"critical_hp", c.CriticalHP},
	}
	for _, p := range pct {
		if p.v < 0 || p.v > 100 {
			out = append(out, fmt.Sprintf("%s must be between 0 and 100, got %d", p.name, p.v))
		}
	}
	if c.CriticalHP > c.WarningHP {
		out = append(out, fmt.Sprintf("critical_hp (%d) must not exceed warning_hp (%d)", c.CriticalHP, c.WarningHP))
	}

	durations := []struct {
		name string
		v    time.Duration
	}{
		{"shield_refresh", c.ShieldRefresh},
		{"shield_emergency", c.ShieldEmergency},
		{"ring_interval", c.RingInterval},
		{"heal_interval", c.HealInterval},
		{"attack_rearm", c.AttackRearm},
		{"loot_interval", c.LootInterval},
		{"loot_settle", c.LootSettle},
		{"critical_repeat", c.CriticalRepeat},
		{"encounter_spawn_timeout", c.EncounterSpawnTimeout},
	}
	for _, d := range durations {
		if d.v < 0 {
			out = append(out, fmt.Sprintf("%s must not be negative", d.name))
		}
	}

	switch c.CriticalAction {
	case CriticalStop, CriticalDisconnect, CriticalScript:
	default:
		out = append(out, fmt.Sprintf("unknown critical action %q", c.CriticalAction))
	}

	if c.TopShield != "" {
		if _, ok := c.Shield(c.TopShield); !ok {
			out = append(out, fmt.Sprintf("top shield %q is not a defined shield", c.TopShield))
		}
	}
	for _, s := range c.Shields {
		if s.Command == "" {
			out = append(out, fmt.Sprintf("shield %q has no command", s.Name))
		}
	}
	for _, h := range c.Heals {
		switch h.Tier {
		case HealSmall, HealMedium, HealLarge:
		default:
			out = append(out, fmt.Sprintf("heal %q has unknown tier %q", h.Name, h.Tier))
		}
		if h.Command == "" {
			out = append(out, fmt.Sprintf("heal %q has no command", h.Name))
		}
	}
	return out
}
