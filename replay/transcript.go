// Package replay drives the engine from a recorded transcript on a fake
// clock. A transcript is a YAML list of timed steps: received lines, room
// changes, vitals updates and ticks.
package replay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/types"
)

// Transcript is one recorded session.
type Transcript struct {
	Name  string  `yaml:"name"`
	Start string  `yaml:"start"` // RFC 3339; defaults to the Unix epoch
	Auto  Toggles `yaml:"auto"`
	Steps []Step  `yaml:"steps"`

	Expect *Expect `yaml:"expect"`
}

// Toggles overrides automation switches. Unset fields keep the profile's
// value.
type Toggles struct {
	Shield *bool `yaml:"shield"`
	Gong   *bool `yaml:"gong"`
	Attack *bool `yaml:"attack"`
	Heal   *bool `yaml:"heal"`
	Loot   *bool `yaml:"loot"`
}

// Step is one timed input. Exactly one of Line, Room, Vitals or Tick is set.
type Step struct {
	At     time.Duration `yaml:"at"`
	Line   string        `yaml:"line"`
	Room   *Room         `yaml:"room"`
	Vitals *Vitals       `yaml:"vitals"`
	Tick   bool          `yaml:"tick"`
}

// Room is a room snapshot in transcript form.
type Room struct {
	ID       string    `yaml:"id"`
	Monsters []Monster `yaml:"monsters"`
}

// Monster is a room monster in transcript form.
type Monster struct {
	Name       string `yaml:"name"`
	Aggressive bool   `yaml:"aggressive"`
	Targeting  bool   `yaml:"targeting"`
	Count      int    `yaml:"count"`
}

// Vitals is a vitals update in transcript form.
type Vitals struct {
	HP    int `yaml:"hp"`
	MaxHP int `yaml:"max_hp"`
	MP    int `yaml:"mp"`
	MaxMP int `yaml:"max_mp"`
	MV    int `yaml:"mv"`
	MaxMV int `yaml:"max_mv"`
	AT    int `yaml:"at"`
	AC    int `yaml:"ac"`
}

// Expect is the outcome a transcript asserts.
type Expect struct {
	Commands   []string `yaml:"commands"`
	Victories  *int     `yaml:"victories"`
	Experience *int     `yaml:"experience"`
	Phase      string   `yaml:"phase"`
}

// Load reads a transcript file.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	tr, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Parse decodes and checks a transcript.
func Parse(data []byte) (*Transcript, error) {
	var tr Transcript
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	if err := tr.check(); err != nil {
		return nil, err
	}
	return &tr, nil
}

func (t *Transcript) check() error {
	if t.Start != "" {
		if _, err := time.Parse(time.RFC3339, t.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	var last time.Duration
	for i, s := range t.Steps {
		n := 0
		if s.Line != "" {
			n++
		}
		if s.Room != nil {
			n++
		}
		if s.Vitals != nil {
			n++
		}
		if s.Tick {
			n++
		}
		if n != 1 {
			return fmt.Errorf("step %d: exactly one of line, room, vitals or tick is required", i+1)
		}
		if s.At < last {
			return fmt.Errorf("step %d: at %v is before the previous step (%v)", i+1, s.At, last)
		}
		last = s.At
	}
	return nil
}

func (t *Transcript) origin() time.Time {
	if t.Start == "" {
		return time.Unix(0, 0).UTC()
	}
	ts, _ := time.Parse(time.RFC3339, t.Start)
	return ts
}

// apply sets the transcript's toggles on cfg.
func (tg Toggles) apply(cfg *config.AutomationConfig) {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.AutoShield, tg.Shield)
	set(&cfg.AutoGong, tg.Gong)
	set(&cfg.AutoAttack, tg.Attack)
	set(&cfg.AutoHeal, tg.Heal)
	set(&cfg.AutoLoot, tg.Loot)
}

func (r Room) snapshot() types.RoomSnapshot {
	rs := types.RoomSnapshot{ID: r.ID}
	for _, m := range r.Monsters {
		d := types.Neutral
		if m.Aggressive {
			d = types.Aggressive
		}
		rs.Monsters = append(rs.Monsters, types.Monster{
			Name:            m.Name,
			Disposition:     d,
			TargetingPlayer: m.Targeting,
			Count:           m.Count,
		})
	}
	return rs
}

func (v Vitals) vitals() types.Vitals {
	return types.Vitals(v)
}
