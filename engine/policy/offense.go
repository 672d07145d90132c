package policy

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/rosebot/engine/resolve"
	"github.com/nathoo/rosebot/types"
)

// slot is one attackable monster instance in the room.
type slot struct {
	name string // canonical
	key  string // name#occurrence, lowercased
}

// offenseLocked attacks one aggressive monster per evaluation. The tracked
// melee target goes first; otherwise the first aggressive monster not yet
// attacked this wave. The wave clears when no aggressive monster remains or
// after AttackRearm.
func (e *Engine) offenseLocked(s snapshot) (action, bool) {
	if len(s.aggr) == 0 {
		e.resetWaveLocked()
		return action{}, false
	}
	if !e.waveStart.IsZero() && s.now.Sub(e.waveStart) >= s.cfg.AttackRearm {
		e.resetWaveLocked()
	}

	if !s.cfg.AutoAttack && e.phase != types.PhaseInEncounter {
		return action{}, false
	}
	if e.phase == types.PhaseWaitingForHealTimers || s.hp < s.cfg.MinCombatHP {
		return action{}, false
	}

	slots := waveSlots(s.aggr)
	pick := -1
	if s.hasTgt {
		for i, sl := range slots {
			if !e.attacked[sl.key] && resolve.Equal(sl.name, s.target) {
				pick = i
				break
			}
		}
	}
	if pick < 0 {
		for i, sl := range slots {
			if !e.attacked[sl.key] {
				pick = i
				break
			}
		}
	}
	if pick < 0 {
		return action{}, false
	}

	sl := slots[pick]
	e.attacked[sl.key] = true
	if e.waveStart.IsZero() {
		e.waveStart = s.now
	}
	return action{cmd: attackCommand(s.cfg.AttackCommand, sl.name), reason: "attack " + sl.key}, true
}

func (e *Engine) resetWaveLocked() {
	if len(e.attacked) > 0 {
		e.attacked = map[string]bool{}
	}
	e.waveStart = time.Time{}
}

// waveSlots expands aggressive monsters into instances, numbering repeats
// of the same name in room order.
func waveSlots(aggr []types.Monster) []slot {
	seen := map[string]int{}
	var out []slot
	for _, m := range aggr {
		name := resolve.Canonical(m.Name)
		n := m.Count
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			lower := strings.ToLower(name)
			seen[lower]++
			out = append(out, slot{name: name, key: fmt.Sprintf("%s#%d", lower, seen[lower])})
		}
	}
	return out
}

// attackCommand fills the target key into the configured attack command.
// The key is the first letter of the name, or its first word when the name
// does not start with a letter.
func attackCommand(format, name string) string {
	key := targetKey(name)
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, key)
	}
	return strings.TrimSpace(format + " " + key)
}

func targetKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsLetter(r) {
		return string(r)
	}
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return name
}
