package policy

import (
	"strings"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/types"
)

// shieldLocked recasts the shield when it is down. Casting waits for
// ShieldRefresh since the last cast and, during a fight, for the longer
// ShieldEmergency interval as well.
func (e *Engine) shieldLocked(s snapshot) (action, bool) {
	if !s.cfg.AutoShield || e.shieldUp || !s.clear {
		return action{}, false
	}
	if !elapsed(e.lastShield, s.now, s.cfg.ShieldRefresh) {
		return action{}, false
	}
	fighting := e.phase == types.PhaseInEncounter || len(s.aggr) > 0
	if fighting && !elapsed(e.lastShield, s.now, s.cfg.ShieldEmergency) {
		return action{}, false
	}

	spell, ok := pickShield(s.cfg, s.vitals.MP)
	if !ok {
		return action{}, false
	}
	e.lastShield = s.now
	return action{cmd: spell.Command, reason: "shield " + spell.Name}, true
}

// pickShield returns the top shield when mana allows, else the first
// affordable spell in list order.
func pickShield(cfg config.AutomationConfig, mana int) (config.Spell, bool) {
	if top, ok := cfg.Shield(cfg.TopShield); ok && top.Mana <= mana {
		return top, true
	}
	for _, sp := range cfg.Shields {
		if strings.EqualFold(sp.Name, cfg.TopShield) {
			continue
		}
		if sp.Mana <= mana {
			return sp, true
		}
	}
	return config.Spell{}, false
}
