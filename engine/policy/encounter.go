package policy

import (
	"go.uber.org/zap"

	"github.com/nathoo/rosebot/types"
)

// encounterLocked drives the encounter phases. After a fight the engine
// waits for both cooldowns before it may ring again; an aggressive monster
// turning up meanwhile moves straight into the encounter without a ring.
func (e *Engine) encounterLocked(s snapshot) (action, bool) {
	switch e.phase {
	case types.PhaseInEncounter:
		switch {
		case len(s.aggr) > 0 || len(s.active) > 0:
			e.ringPending = false
		case e.ringPending:
			if elapsed(e.lastRing, s.now, s.cfg.EncounterSpawnTimeout) {
				e.ringPending = false
				e.setPhaseLocked(types.PhaseWaitingForEncounterTimers, "nothing spawned")
			}
		default:
			e.resetWaveLocked()
			e.setPhaseLocked(types.PhaseWaitingForEncounterTimers, "encounter over")
		}
		return action{}, false

	case types.PhaseWaitingForEncounterTimers:
		switch {
		case len(s.aggr) > 0:
			e.setPhaseLocked(types.PhaseInEncounter, "aggressive monster present")
		case s.clear:
			e.setPhaseLocked(types.PhaseIdle, "encounter timers clear")
		}
		return action{}, false

	case types.PhaseIdle:
		if !s.cfg.AutoGong {
			return action{}, false
		}
		if len(s.aggr) > 0 {
			e.setPhaseLocked(types.PhaseInEncounter, "aggressive monster present")
			return action{}, false
		}
		if !s.clear || !elapsed(e.lastRing, s.now, s.cfg.RingInterval) {
			return action{}, false
		}
		if s.hp < s.cfg.MinCombatHP {
			e.log.Debug("waiting for hp before ringing",
				zap.Int("hp_pct", s.hp),
				zap.Int("min", s.cfg.MinCombatHP))
			return action{}, false
		}
		e.lastRing = s.now
		e.ringPending = true
		e.setPhaseLocked(types.PhaseInEncounter, "rang")
		return action{cmd: s.cfg.GongCommand, reason: "ring"}, true
	}
	return action{}, false
}
