package policy

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/types"
)

// criticalLocked runs the critical action when HP is at or below the
// critical threshold. It fires on entering the breach and then at most once
// per CriticalRepeat while the breach lasts. breached reports whether the
// rest of the evaluation must be skipped.
func (e *Engine) criticalLocked(s snapshot) (acts []action, breached bool) {
	if s.vitals.MaxHP <= 0 || s.hp > s.cfg.CriticalHP {
		if e.inBreach {
			e.log.Info("critical breach cleared", zap.Int("hp_pct", s.hp))
		}
		e.inBreach = false
		return nil, false
	}

	if !e.inBreach || elapsed(e.lastCritical, s.now, s.cfg.CriticalRepeat) {
		e.log.Warn("critical health",
			zap.Int("hp_pct", s.hp),
			zap.Int("threshold", s.cfg.CriticalHP),
			zap.String("action", string(s.cfg.CriticalAction)))
		acts = criticalActions(s.cfg)
		e.lastCritical = s.now
	}
	e.inBreach = true
	e.resetWaveLocked()
	e.ringPending = false
	e.setPhaseLocked(types.PhaseWaitingForHealTimers, "critical health")
	return acts, true
}

// criticalActions expands the configured critical action. Unknown actions
// and empty scripts fall back to the stop command.
func criticalActions(cfg config.AutomationConfig) []action {
	const why = "critical health"
	stop := action{cmd: cfg.StopCommand, reason: why}

	switch cfg.CriticalAction {
	case config.CriticalDisconnect:
		return []action{stop, {disconnect: true, reason: why}}
	case config.CriticalScript:
		if acts := parseScript(cfg); len(acts) > 0 {
			return acts
		}
	}
	return []action{stop}
}

// parseScript splits the critical script on ';'. The directives {stop},
// {disconnect} and {gong} expand to their configured effect; every other
// token, including unknown directives, is sent as written.
func parseScript(cfg config.AutomationConfig) []action {
	const why = "critical script"
	var acts []action
	for _, tok := range strings.Split(cfg.CriticalScript, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		switch strings.ToLower(tok) {
		case "{stop}":
			acts = append(acts, action{cmd: cfg.StopCommand, reason: why})
		case "{disconnect}":
			acts = append(acts, action{disconnect: true, reason: why})
		case "{gong}":
			acts = append(acts, action{cmd: cfg.GongCommand, reason: why})
		default:
			acts = append(acts, action{cmd: tok, reason: why})
		}
	}
	return acts
}

// warningLocked pauses offense when HP reaches the warning threshold during
// a fight. The engine then waits in WaitingForHealTimers until both
// cooldowns clear.
func (e *Engine) warningLocked(s snapshot) (action, bool) {
	if e.phase == types.PhaseWaitingForHealTimers && s.clear {
		e.setPhaseLocked(types.PhaseIdle, "heal timers clear")
	}
	if s.vitals.MaxHP <= 0 || s.hp > s.cfg.WarningHP || e.phase == types.PhaseWaitingForHealTimers {
		return action{}, false
	}

	offensive := e.phase == types.PhaseInEncounter || (s.cfg.AutoAttack && len(s.aggr) > 0)
	if !offensive {
		return action{}, false
	}

	e.resetWaveLocked()
	e.ringPending = false
	e.setPhaseLocked(types.PhaseWaitingForHealTimers, "warning health")

	// Re-entering straight after the timers clear does not repeat the stop.
	if !elapsed(e.lastWarning, s.now, s.cfg.CriticalRepeat) {
		return action{}, false
	}
	e.lastWarning = s.now
	return action{cmd: s.cfg.StopCommand, reason: "warning health"}, true
}
