package policy

import (
	"time"

	"github.com/nathoo/rosebot/config"
)

// lootSightedLocked loots when coins are seen, at most once per LootInterval.
func (e *Engine) lootSightedLocked(cfg config.AutomationConfig, now time.Time) (action, bool) {
	if !cfg.AutoLoot || !elapsed(e.lastLoot, now, cfg.LootInterval) {
		return action{}, false
	}
	e.lastLoot = now
	return action{cmd: cfg.LootCommand, reason: "coins sighted"}, true
}

// settleLootLocked sends the loot scheduled by RoomEntered once it is due.
func (e *Engine) settleLootLocked(s snapshot) (action, bool) {
	if e.lootDue.IsZero() || s.now.Before(e.lootDue) {
		return action{}, false
	}
	e.lootDue = time.Time{}
	if !s.cfg.AutoLoot {
		return action{}, false
	}
	e.lastLoot = s.now
	return action{cmd: s.cfg.LootCommand, reason: "room settled"}, true
}
