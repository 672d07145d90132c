package policy

import (
	"sort"

	"github.com/nathoo/rosebot/config"
)

var tierRank = map[config.HealTier]int{
	config.HealSmall:  1,
	config.HealMedium: 2,
	config.HealLarge:  3,
}

// healLocked casts a heal sized to the HP deficit once HP is at or below
// AutoHealHP, both cooldowns are clear and HealInterval has passed.
func (e *Engine) healLocked(s snapshot) (action, bool) {
	if !s.cfg.AutoHeal || s.vitals.MaxHP <= 0 || s.hp > s.cfg.AutoHealHP || !s.clear {
		return action{}, false
	}
	if !elapsed(e.lastHeal, s.now, s.cfg.HealInterval) {
		return action{}, false
	}

	spell, ok := pickHeal(s.cfg.Heals, s.vitals.MaxHP-s.vitals.HP, s.vitals.MP)
	if !ok {
		return action{}, false
	}
	e.lastHeal = s.now
	return action{cmd: spell.Command, reason: "heal " + spell.Name}, true
}

// pickHeal chooses the largest tier the deficit qualifies for, stepping
// down to smaller tiers when mana runs short.
func pickHeal(heals []config.HealSpell, deficit, mana int) (config.HealSpell, bool) {
	if deficit <= 0 {
		return config.HealSpell{}, false
	}
	cand := append([]config.HealSpell(nil), heals...)
	sort.SliceStable(cand, func(i, j int) bool {
		if tierRank[cand[i].Tier] != tierRank[cand[j].Tier] {
			return tierRank[cand[i].Tier] > tierRank[cand[j].Tier]
		}
		return cand[i].MinDeficit > cand[j].MinDeficit
	})
	for _, h := range cand {
		if h.MinDeficit <= deficit && h.Mana <= mana {
			return h, true
		}
	}
	return config.HealSpell{}, false
}
