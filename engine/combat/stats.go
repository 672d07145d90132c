package combat

import "github.com/nathoo/rosebot/types"

// tally accumulates session totals; it is not capped like History.
type tally struct {
	s types.CombatStats
}

func (t *tally) add(e types.CombatEntry) {
	t.s.Total++
	switch e.Status {
	case types.StatusVictory:
		t.s.Victories++
	case types.StatusDeath:
		t.s.Deaths++
	case types.StatusFled:
		t.s.Fled++
	case types.StatusTimeout:
		t.s.Timeouts++
	}
	t.s.DamageDealt += e.DamageDealt
	t.s.DamageTaken += e.DamageTaken
	t.s.Experience += e.Experience
	if e.Duration > 0 {
		t.s.TotalCombatTime += e.Duration
	}
}

// snapshot returns the totals with rates filled in.
func (t *tally) snapshot() types.CombatStats {
	s := t.s
	if s.Total > 0 {
		n := float64(s.Total)
		s.WinRate = float64(s.Victories) / n
		s.DeathRate = float64(s.Deaths) / n
		s.FleeRate = float64(s.Fled) / n
	}
	if secs := s.TotalCombatTime.Seconds(); secs > 0 {
		s.AverageDPS = float64(s.DamageDealt) / secs
	}
	return s
}
