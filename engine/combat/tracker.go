// Package combat tracks the lifecycle of encounters reconstructed from
// classified game lines.
//
// Each monster identity moves through Active → AwaitingExperience →
// Completed, with a forced Completed(Timeout) path when an encounter goes
// quiet. Timeouts are applied by Reap, which the caller runs on a tick.
package combat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/rosebot/engine/classify"
	"github.com/nathoo/rosebot/engine/events"
	"github.com/nathoo/rosebot/engine/resolve"
	"github.com/nathoo/rosebot/types"
)

// Options tunes tracker lifetimes.
type Options struct {
	InactivityTimeout time.Duration // Active with no damage this long → Timeout
	AwaitingLifetime  time.Duration // dead monster waits this long for experience
	HistorySize       int
}

// DefaultOptions returns the standard lifetimes.
func DefaultOptions() Options {
	return Options{
		InactivityTimeout: 2 * time.Minute,
		AwaitingLifetime:  30 * time.Second,
		HistorySize:       100,
	}
}

// Tracker owns the active and awaiting-experience encounters. All methods
// are safe for concurrent use; notifications are dispatched after the lock
// is released.
type Tracker struct {
	mu       sync.Mutex
	opts     Options
	active   map[string]*types.ActiveCombat // keyed by lowercased identity
	awaiting []*types.ActiveCombat
	target   string
	targetAt time.Time
	history  *History
	totals   tally

	bus *events.Bus
	log *zap.Logger
}

// New creates a tracker. Zero-valued option fields take their defaults.
// bus and log may be nil.
func New(opts Options, bus *events.Bus, log *zap.Logger) *Tracker {
	def := DefaultOptions()
	if opts.InactivityTimeout <= 0 {
		opts.InactivityTimeout = def.InactivityTimeout
	}
	if opts.AwaitingLifetime <= 0 {
		opts.AwaitingLifetime = def.AwaitingLifetime
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = def.HistorySize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		opts:    opts,
		active:  map[string]*types.ActiveCombat{},
		history: NewHistory(opts.HistorySize),
		bus:     bus,
		log:     log.Named("combat"),
	}
}

// Apply folds one classified event into the tracker.
func (t *Tracker) Apply(ev classify.Event, now time.Time) {
	var notes []events.Notification

	t.mu.Lock()
	switch e := ev.(type) {
	case classify.PlayerDamage:
		notes = t.damageLocked(e.Target, e.Amount, 0, now)
	case classify.MonsterDamage:
		notes = t.damageLocked(e.Monster, 0, e.Amount, now)
	case classify.AreaDamage:
		// Area effects only add to an encounter already under way.
		if c, ok := t.active[key(e.Source)]; ok {
			c.DamageTaken += e.Amount
			c.LastDamage = now
			notes = append(notes, events.Notification{Type: events.CombatUpdated, Combat: *c})
		}
	case classify.Death:
		notes = t.diedLocked(e.Monsters, now)
	case classify.ExperienceGain:
		notes = t.creditLocked(e.Amount, now)
	case classify.MeleeTargeting:
		t.targetLocked(e.Monster, now)
	case classify.PlayerDeath:
		for _, c := range t.sortedActiveLocked() {
			notes = append(notes, t.completeLocked(c, types.StatusDeath, 0, now))
		}
	}
	t.mu.Unlock()

	t.bus.Dispatch(notes...)
}

// RoomChanged completes, as Fled, every active encounter whose monster is
// not present in the new room.
func (t *Tracker) RoomChanged(room types.RoomSnapshot, now time.Time) {
	var notes []events.Notification

	t.mu.Lock()
	for _, c := range t.sortedActiveLocked() {
		if !inRoom(c.Monster, room) {
			notes = append(notes, t.completeLocked(c, types.StatusFled, 0, now))
		}
	}
	if t.target != "" && !inRoom(t.target, room) {
		t.target, t.targetAt = "", time.Time{}
	}
	t.mu.Unlock()

	t.bus.Dispatch(notes...)
}

// Reap forces completion of stale encounters: Active entries idle for
// longer than the inactivity window become Timeout, and awaiting entries
// past their lifetime become zero-experience Victories.
func (t *Tracker) Reap(now time.Time) {
	var notes []events.Notification

	t.mu.Lock()
	for _, c := range t.sortedActiveLocked() {
		if now.Sub(c.LastDamage) > t.opts.InactivityTimeout {
			notes = append(notes, t.completeLocked(c, types.StatusTimeout, 0, c.LastDamage))
		}
	}
	kept := t.awaiting[:0]
	var expired []*types.ActiveCombat
	for _, c := range t.awaiting {
		if now.Sub(c.DiedAt) > t.opts.AwaitingLifetime {
			expired = append(expired, c)
			continue
		}
		kept = append(kept, c)
	}
	t.awaiting = kept
	for _, c := range expired {
		notes = append(notes, t.finishLocked(c, types.StatusVictory, 0, c.DiedAt))
	}
	t.mu.Unlock()

	t.bus.Dispatch(notes...)
}

// Reset drops every in-flight encounter and the melee target. History and
// totals survive; this is what a lost connection calls.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = map[string]*types.ActiveCombat{}
	t.awaiting = nil
	t.target, t.targetAt = "", time.Time{}
}

// Active returns copies of the active encounters, oldest first.
func (t *Tracker) Active() []types.ActiveCombat {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []types.ActiveCombat
	for _, c := range t.sortedActiveLocked() {
		out = append(out, *c)
	}
	return out
}

// Awaiting returns copies of encounters waiting for experience.
func (t *Tracker) Awaiting() []types.ActiveCombat {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.ActiveCombat, 0, len(t.awaiting))
	for _, c := range t.awaiting {
		out = append(out, *c)
	}
	return out
}

// Targeted returns the current melee target, if any.
func (t *Tracker) Targeted() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target, t.target != ""
}

// History returns up to n of the newest completed encounters, oldest first.
func (t *Tracker) History(n int) []types.CombatEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Recent(n)
}

// Stats returns aggregate totals over every completed encounter.
func (t *Tracker) Stats() types.CombatStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals.snapshot()
}

func (t *Tracker) damageLocked(monster string, dealt, taken int, now time.Time) []events.Notification {
	k := key(monster)
	if k == "" {
		return nil
	}

	typ := events.CombatUpdated
	c, ok := t.active[k]
	if !ok {
		typ = events.CombatStarted
		c = &types.ActiveCombat{Monster: monster, Started: now}
		if t.target != "" && resolve.Equal(t.target, monster) {
			c.Targeted, c.TargetedAt = true, t.targetAt
		}
		t.active[k] = c
		t.log.Debug("combat started", zap.String("monster", monster))
	}
	c.DamageDealt += dealt
	c.DamageTaken += taken
	c.LastDamage = now

	return []events.Notification{{Type: typ, Combat: *c}}
}

func (t *Tracker) diedLocked(monsters []string, now time.Time) []events.Notification {
	var notes []events.Notification
	for _, m := range monsters {
		k := key(m)
		c, ok := t.active[k]
		if !ok {
			continue
		}
		delete(t.active, k)
		c.AwaitingExperience = true
		c.DiedAt = now
		t.awaiting = append(t.awaiting, c)
		if t.target != "" && resolve.Equal(t.target, c.Monster) {
			t.target, t.targetAt = "", time.Time{}
		}

		summary := fmt.Sprintf("%s died after %s: dealt %d, taken %d",
			c.Monster, now.Sub(c.Started).Round(time.Second), c.DamageDealt, c.DamageTaken)
		t.log.Info("monster died", zap.String("monster", c.Monster),
			zap.Int("dealt", c.DamageDealt), zap.Int("taken", c.DamageTaken))
		notes = append(notes, events.Notification{Type: events.MonsterDeath, Combat: *c, Summary: summary})
	}
	return notes
}

// creditLocked gives experience to the most recently died encounter that
// is still within its waiting lifetime. With nothing waiting the gain is
// dropped.
func (t *Tracker) creditLocked(amount int, now time.Time) []events.Notification {
	best := -1
	for i, c := range t.awaiting {
		if now.Sub(c.DiedAt) > t.opts.AwaitingLifetime {
			continue
		}
		if best < 0 || !c.DiedAt.Before(t.awaiting[best].DiedAt) {
			best = i
		}
	}
	if best < 0 {
		t.log.Debug("experience with no encounter waiting", zap.Int("amount", amount))
		return nil
	}

	c := t.awaiting[best]
	t.awaiting = append(t.awaiting[:best], t.awaiting[best+1:]...)
	return []events.Notification{t.finishLocked(c, types.StatusVictory, amount, c.DiedAt)}
}

func (t *Tracker) targetLocked(monster string, now time.Time) {
	t.target, t.targetAt = monster, now
	for _, c := range t.active {
		c.Targeted = resolve.Equal(c.Monster, monster)
		if c.Targeted {
			c.TargetedAt = now
		}
	}
}

// completeLocked removes an active encounter and records it.
func (t *Tracker) completeLocked(c *types.ActiveCombat, status types.CombatStatus, xp int, end time.Time) events.Notification {
	delete(t.active, key(c.Monster))
	return t.finishLocked(c, status, xp, end)
}

// finishLocked turns an encounter into a history entry.
func (t *Tracker) finishLocked(c *types.ActiveCombat, status types.CombatStatus, xp int, end time.Time) events.Notification {
	entry := types.CombatEntry{
		ID:          uuid.NewString(),
		Monster:     c.Monster,
		DamageDealt: c.DamageDealt,
		DamageTaken: c.DamageTaken,
		Started:     c.Started,
		Ended:       end,
		Duration:    end.Sub(c.Started),
		Status:      status,
		Experience:  xp,
	}
	if entry.Duration < 0 {
		entry.Duration = 0
	}
	t.history.Push(entry)
	t.totals.add(entry)

	t.log.Info("combat completed",
		zap.String("monster", entry.Monster),
		zap.String("status", string(entry.Status)),
		zap.Int("experience", entry.Experience),
		zap.Duration("duration", entry.Duration))
	return events.Notification{Type: events.CombatCompleted, Entry: entry}
}

// sortedActiveLocked returns the active encounters oldest first, with the
// monster name as tie-break, so reaping order is deterministic.
func (t *Tracker) sortedActiveLocked() []*types.ActiveCombat {
	out := make([]*types.ActiveCombat, 0, len(t.active))
	for _, c := range t.active {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Started.Equal(out[j].Started) {
			return out[i].Started.Before(out[j].Started)
		}
		return out[i].Monster < out[j].Monster
	})
	return out
}

func inRoom(monster string, room types.RoomSnapshot) bool {
	for _, m := range room.Monsters {
		if resolve.Equal(resolve.Canonical(m.Name), monster) {
			return true
		}
	}
	return false
}

func key(monster string) string {
	return strings.ToLower(strings.TrimSpace(monster))
}
