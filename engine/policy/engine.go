// Package policy decides which commands to send to the game. Evaluate runs
// the gated steps in a fixed order: critical health, warning pause, shield,
// encounter initiation, offense, healing and looting.
//
// The engine owns its phase and cooldown timestamps behind its own mutex.
// Configuration, vitals, room and tracker state are read fresh on every
// evaluation and never cached across calls.
package policy

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine/classify"
	"github.com/nathoo/rosebot/engine/world"
	"github.com/nathoo/rosebot/types"
)

// VitalsSource supplies the player's current vitals.
type VitalsSource interface {
	Vitals() types.Vitals
}

// RoomSource supplies the current room.
type RoomSource interface {
	Room() types.RoomSnapshot
}

// TargetSource supplies combat tracker state.
type TargetSource interface {
	Targeted() (string, bool)
	Active() []types.ActiveCombat
}

// Sender delivers commands to the game. Send must not block.
type Sender interface {
	Send(cmd string)
	Disconnect()
}

// Status is a point-in-time view of the engine for consoles and tests.
type Status struct {
	Phase      types.Phase
	ShieldUp   bool
	InBreach   bool
	Attacked   []string
	LastRing   time.Time
	LastShield time.Time
	LastHeal   time.Time
	LastLoot   time.Time
	LootDue    time.Time
}

// action is one outbound effect, performed after the lock is released.
type action struct {
	cmd        string
	disconnect bool
	reason     string
}

// Engine is the automation policy engine.
type Engine struct {
	mu sync.Mutex

	cfg  *config.Store
	vit  VitalsSource
	room RoomSource
	tgt  TargetSource
	out  Sender
	log  *zap.Logger

	phase    types.Phase
	shieldUp bool

	inBreach     bool
	lastCritical time.Time
	lastWarning  time.Time

	lastShield  time.Time
	lastRing    time.Time
	ringPending bool // rang, nothing has spawned yet

	attacked  map[string]bool // wave keys, name#occurrence
	waveStart time.Time

	lastHeal time.Time
	lastLoot time.Time
	lootDue  time.Time // settle loot after room entry
}

// New creates an engine in the Idle phase. log may be nil.
func New(cfg *config.Store, vit VitalsSource, room RoomSource, tgt TargetSource, out Sender, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		vit:      vit,
		room:     room,
		tgt:      tgt,
		out:      out,
		log:      log.Named("policy"),
		attacked: map[string]bool{},
	}
}

// snapshot is everything one evaluation reads from collaborators.
type snapshot struct {
	cfg    config.AutomationConfig
	vitals types.Vitals
	hp     int
	room   types.RoomSnapshot
	aggr   []types.Monster
	active []types.ActiveCombat
	target string
	hasTgt bool
	clear  bool // AT and AC both zero
	now    time.Time
}

func (e *Engine) read(now time.Time) snapshot {
	s := snapshot{
		cfg:    e.cfg.Snapshot(),
		vitals: e.vit.Vitals(),
		room:   e.room.Room(),
		now:    now,
	}
	s.hp = world.HPPercent(s.vitals)
	s.aggr = world.Aggressive(s.room)
	s.clear = world.Unobstructed(s.vitals)
	if e.tgt != nil {
		s.active = e.tgt.Active()
		s.target, s.hasTgt = e.tgt.Targeted()
	}
	return s
}

// OnEvents reacts to classified events on the line path: shield state,
// coin sightings and the player's death. Coins are ignored while HP is at or
// below the critical threshold.
func (e *Engine) OnEvents(evs []classify.Event, now time.Time) {
	if len(evs) == 0 {
		return
	}
	cfg := e.cfg.Snapshot()
	v := e.vit.Vitals()
	critical := v.MaxHP > 0 && world.HPPercent(v) <= cfg.CriticalHP

	var acts []action
	e.mu.Lock()
	for _, ev := range evs {
		switch ev := ev.(type) {
		case classify.ShieldChange:
			e.shieldUp = ev.Active
		case classify.LootSighted:
			if critical || e.inBreach {
				e.log.Debug("loot withheld during critical breach")
				continue
			}
			if a, ok := e.lootSightedLocked(cfg, now); ok {
				acts = append(acts, a)
			}
		case classify.PlayerDeath:
			e.phase = types.PhaseIdle
			e.ringPending = false
			e.shieldUp = false
			e.resetWaveLocked()
		}
	}
	e.mu.Unlock()

	e.perform(acts)
}

// Evaluate runs every policy step once.
func (e *Engine) Evaluate(now time.Time) {
	s := e.read(now)

	e.mu.Lock()
	acts := e.evaluateLocked(s)
	e.mu.Unlock()

	e.perform(acts)
}

func (e *Engine) evaluateLocked(s snapshot) []action {
	// 1. Critical health short-circuits everything.
	if acts, breached := e.criticalLocked(s); breached {
		return acts
	}

	var acts []action
	add := func(a action, ok bool) {
		if ok {
			acts = append(acts, a)
		}
	}

	// 2. Warning pause.
	add(e.warningLocked(s))
	// 3. Shield.
	add(e.shieldLocked(s))
	// 4. Encounter initiation.
	add(e.encounterLocked(s))
	// 5. Offense.
	add(e.offenseLocked(s))
	// 6. Healing.
	add(e.healLocked(s))
	// 7. Settle loot.
	add(e.settleLootLocked(s))

	return acts
}

// RoomEntered records a room change: the attack wave resets and a loot is
// scheduled once the room has settled.
func (e *Engine) RoomEntered(now time.Time) {
	cfg := e.cfg.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetWaveLocked()
	if cfg.AutoLoot {
		e.lootDue = now.Add(cfg.LootSettle)
	}
}

// Reset returns the engine to Idle and clears all cooldown bookkeeping.
// Called on connection loss.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = types.PhaseIdle
	e.shieldUp = false
	e.inBreach = false
	e.lastCritical = time.Time{}
	e.lastWarning = time.Time{}
	e.lastShield = time.Time{}
	e.lastRing = time.Time{}
	e.ringPending = false
	e.resetWaveLocked()
	e.lastHeal = time.Time{}
	e.lastLoot = time.Time{}
	e.lootDue = time.Time{}
}

// Phase returns the current automation phase.
func (e *Engine) Phase() types.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Status returns a snapshot of the engine's bookkeeping.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Phase:      e.phase,
		ShieldUp:   e.shieldUp,
		InBreach:   e.inBreach,
		LastRing:   e.lastRing,
		LastShield: e.lastShield,
		LastHeal:   e.lastHeal,
		LastLoot:   e.lastLoot,
		LootDue:    e.lootDue,
	}
	for k := range e.attacked {
		st.Attacked = append(st.Attacked, k)
	}
	sort.Strings(st.Attacked)
	return st
}

func (e *Engine) setPhaseLocked(p types.Phase, why string) {
	if e.phase == p {
		return
	}
	e.log.Debug("phase change",
		zap.Stringer("from", e.phase),
		zap.Stringer("to", p),
		zap.String("reason", why))
	e.phase = p
}

func (e *Engine) perform(acts []action) {
	for _, a := range acts {
		if a.disconnect {
			e.log.Warn("disconnecting", zap.String("reason", a.reason))
			e.out.Disconnect()
			continue
		}
		e.log.Info("send", zap.String("cmd", a.cmd), zap.String("reason", a.reason))
		e.out.Send(a.cmd)
	}
}

// elapsed reports whether at least d has passed since last. A zero last
// means never, which always counts as elapsed.
func elapsed(last, now time.Time, d time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= d
}
