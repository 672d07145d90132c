// Package engine wires the classifier, combat tracker, world state and
// policy engine into one pipeline. Lines and ticks enter through HandleLine
// and Tick; Run feeds both from a live session on a single goroutine.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine/classify"
	"github.com/nathoo/rosebot/engine/combat"
	"github.com/nathoo/rosebot/engine/events"
	"github.com/nathoo/rosebot/engine/policy"
	"github.com/nathoo/rosebot/engine/world"
	"github.com/nathoo/rosebot/types"
)

// ErrConnectionLost is returned by Run when the session reports loss.
var ErrConnectionLost = errors.New("connection lost")

// Session is a live game connection.
type Session interface {
	policy.Sender
	Lines() <-chan string
	Lost() <-chan struct{}
}

// Options configures the pipeline. Zero values take defaults.
type Options struct {
	Tracker           combat.Options
	ExperienceCeiling int
	TickInterval      time.Duration
	Now               func() time.Time // clock used by Run
}

// Engine holds the pipeline components.
type Engine struct {
	cfg        *config.Store
	classifier *classify.Classifier
	tracker    *combat.Tracker
	policy     *policy.Engine
	world      *world.State
	bus        *events.Bus
	out        *relay
	log        *zap.Logger

	tick time.Duration
	now  func() time.Time
}

// New builds the pipeline around the shared automation config. Commands go
// nowhere until a sender is attached.
func New(cfg *config.Store, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 500 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	bus := events.NewBus()
	w := world.New()
	tr := combat.New(opts.Tracker, bus, log)
	out := &relay{}

	return &Engine{
		cfg:        cfg,
		classifier: classify.New(opts.ExperienceCeiling),
		tracker:    tr,
		policy:     policy.New(cfg, w, w, tr, out, log),
		world:      w,
		bus:        bus,
		out:        out,
		log:        log.Named("engine"),
		tick:       opts.TickInterval,
		now:        opts.Now,
	}
}

// Attach routes outbound commands to s.
func (e *Engine) Attach(s policy.Sender) {
	e.out.set(s)
}

// HandleLine runs one received line through the pipeline and returns the
// events it produced.
func (e *Engine) HandleLine(raw string, now time.Time) []classify.Event {
	// 1. Refresh vitals from a status prompt, coloured or not. Clean would
	// drop a leading prompt fragment, so only escapes are stripped here.
	if v, ok := world.ParsePrompt(classify.StripANSI(raw)); ok {
		e.world.SetVitals(v)
	}

	// 2. Classify against the current room.
	evs := e.classifier.Classify(types.TextLine{Text: raw, At: now}, e.world.Room())

	// 3. Update combat and world state.
	for _, ev := range evs {
		e.tracker.Apply(ev, now)
		if n, ok := ev.(classify.NeedChange); ok {
			e.world.SetNeed(n.Kind, n.State)
		}
	}

	// 4. Let the policy react, then re-evaluate.
	e.policy.OnEvents(evs, now)
	e.policy.Evaluate(now)
	return evs
}

// Tick reaps stale encounters and re-evaluates the policy.
func (e *Engine) Tick(now time.Time) {
	e.tracker.Reap(now)
	e.policy.Evaluate(now)
}

// SetRoom records a room change.
func (e *Engine) SetRoom(room types.RoomSnapshot, now time.Time) {
	e.world.SetRoom(room)
	e.tracker.RoomChanged(room, now)
	e.policy.RoomEntered(now)
}

// SetVitals records vitals supplied outside the line stream.
func (e *Engine) SetVitals(v types.Vitals) {
	e.world.SetVitals(v)
}

// Disconnected clears all in-flight state after the session drops.
func (e *Engine) Disconnected() {
	e.tracker.Reset()
	e.policy.Reset()
	e.classifier.Reset()
	e.world.Reset()
	e.log.Info("state reset after disconnect")
}

// Run is the actor loop: it serialises inbound lines, ticks and connection
// loss onto the calling goroutine until ctx ends or the session is lost.
func (e *Engine) Run(ctx context.Context, s Session) error {
	e.Attach(s)
	defer e.Attach(nil)

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	lines := s.Lines()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				e.Disconnected()
				return ErrConnectionLost
			}
			e.HandleLine(line, e.now())
		case <-ticker.C:
			e.Tick(e.now())
		case <-s.Lost():
			e.Disconnected()
			return ErrConnectionLost
		}
	}
}

// Config returns the shared automation config.
func (e *Engine) Config() *config.Store { return e.cfg }

// Tracker returns the combat tracker for queries.
func (e *Engine) Tracker() *combat.Tracker { return e.tracker }

// Policy returns the policy engine for queries.
func (e *Engine) Policy() *policy.Engine { return e.policy }

// World returns the vitals and room state.
func (e *Engine) World() *world.State { return e.world }

// Bus returns the lifecycle notification bus.
func (e *Engine) Bus() *events.Bus { return e.bus }

// relay forwards commands to whichever sender is attached.
type relay struct {
	mu sync.RWMutex
	s  policy.Sender
}

func (r *relay) set(s policy.Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = s
}

func (r *relay) Send(cmd string) {
	r.mu.RLock()
	s := r.s
	r.mu.RUnlock()
	if s != nil {
		s.Send(cmd)
	}
}

func (r *relay) Disconnect() {
	r.mu.RLock()
	s := r.s
	r.mu.RUnlock()
	if s != nil {
		s.Disconnect()
	}
}
