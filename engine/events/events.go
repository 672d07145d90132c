// Package events implements single-pass notification dispatch for combat
// lifecycle changes. Handlers run synchronously in subscription order.
package events

import (
	"sync"

	"github.com/nathoo/rosebot/types"
)

// Type names a lifecycle notification.
type Type string

const (
	CombatStarted   Type = "combat_started"
	CombatUpdated   Type = "combat_updated"
	CombatCompleted Type = "combat_completed"
	MonsterDeath    Type = "monster_death"
)

// Notification is emitted after a tracker transition.
type Notification struct {
	Type    Type
	Combat  types.ActiveCombat // started, updated, monster death
	Entry   types.CombatEntry  // completed
	Summary string             // human-readable, for logging only
}

// Handler receives notifications.
type Handler func(Notification)

// Bus fans notifications out to subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	all      []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[Type][]Handler{}}
}

// Subscribe registers h for one notification type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// SubscribeAll registers h for every notification type.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Dispatch delivers each notification to its handlers. Single pass: the
// handler list is snapshotted first, so handlers that subscribe during
// delivery only see later dispatches. A nil bus drops everything.
func (b *Bus) Dispatch(ns ...Notification) {
	if b == nil || len(ns) == 0 {
		return
	}

	b.mu.RLock()
	byType := make(map[Type][]Handler, len(b.handlers))
	for t, hs := range b.handlers {
		byType[t] = append([]Handler(nil), hs...)
	}
	all := append([]Handler(nil), b.all...)
	b.mu.RUnlock()

	for _, n := range ns {
		for _, h := range byType[n.Type] {
			h(n)
		}
		for _, h := range all {
			h(n)
		}
	}
}
