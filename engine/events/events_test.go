package events

import (
	"testing"

	"github.com/nathoo/rosebot/types"
)

func TestDispatch_ByType(t *testing.T) {
	bus := NewBus()
	var started, completed int
	bus.Subscribe(CombatStarted, func(Notification) { started++ })
	bus.Subscribe(CombatCompleted, func(Notification) { completed++ })

	bus.Dispatch(
		Notification{Type: CombatStarted},
		Notification{Type: CombatUpdated},
		Notification{Type: CombatStarted},
	)

	if started != 2 {
		t.Errorf("expected 2 started, got %d", started)
	}
	if completed != 0 {
		t.Errorf("expected 0 completed, got %d", completed)
	}
}

func TestDispatch_SubscribeAll(t *testing.T) {
	bus := NewBus()
	var seen []Type
	bus.SubscribeAll(func(n Notification) { seen = append(seen, n.Type) })

	bus.Dispatch(Notification{Type: MonsterDeath}, Notification{Type: CombatCompleted})

	if len(seen) != 2 || seen[0] != MonsterDeath || seen[1] != CombatCompleted {
		t.Errorf("unexpected delivery order: %v", seen)
	}
}

func TestDispatch_PayloadDelivered(t *testing.T) {
	bus := NewBus()
	var got types.CombatEntry
	bus.Subscribe(CombatCompleted, func(n Notification) { got = n.Entry })

	bus.Dispatch(Notification{
		Type:  CombatCompleted,
		Entry: types.CombatEntry{Monster: "orc", Experience: 50, Status: types.StatusVictory},
	})

	if got.Monster != "orc" || got.Experience != 50 {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestDispatch_SinglePass(t *testing.T) {
	bus := NewBus()
	late := 0
	bus.Subscribe(CombatStarted, func(Notification) {
		// Subscribing during delivery must not affect this dispatch.
		bus.Subscribe(CombatStarted, func(Notification) { late++ })
	})

	bus.Dispatch(Notification{Type: CombatStarted})
	if late != 0 {
		t.Fatalf("late subscriber ran during the same dispatch")
	}

	bus.Dispatch(Notification{Type: CombatStarted})
	if late != 1 {
		t.Errorf("expected late subscriber to run once, got %d", late)
	}
}

func TestDispatch_NilBus(t *testing.T) {
	var bus *Bus
	bus.Dispatch(Notification{Type: CombatStarted}) // must not panic
}
