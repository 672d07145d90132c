// Package world holds the externally maintained view of the player and the
// current room: vitals, cooldowns, room contents and hunger/thirst.
package world

import (
	"sync"

	"github.com/nathoo/rosebot/types"
)

// State is the last known vitals and room. Safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	vitals types.Vitals
	room   types.RoomSnapshot
	needs  map[types.NeedKind]types.NeedState
}

// New returns an empty state.
func New() *State {
	return &State{needs: map[types.NeedKind]types.NeedState{}}
}

// Vitals returns the current vitals.
func (s *State) Vitals() types.Vitals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vitals
}

// SetVitals replaces the current vitals.
func (s *State) SetVitals(v types.Vitals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vitals = v
}

// Room returns a copy of the current room snapshot.
func (s *State) Room() types.RoomSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.room
	r.Monsters = append([]types.Monster(nil), s.room.Monsters...)
	return r
}

// SetRoom replaces the current room snapshot.
func (s *State) SetRoom(r types.RoomSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Monsters = append([]types.Monster(nil), r.Monsters...)
	s.room = r
}

// SetNeed records a hunger or thirst report.
func (s *State) SetNeed(k types.NeedKind, st types.NeedState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needs[k] = st
}

// Need returns the last reported state of k. Unreported needs are satisfied.
func (s *State) Need(k types.NeedKind) types.NeedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.needs[k]; ok {
		return st
	}
	return types.NeedSatisfied
}

// Reset forgets everything; used when the connection drops.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vitals = types.Vitals{}
	s.room = types.RoomSnapshot{}
	s.needs = map[types.NeedKind]types.NeedState{}
}

// HPPercent returns HP as a percentage of MaxHP, clamped to 0..100. An
// unknown maximum reads as full health so gates do not fire before the first
// prompt.
func HPPercent(v types.Vitals) int {
	if v.MaxHP <= 0 {
		return 100
	}
	switch {
	case v.HP >= v.MaxHP:
		return 100
	case v.HP <= 0:
		return 0
	}
	// float64 keeps huge pools from overflowing HP*100.
	return int(float64(v.HP) * 100 / float64(v.MaxHP))
}

// Unobstructed reports whether both cooldowns are clear.
func Unobstructed(v types.Vitals) bool {
	return v.AT == 0 && v.AC == 0
}

// Aggressive returns the room's aggressive monsters in room order.
func Aggressive(r types.RoomSnapshot) []types.Monster {
	var out []types.Monster
	for _, m := range r.Monsters {
		if m.Disposition == types.Aggressive {
			out = append(out, m)
		}
	}
	return out
}
