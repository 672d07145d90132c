package combat

import "github.com/nathoo/rosebot/types"

// History is a bounded log of completed combats. When full, the oldest
// entry is dropped.
type History struct {
	entries []types.CombatEntry
	max     int
}

// NewHistory creates a history holding at most max entries.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{
		entries: make([]types.CombatEntry, 0, max),
		max:     max,
	}
}

// Push appends an entry, evicting the oldest when over capacity.
func (h *History) Push(e types.CombatEntry) {
	h.entries = append(h.entries, e)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Recent returns up to n of the newest entries, oldest first.
// n <= 0 returns everything.
func (h *History) Recent(n int) []types.CombatEntry {
	start := 0
	if n > 0 && n < len(h.entries) {
		start = len(h.entries) - n
	}
	out := make([]types.CombatEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.entries)
}
