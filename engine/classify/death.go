package classify

import (
	"strings"

	"github.com/nathoo/rosebot/engine/resolve"
	"github.com/nathoo/rosebot/types"
)

// IsDeathLine reports whether line has the death grammar: its first word is
// an article and its last word, after trailing punctuation is trimmed,
// belongs to the closed death vocabulary.
func IsDeathLine(line string) bool {
	words := strings.Fields(strings.TrimRight(line, " \t.!?,;:"))
	if len(words) < 2 {
		return false
	}
	return resolve.IsArticle(bare(words[0])) && deathWords[bare(words[len(words)-1])]
}

// matchDeath returns every room monster named in a death line. A line with
// the death grammar but no tracked monster in it produces no event.
func matchDeath(line string, room types.RoomSnapshot) (Event, bool) {
	if !IsDeathLine(line) {
		return nil, false
	}
	lower := strings.ToLower(line)
	var names []string
	for _, m := range room.Monsters {
		id := resolve.Canonical(m.Name)
		if id == "" || !strings.Contains(lower, strings.ToLower(id)) {
			continue
		}
		if containsIdentity(names, id) {
			continue
		}
		names = append(names, id)
	}
	if len(names) == 0 {
		return nil, false
	}
	return Death{Monsters: names, Raw: line}, true
}

func containsIdentity(ids []string, id string) bool {
	for _, v := range ids {
		if resolve.Equal(v, id) {
			return true
		}
	}
	return false
}
