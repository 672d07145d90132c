package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/rosebot/engine/resolve"
	"github.com/nathoo/rosebot/types"
)

var integerPattern = regexp.MustCompile(`\d[\d,]*`)

// Second words that turn a "You ..." line into damage received, not dealt.
var passiveWords = map[string]bool{
	"are": true, "were": true, "take": true, "takes": true,
	"suffer": true, "have": true, "feel": true,
}

// matchPlayerDamage recognises "You <verb> <target> ... <n> damage".
func matchPlayerDamage(line string, room types.RoomSnapshot) (Event, bool) {
	words := strings.Fields(line)
	if len(words) < 3 {
		return nil, false
	}
	if bare(words[0]) != "you" || passiveWords[bare(words[1])] {
		return nil, false
	}
	if !endsWithDamage(words) {
		return nil, false
	}
	amount, ok := largestInt(line)
	if !ok {
		return nil, false
	}

	rest := words[1:]
	target, err := resolve.Resolve(strings.Join(rest, " "), room)
	if err != nil {
		target = fallbackName(rest, true)
	}
	if target == "" {
		return nil, false
	}
	return PlayerDamage{Target: target, Amount: amount}, true
}

// matchMonsterDamage recognises "<Article> <monster> ... you ... <n> damage".
func matchMonsterDamage(line string, room types.RoomSnapshot) (Event, bool) {
	words := strings.Fields(line)
	if len(words) < 4 || !resolve.IsArticle(bare(words[0])) {
		return nil, false
	}
	if !endsWithDamage(words) {
		return nil, false
	}
	at := indexOf(words, playerMarkers)
	if at < 2 {
		return nil, false
	}
	amount, ok := largestInt(line)
	if !ok {
		return nil, false
	}

	ref := words[:at]
	monster, err := resolve.Resolve(strings.Join(ref, " "), room)
	if err != nil {
		monster = fallbackName(ref, false)
	}
	if monster == "" {
		return nil, false
	}
	return MonsterDamage{Monster: monster, Amount: amount}, true
}

// matchAreaDamage recognises "<source> explodes/engulfs ... you ... <n> damage".
func matchAreaDamage(line string, room types.RoomSnapshot) (Event, bool) {
	words := strings.Fields(line)
	if len(words) < 4 || !endsWithDamage(words) {
		return nil, false
	}
	marker := indexOf(words, areaMarkers)
	if marker < 1 || indexOf(words, playerMarkers) < 0 {
		return nil, false
	}
	amount, ok := largestInt(line)
	if !ok {
		return nil, false
	}
	source := resolve.Key(strings.Join(words[:marker], " "), room)
	if source == "" {
		return nil, false
	}
	return AreaDamage{Source: source, Amount: amount}, true
}

// largestInt returns the largest integer in s. Game text may carry
// incidental smaller numbers; the damage figure is taken to be the largest.
func largestInt(s string) (int, bool) {
	best, found := 0, false
	for _, m := range integerPattern.FindAllString(s, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
		if err != nil {
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	return best, found
}

// fallbackName builds a best-effort name from the words of a damage line
// when room resolution failed. Leading action verbs (player lines) or
// trailing action verbs (monster lines) and all articles are dropped, and
// the text is cut at the damage clause.
func fallbackName(words []string, leadingVerb bool) string {
	var kept []string
	started := false
	for i, w := range words {
		b := bare(w)
		if i > 0 && (damageClause[b] || isNumber(b)) {
			break
		}
		if leadingVerb && !started && (actionVerbs[b] || isAdverb(b)) {
			continue
		}
		if !resolve.IsArticle(b) {
			started = true
		}
		kept = append(kept, w)
	}
	if !leadingVerb {
		for len(kept) > 0 {
			b := bare(kept[len(kept)-1])
			if !actionVerbs[b] && !isAdverb(b) {
				break
			}
			kept = kept[:len(kept)-1]
		}
	}
	return resolve.Normalize(strings.Join(resolve.StripArticles(kept), " "))
}

func isAdverb(w string) bool {
	return len(w) > 4 && strings.HasSuffix(w, "ly")
}

func endsWithDamage(words []string) bool {
	return bare(words[len(words)-1]) == damageMarker
}

// indexOf returns the index of the first word in set, or -1.
func indexOf(words []string, set map[string]bool) int {
	for i, w := range words {
		if set[bare(w)] || set[strings.ToLower(w)] {
			return i
		}
	}
	return -1
}

// bare lowercases a word and trims surrounding punctuation.
func bare(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?;:'\"()[]"))
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' {
			return false
		}
	}
	return true
}
