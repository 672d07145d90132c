// Package resolve maps free-text monster references to the canonical
// identity of a monster in the current room.
package resolve

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nathoo/rosebot/types"
)

// NotFoundError indicates no room monster matched a reference.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no monster here matches %q", e.Ref)
}

// Leading articles stripped from names and references.
var articles = map[string]bool{
	"a": true, "an": true, "the": true, "some": true,
}

// significantLen is the minimum word length considered by the word tier.
const significantLen = 3

// Resolve returns the canonical identity of the room monster that best
// matches ref. Tiers are tried in order and the first tier with any
// candidate wins; within a tier the first monster in room order wins.
func Resolve(ref string, room types.RoomSnapshot) (string, error) {
	refLower := lowerSpace(ref)
	if refLower == "" || len(room.Monsters) == 0 {
		return "", &NotFoundError{Ref: ref}
	}

	// 1. Full name substring, either direction.
	for _, m := range room.Monsters {
		name := lowerSpace(m.Name)
		if name == "" {
			continue
		}
		if strings.Contains(refLower, name) || strings.Contains(name, refLower) {
			return Canonical(m.Name), nil
		}
	}

	// 2. Same, with leading articles stripped from both sides.
	refBare := stripLeadingArticles(refLower)
	if refBare != "" {
		for _, m := range room.Monsters {
			name := stripLeadingArticles(lowerSpace(m.Name))
			if name == "" {
				continue
			}
			if strings.Contains(refBare, name) || strings.Contains(name, refBare) {
				return Canonical(m.Name), nil
			}
		}
	}

	// 3. Multi-word names: every significant word of one side appears in the other.
	refWords := wordSet(refBare)
	for _, m := range room.Monsters {
		nameBare := stripLeadingArticles(lowerSpace(m.Name))
		nameWords := strings.Fields(nameBare)
		if len(nameWords) < 2 {
			continue
		}
		if containsAll(refWords, significant(nameWords)) ||
			containsAll(wordSet(nameBare), significant(strings.Fields(refBare))) {
			return Canonical(m.Name), nil
		}
	}

	return "", &NotFoundError{Ref: ref}
}

// Key resolves ref against room, falling back to the normalized reference
// when no monster matches. The result is never empty unless ref is.
func Key(ref string, room types.RoomSnapshot) string {
	id, err := Resolve(ref, room)
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return Normalize(ref)
	}
	return id
}

// Canonical turns a room monster name into its identity: leading articles
// removed and whitespace collapsed. Case is preserved.
func Canonical(name string) string {
	words := strings.Fields(name)
	for len(words) > 1 && articles[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// Normalize produces a room-independent key from free text: punctuation
// stripped, leading articles removed, whitespace collapsed.
func Normalize(ref string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' {
			return r
		}
		return ' '
	}, ref)
	return Canonical(cleaned)
}

// Equal reports whether two identities name the same monster.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// StripArticles removes every standalone article from words.
func StripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[strings.ToLower(w)] {
			result = append(result, w)
		}
	}
	return result
}

// IsArticle reports whether word is one of the recognised articles.
func IsArticle(word string) bool {
	return articles[strings.ToLower(word)]
}

func lowerSpace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func stripLeadingArticles(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && articles[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(s) {
		set[strings.Trim(w, ".,!?;:'\"()")] = true
	}
	return set
}

func significant(words []string) []string {
	var out []string
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:'\"()")
		if len(w) >= significantLen {
			out = append(out, w)
		}
	}
	return out
}

// containsAll is false for an empty want list so that references made only
// of short words never match everything.
func containsAll(have map[string]bool, want []string) bool {
	if len(want) == 0 {
		return false
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}
