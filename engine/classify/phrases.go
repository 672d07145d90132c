package classify

import (
	"regexp"
	"strings"

	"github.com/nathoo/rosebot/engine/resolve"
	"github.com/nathoo/rosebot/types"
)

var (
	targetingPattern   = regexp.MustCompile(`(?i)^you begin to focus on (.+?)[.!]*$`)
	needPattern        = regexp.MustCompile(`(?i)\byou are (no longer )?(hungry|starving|thirsty|parched)\b`)
	playerDeathPattern = regexp.MustCompile(`(?i)^(you have died|you are dead|you have been killed)\b`)
	lootPattern        = regexp.MustCompile(
		`(?i)(\b\d[\d,]*\s+(gold\s+)?coins?\b|\bgold coins\b|\bcoins?\s+(fall|falls|spill|spills|drop|drops)\b|\bdrops?\b.*\bcoins\b)`)
)

var shieldUp = []string{
	"you are surrounded by a",
	"a shimmering shield surrounds you",
	"a magical shield forms around you",
}

var shieldDown = []string{
	"your shield fades",
	"your shield dissipates",
	"your magical shield vanishes",
	"your protective shield collapses",
}

// Pickup confirmations mention coins too but must not re-trigger looting.
var pickupPrefixes = []string{"you get", "you pick up", "you take", "you receive"}

// matchTargeting recognises "You begin to focus on <monster>".
func matchTargeting(line string, room types.RoomSnapshot) (Event, bool) {
	sub := targetingPattern.FindStringSubmatch(line)
	if sub == nil {
		return nil, false
	}
	monster := resolve.Key(sub[1], room)
	if monster == "" {
		return nil, false
	}
	return MeleeTargeting{Monster: monster}, true
}

func matchShield(line string, _ types.RoomSnapshot) (Event, bool) {
	lower := strings.ToLower(line)
	for _, p := range shieldDown {
		if strings.Contains(lower, p) {
			return ShieldChange{Active: false}, true
		}
	}
	for _, p := range shieldUp {
		if strings.Contains(lower, p) && strings.Contains(lower, "shield") {
			return ShieldChange{Active: true}, true
		}
	}
	return nil, false
}

func matchNeed(line string, _ types.RoomSnapshot) (Event, bool) {
	sub := needPattern.FindStringSubmatch(line)
	if sub == nil {
		return nil, false
	}
	kind := types.NeedHunger
	word := strings.ToLower(sub[2])
	if word == "thirsty" || word == "parched" {
		kind = types.NeedThirst
	}
	state := types.NeedWanting
	switch {
	case sub[1] != "":
		state = types.NeedSatisfied
	case word == "starving" || word == "parched":
		state = types.NeedCritical
	}
	return NeedChange{Kind: kind, State: state}, true
}

func matchLoot(line string, _ types.RoomSnapshot) (Event, bool) {
	lower := strings.ToLower(line)
	for _, p := range pickupPrefixes {
		if strings.HasPrefix(lower, p) {
			return nil, false
		}
	}
	if !lootPattern.MatchString(line) {
		return nil, false
	}
	return LootSighted{Raw: line}, true
}

func matchPlayerDeath(line string, _ types.RoomSnapshot) (Event, bool) {
	if !playerDeathPattern.MatchString(line) {
		return nil, false
	}
	return PlayerDeath{Raw: line}, true
}
