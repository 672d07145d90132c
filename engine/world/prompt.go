package world

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/rosebot/types"
)

var (
	poolPattern     = regexp.MustCompile(`(?i)\b(HP|MP|MV)\s*[:=]\s*(-?\d+)\s*/\s*(\d+)`)
	cooldownPattern = regexp.MustCompile(`(?i)\b(AT|AC)\s*[:=]\s*(\d+)`)
)

// ParsePrompt extracts vitals from a status prompt such as
// "HP: 80/100 MP: 40/50 MV: 90/90 AT: 0 AC: 2" or the fragment form
// "[HP=80/100 MP=20/40]:". Fields may appear in any order; absent fields are
// zero. The line must already be free of ANSI escapes. A line without an HP
// pool, or with a number that does not fit an int, is not a prompt.
func ParsePrompt(line string) (types.Vitals, bool) {
	var v types.Vitals
	sawHP := false

	for _, m := range poolPattern.FindAllStringSubmatch(line, -1) {
		cur, err := strconv.Atoi(m[2])
		if err != nil {
			return types.Vitals{}, false
		}
		total, err := strconv.Atoi(m[3])
		if err != nil {
			return types.Vitals{}, false
		}
		switch strings.ToUpper(m[1]) {
		case "HP":
			v.HP, v.MaxHP = cur, total
			sawHP = true
		case "MP":
			v.MP, v.MaxMP = cur, total
		case "MV":
			v.MV, v.MaxMV = cur, total
		}
	}
	if !sawHP {
		return types.Vitals{}, false
	}

	for _, m := range cooldownPattern.FindAllStringSubmatch(line, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return types.Vitals{}, false
		}
		switch strings.ToUpper(m[1]) {
		case "AT":
			v.AT = n
		case "AC":
			v.AC = n
		}
	}
	return v, true
}
