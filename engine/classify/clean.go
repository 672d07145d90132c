package classify

import (
	"regexp"
	"strings"
)

var (
	// CSI sequences (colors, cursor movement) and OSC sequences (titles).
	ansiCSI = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	ansiOSC = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

	// A status prompt fragment glued to the front of a line, e.g.
	// "[HP=80/100 MP=20/40]: The orc dies."
	promptFragment = regexp.MustCompile(`^\[[^\]]*\bHP\b[^\]]*\]:?\s*`)
)

// StripANSI removes ANSI CSI and OSC escape sequences and nothing else.
func StripANSI(s string) string {
	s = ansiOSC.ReplaceAllString(s, "")
	return ansiCSI.ReplaceAllString(s, "")
}

// Clean strips terminal residue from a line: ANSI escapes, control bytes,
// and a leading status-prompt fragment. Clean is idempotent.
func Clean(s string) string {
	s = StripANSI(s)
	s = strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	for {
		stripped := promptFragment.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	return s
}
