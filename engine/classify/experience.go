package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultExperienceCeiling is the largest single gain recorded as-is.
// Larger deltas are clamped to it.
const DefaultExperienceCeiling = 100000

var experiencePattern = regexp.MustCompile(
	`(?i)\[\s*Cur:\s*([\d,]+)\s+Nxt:\s*([\d,]+)\s+Left:\s*(-?[\d,]+)\s*\]`)

// ExperienceMeter turns the cumulative experience status line into gains.
// The first observation only establishes a baseline. Not safe for
// concurrent use; the owning Classifier is driven by a single goroutine.
type ExperienceMeter struct {
	ceiling int
	seen    bool
	cur     int
	left    int
}

// NewExperienceMeter creates a meter that clamps gains above ceiling.
// A ceiling <= 0 uses DefaultExperienceCeiling.
func NewExperienceMeter(ceiling int) *ExperienceMeter {
	if ceiling <= 0 {
		ceiling = DefaultExperienceCeiling
	}
	return &ExperienceMeter{ceiling: ceiling}
}

// Observe records a Cur/Left reading and returns the gain since the last
// reading. ok is false when there is no positive gain to report.
func (m *ExperienceMeter) Observe(cur, left int) (gain int, clamped bool, ok bool) {
	if !m.seen {
		m.seen = true
		m.cur, m.left = cur, left
		return 0, false, false
	}

	gain = cur - m.cur
	if gain <= 0 {
		gain = m.left - left
	}
	m.cur, m.left = cur, left

	if gain <= 0 {
		return 0, false, false
	}
	if gain > m.ceiling {
		return m.ceiling, true, true
	}
	return gain, false, true
}

// Reset forgets the baseline; the next observation becomes the new one.
func (m *ExperienceMeter) Reset() {
	m.seen = false
	m.cur, m.left = 0, 0
}

// parseExperience extracts Cur, Nxt and Left from the status pattern.
func parseExperience(line string) (cur, next, left int, ok bool) {
	sub := experiencePattern.FindStringSubmatch(line)
	if sub == nil {
		return 0, 0, 0, false
	}
	var err error
	if cur, err = atoiGrouped(sub[1]); err != nil {
		return 0, 0, 0, false
	}
	if next, err = atoiGrouped(sub[2]); err != nil {
		return 0, 0, 0, false
	}
	if left, err = atoiGrouped(sub[3]); err != nil {
		return 0, 0, 0, false
	}
	return cur, next, left, true
}

func atoiGrouped(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(s, ",", ""))
}
