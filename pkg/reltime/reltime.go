// Package reltime turns the short Korean time phrases used by news listings
// ("17분 전", "2일 전", "2026년 01월 22일") into absolute timestamps.
package reltime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the output format: second precision, no zone.
const Layout = "2006-01-02T15:04:05"

var (
	reMinutesAgo = regexp.MustCompile(`^(\d+)\s*분\s*전`)
	reHoursAgo   = regexp.MustCompile(`^(\d+)\s*시간\s*전`)
	reDaysAgo    = regexp.MustCompile(`^(\d+)\s*일\s*전`)
	reDate       = regexp.MustCompile(`^(\d+)년\s*(\d+)월\s*(\d+)일`)
)

type rule func(token string, ref time.Time) (time.Time, bool)

// rules are tried in order against the start of the token; the first that
// produces a time wins.
var rules = []rule{
	offsetRule(reMinutesAgo, time.Minute),
	offsetRule(reHoursAgo, time.Hour),
	offsetRule(reDaysAgo, 24*time.Hour),
	absoluteDate,
}

// Normalize converts token relative to ref. It never fails: when no rule
// applies the trimmed token is returned unchanged. Empty input gives "".
func Normalize(token string, ref time.Time) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if t, ok := Parse(token, ref); ok {
		return t.Format(Layout)
	}
	return token
}

// Parse is Normalize without the fallback: ok is false when no rule applies.
func Parse(token string, ref time.Time) (time.Time, bool) {
	token = strings.TrimSpace(token)
	for _, r := range rules {
		if t, ok := r(token, ref); ok {
			return t.Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}

// Normalizer binds a clock so callers do not thread the reference instant.
type Normalizer struct {
	Now func() time.Time
}

// NewNormalizer returns a Normalizer using time.Now.
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize converts token relative to the normalizer's clock.
func (n *Normalizer) Normalize(token string) string {
	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}
	return Normalize(token, now())
}

func offsetRule(re *regexp.Regexp, unit time.Duration) rule {
	return func(token string, ref time.Time) (time.Time, bool) {
		m := re.FindStringSubmatch(token)
		if m == nil {
			return time.Time{}, false
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || n > int64(maxOffset/unit) {
			return time.Time{}, false
		}
		return ref.Add(-time.Duration(n) * unit), true
	}
}

// maxOffset keeps offsets well inside time.Duration's range.
const maxOffset = 100 * 365 * 24 * time.Hour

// absoluteDate builds local midnight of the date in ref's location, skipping
// anything that is not a real calendar date.
func absoluteDate(token string, ref time.Time) (time.Time, bool) {
	m := reDate.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, false
	}
	y, errY := strconv.Atoi(m[1])
	mo, errM := strconv.Atoi(m[2])
	d, errD := strconv.Atoi(m[3])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	if y < 1 || y > 9999 {
		return time.Time{}, false
	}
	loc := ref.Location()
	if loc == nil {
		loc = time.Local
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
