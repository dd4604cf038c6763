package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// The scanners below each walk an ordered candidate list and return the
// first satisfying value. The candidate order is the tie-break policy.

var (
	reDiscount = regexp.MustCompile(`\d+%`)
	rePriceRun = regexp.MustCompile(`[\d,]+`)
	reDigit    = regexp.MustCompile(`\d`)
	reRating   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// CurrencySuffix marks a text node as a price candidate.
const CurrencySuffix = "원"

// FirstDiscount returns the first "<digits>%" token among texts.
func FirstDiscount(texts []string) (string, bool) {
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if !strings.Contains(t, "%") {
			continue
		}
		if m := reDiscount.FindString(t); m != "" {
			return m, true
		}
	}
	return "", false
}

// FirstPrice returns the digit-and-separator run of the first text carrying
// the currency suffix and at least one digit. Later candidates are ignored
// even when the first one yields no run.
func FirstPrice(texts []string) (string, bool) {
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if !strings.Contains(t, CurrencySuffix) || !reDigit.MatchString(t) {
			continue
		}
		return PriceDigits(t)
	}
	return "", false
}

// PriceDigits returns the first run of digits and commas in s.
func PriceDigits(s string) (string, bool) {
	m := rePriceRun.FindString(s)
	return m, m != ""
}

// FirstRating parses the first label that is a plain integer or decimal.
func FirstRating(labels []string) (float64, bool) {
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if !reRating.MatchString(l) {
			continue
		}
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}
