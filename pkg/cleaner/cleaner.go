// Package cleaner provides interfaces and implementations for cleaning markup trees.
// Cleaners strip presentation-only markup so extractors see a small, regular tree.
package cleaner

import (
	"strings"

	"github.com/jmylchreest/gleaner/pkg/markup"
)

// Cleaner transforms a markup tree into a cleaner one.
type Cleaner interface {
	// Clean returns the cleaned tree. Implementations return a new tree and
	// leave the input untouched.
	Clean(root *markup.Node) (*markup.Node, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}

// CleanString parses html, runs it through c and renders the result with
// line breaks removed.
func CleanString(c Cleaner, html string) (string, error) {
	root, err := markup.Parse(html)
	if err != nil {
		return "", err
	}
	cleaned, err := c.Clean(root)
	if err != nil {
		return "", err
	}
	out := cleaned.String()
	out = strings.ReplaceAll(out, "\n", "")
	out = strings.ReplaceAll(out, "\r", "")
	return out, nil
}
