package cleaner

import "github.com/jmylchreest/gleaner/pkg/markup"

// NoopCleaner passes trees through unchanged.
// Use it for layouts that are extracted straight from the raw markup.
type NoopCleaner struct{}

// NewNoop creates a new no-op cleaner.
func NewNoop() *NoopCleaner {
	return &NoopCleaner{}
}

// Clean returns a copy of the input.
func (c *NoopCleaner) Clean(root *markup.Node) (*markup.Node, error) {
	return root.Clone(), nil
}

// Name returns the cleaner type.
func (c *NoopCleaner) Name() string {
	return "noop"
}
