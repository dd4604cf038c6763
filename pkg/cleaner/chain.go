package cleaner

import (
	"strings"

	"github.com/jmylchreest/gleaner/pkg/markup"
)

// ChainCleaner applies multiple cleaners in sequence.
type ChainCleaner struct {
	cleaners []Cleaner
}

// NewChain creates a new cleaner that applies multiple cleaners in sequence.
// Cleaners are applied in the order provided.
//
// Example:
//
//	chain := cleaner.NewChain(
//	    sanitize.New(sanitize.DefaultConfig()),
//	    flatten.New(nil),
//	)
func NewChain(cleaners ...Cleaner) *ChainCleaner {
	return &ChainCleaner{
		cleaners: cleaners,
	}
}

// Clean applies all cleaners in sequence. An empty chain returns a copy.
func (c *ChainCleaner) Clean(root *markup.Node) (*markup.Node, error) {
	if len(c.cleaners) == 0 {
		return NewNoop().Clean(root)
	}
	var err error
	for _, cl := range c.cleaners {
		root, err = cl.Clean(root)
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Name returns the names of all chained cleaners.
func (c *ChainCleaner) Name() string {
	names := make([]string, len(c.cleaners))
	for i, cl := range c.cleaners {
		names[i] = cl.Name()
	}
	return "chain(" + strings.Join(names, "->") + ")"
}
