package sanitize

import (
	"strings"
	"time"

	"github.com/jmylchreest/gleaner/pkg/markup"
)

// Sanitizer removes deny-listed elements and attributes from a tree.
// It implements the cleaner.Cleaner interface.
type Sanitizer struct {
	config *Config
	stats  *Stats

	noise      map[string]bool
	strip      map[string]bool
	containers map[string]bool
}

// New creates a new Sanitizer with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Sanitizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Sanitizer{
		config:     config,
		noise:      toSet(config.NoiseTags),
		strip:      toSet(config.StripAttributes),
		containers: toSet(config.EmptyContainerTags),
	}
}

// Name returns the cleaner name for logging.
func (s *Sanitizer) Name() string {
	return "sanitize"
}

// Clean implements the cleaner.Cleaner interface.
func (s *Sanitizer) Clean(root *markup.Node) (*markup.Node, error) {
	return s.Sanitize(root), nil
}

// Sanitize returns a sanitized copy of root.
func (s *Sanitizer) Sanitize(root *markup.Node) *markup.Node {
	return s.SanitizeWithStats(root).Root
}

// Stats returns the stats from the last Sanitize operation.
func (s *Sanitizer) Stats() *Stats {
	return s.stats
}

// SanitizeWithStats sanitizes root and returns detailed stats.
//
// Passes run in a fixed order, each over the output of the previous one:
// decorative markers, noise tags, attribute stripping, empty containers,
// newline stripping. Every pass rebuilds the retained nodes into a new tree.
// Text left side by side by a removal is then joined into one node.
func (s *Sanitizer) SanitizeWithStats(root *markup.Node) *Result {
	start := time.Now()
	result := &Result{Stats: NewStats()}

	if root == nil {
		result.Root = markup.NewDocument()
		result.AddWarning("input", "nil tree, returning empty document", "")
		result.Stats.Duration = time.Since(start)
		s.stats = result.Stats
		return result
	}
	result.Stats.InputNodes = root.Count()

	tree := root
	if len(s.config.DecorativeMarkers) > 0 {
		tree = s.prune(tree, s.isDecorative, func(n *markup.Node) {
			result.Stats.MarkerRemovals++
			result.Stats.RecordRemoval(n.Tag)
		})
	}
	if len(s.noise) > 0 {
		tree = s.prune(tree, func(n *markup.Node) bool { return s.noise[n.Tag] }, func(n *markup.Node) {
			result.Stats.NoiseRemovals++
			result.Stats.RecordRemoval(n.Tag)
		})
	}
	if len(s.strip) > 0 {
		tree = s.stripAttributes(tree, result.Stats)
	}
	if s.config.StripEmptyContainers && len(s.containers) > 0 {
		tree = s.pruneEmpty(tree, result.Stats)
	}
	if s.config.StripNewlines {
		tree = s.stripNewlines(tree, result.Stats)
	}

	if tree == root {
		tree = root.Clone()
	}
	result.Stats.TextMerges = tree.MergeText()
	result.Root = tree
	result.Stats.OutputNodes = tree.Count()
	result.Stats.Duration = time.Since(start)
	s.stats = result.Stats
	return result
}

func (s *Sanitizer) isDecorative(n *markup.Node) bool {
	for _, m := range s.config.DecorativeMarkers {
		if m.Matches(n.Tag, n.Attr) {
			return true
		}
	}
	return false
}

// prune copies the tree, leaving out every element for which drop is true
// together with its subtree.
func (s *Sanitizer) prune(n *markup.Node, drop func(*markup.Node) bool, onDrop func(*markup.Node)) *markup.Node {
	out := shallowCopy(n)
	for _, c := range n.Children {
		if c.Kind == markup.ElementNode && drop(c) {
			onDrop(c)
			continue
		}
		out.Children = append(out.Children, s.prune(c, drop, onDrop))
	}
	return out
}

func (s *Sanitizer) stripAttributes(n *markup.Node, stats *Stats) *markup.Node {
	out := shallowCopy(n)
	if n.Kind == markup.ElementNode && len(n.Attrs) > 0 {
		out.Attrs = out.Attrs[:0:0]
		for _, a := range n.Attrs {
			if s.strip[strings.ToLower(a.Key)] {
				stats.AttributesRemoved++
				continue
			}
			out.Attrs = append(out.Attrs, a)
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, s.stripAttributes(c, stats))
	}
	return out
}

// pruneEmpty rebuilds children first, so the emptiness check of a container
// sees its already-pruned subtree.
func (s *Sanitizer) pruneEmpty(n *markup.Node, stats *Stats) *markup.Node {
	out := shallowCopy(n)
	for _, c := range n.Children {
		kept := s.pruneEmpty(c, stats)
		if kept.Kind == markup.ElementNode && s.containers[kept.Tag] && isEmpty(kept) {
			stats.EmptyContainerRemovals++
			stats.RecordRemoval(kept.Tag)
			continue
		}
		out.Children = append(out.Children, kept)
	}
	return out
}

func isEmpty(n *markup.Node) bool {
	return !n.HasElementDescendant() && !n.HasText()
}

var newlineReplacer = strings.NewReplacer("\n", "", "\r", "")

func (s *Sanitizer) stripNewlines(n *markup.Node, stats *Stats) *markup.Node {
	out := shallowCopy(n)
	switch n.Kind {
	case markup.TextNode:
		if strings.ContainsAny(n.Data, "\r\n") {
			stats.NewlinesStripped++
			out.Data = newlineReplacer.Replace(n.Data)
		}
	case markup.ElementNode:
		for i, a := range out.Attrs {
			if strings.ContainsAny(a.Val, "\r\n") {
				out.Attrs[i].Val = newlineReplacer.Replace(a.Val)
			}
		}
	}
	for _, c := range n.Children {
		kept := s.stripNewlines(c, stats)
		if kept.Kind == markup.TextNode && kept.Data == "" {
			continue
		}
		out.Children = append(out.Children, kept)
	}
	return out
}

// shallowCopy copies a node without its children. Attributes are copied so
// the new tree never aliases the input.
func shallowCopy(n *markup.Node) *markup.Node {
	cp := &markup.Node{Kind: n.Kind, Tag: n.Tag, Data: n.Data}
	if n.Attrs != nil {
		cp.Attrs = append([]markup.Attr(nil), n.Attrs...)
	}
	return cp
}
