// Package flatten collapses redundant wrapper nesting in a markup tree.
//
// A container whose only element child is another container with the same
// stripped text is unwrapped: it is replaced in its parent by its own
// children. Scans repeat until one performs no unwrap. Every unwrap removes
// exactly one node, so the number of scans is bounded by the node count.
package flatten

import "github.com/jmylchreest/gleaner/pkg/markup"

// Config selects which elements count as containers.
type Config struct {
	ContainerTags []string `json:"container_tags" yaml:"container_tags"`

	// KeepClasses protects containers carrying any of these classes from
	// being unwrapped, e.g. the card and field markers an extractor looks for.
	KeepClasses []string `json:"keep_classes,omitempty" yaml:"keep_classes,omitempty"`
}

// DefaultConfig flattens nested divs.
func DefaultConfig() *Config {
	return &Config{ContainerTags: []string{"div"}}
}

// Flattener implements the cleaner.Cleaner interface.
type Flattener struct {
	containers map[string]bool
	keep       []string

	lastScans   int
	lastUnwraps int
}

// New creates a Flattener. If config is nil, DefaultConfig() is used.
func New(config *Config) *Flattener {
	if config == nil {
		config = DefaultConfig()
	}
	set := make(map[string]bool, len(config.ContainerTags))
	for _, t := range config.ContainerTags {
		set[t] = true
	}
	return &Flattener{containers: set, keep: config.KeepClasses}
}

// Flatten flattens root with the default configuration.
func Flatten(root *markup.Node) *markup.Node {
	return New(nil).Flatten(root)
}

// Name returns the cleaner name for logging.
func (f *Flattener) Name() string {
	return "flatten"
}

// Clean implements the cleaner.Cleaner interface.
func (f *Flattener) Clean(root *markup.Node) (*markup.Node, error) {
	return f.Flatten(root), nil
}

// Flatten returns a flattened copy of root.
func (f *Flattener) Flatten(root *markup.Node) *markup.Node {
	f.lastScans, f.lastUnwraps = 0, 0
	if root == nil {
		return nil
	}
	tree := root.Clone()
	limit := tree.Count()
	for f.lastScans < limit {
		f.lastScans++
		n := f.scan(tree)
		f.lastUnwraps += n
		if n == 0 {
			break
		}
	}
	tree.MergeText()
	return tree
}

// LastRun reports the scans and unwraps performed by the last Flatten call.
func (f *Flattener) LastRun() (scans, unwraps int) {
	return f.lastScans, f.lastUnwraps
}

// scan unwraps every qualifying child of n, then descends. Children spliced
// in by an unwrap are checked on the next scan.
func (f *Flattener) scan(n *markup.Node) int {
	unwraps := 0
	var out []*markup.Node
	for _, c := range n.Children {
		if f.unwrappable(c) {
			unwraps++
			out = append(out, c.Children...)
			continue
		}
		out = append(out, c)
	}
	if unwraps > 0 {
		n.Children = out
	}
	for _, c := range n.Children {
		unwraps += f.scan(c)
	}
	return unwraps
}

func (f *Flattener) unwrappable(n *markup.Node) bool {
	if n.Kind != markup.ElementNode || !f.containers[n.Tag] {
		return false
	}
	for _, class := range f.keep {
		if n.HasClass(class) {
			return false
		}
	}
	elems := n.ElementChildren()
	if len(elems) != 1 || !f.containers[elems[0].Tag] {
		return false
	}
	return n.StrippedText("") == elems[0].StrippedText("")
}
