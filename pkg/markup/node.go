// Package markup provides the in-memory tree model used by the cleaning and
// extraction pipeline.
//
// A tree is a Document root holding Element and Text nodes. Trees are built
// once per input document by Parse and are never shared between documents.
// Cleaning passes do not mutate a tree in place; they rebuild a new tree from
// the nodes they retain.
package markup

import "strings"

// NodeKind identifies which variant of the tagged union a Node holds.
type NodeKind int

const (
	// DocumentNode is the root of a parsed tree. It only has children.
	DocumentNode NodeKind = iota
	// ElementNode has a tag, ordered attributes and children.
	ElementNode
	// TextNode has text content and no children.
	TextNode
)

// String returns the kind name for logging.
func (k NodeKind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute. Attribute order is preserved.
type Attr struct {
	Key string
	Val string
}

// Node is a markup tree node.
type Node struct {
	Kind     NodeKind
	Tag      string // lower-case tag name, elements only
	Attrs    []Attr // elements only
	Data     string // text content, text nodes only
	Children []*Node
}

// NewDocument returns a document root holding the given children.
func NewDocument(children ...*Node) *Node {
	return &Node{Kind: DocumentNode, Children: children}
}

// NewElement returns an element node.
func NewElement(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs, Children: children}
}

// NewText returns a text node.
func NewText(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// IsElement reports whether n is an element, optionally with one of the given tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Kind != ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// HasClass reports whether the class attribute contains the given class.
func (n *Node) HasClass(class string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// ElementChildren returns the direct children that are elements.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Tag: n.Tag, Data: n.Data}
	if n.Attrs != nil {
		cp.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// MergeText joins runs of sibling text nodes into one node, the shape a
// serialize-and-reparse round trip produces. It mutates n, so callers only
// use it on trees they built. Returns the number of nodes merged away.
func (n *Node) MergeText() int {
	if n == nil {
		return 0
	}
	merged := 0
	out := n.Children[:0]
	for _, c := range n.Children {
		if last := len(out) - 1; c.Kind == TextNode && last >= 0 && out[last].Kind == TextNode {
			out[last] = NewText(out[last].Data + c.Data)
			merged++
			continue
		}
		out = append(out, c)
	}
	for i := len(out); i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = out
	for _, c := range n.Children {
		merged += c.MergeText()
	}
	return merged
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Equal reports whether two trees have the same shape, tags, attributes and text.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Data != b.Data {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Attrs {
		if a.Attrs[i] != b.Attrs[i] {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
