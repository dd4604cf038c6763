package markup

import "strings"

// Matcher selects nodes during a search.
type Matcher func(*Node) bool

// Tag matches elements with one of the given tags.
func Tag(tags ...string) Matcher {
	return func(n *Node) bool {
		return n.IsElement(tags...)
	}
}

// WithAttr matches elements carrying the named attribute.
func WithAttr(key string) Matcher {
	return func(n *Node) bool {
		return n.IsElement() && n.HasAttr(key)
	}
}

// TagWithClass matches elements of the given tag carrying the class.
func TagWithClass(tag, class string) Matcher {
	return func(n *Node) bool {
		return n.IsElement(tag) && n.HasClass(class)
	}
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindAll returns every descendant of n (n excluded) matching m, in document order.
func (n *Node) FindAll(m Matcher) []*Node {
	var out []*Node
	for _, c := range n.Children {
		c.Walk(func(d *Node) bool {
			if m(d) {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Find returns the first descendant of n matching m, or nil.
func (n *Node) Find(m Matcher) *Node {
	for _, c := range n.Children {
		if found := c.findSelf(m); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) findSelf(m Matcher) *Node {
	if m(n) {
		return n
	}
	for _, c := range n.Children {
		if found := c.findSelf(m); found != nil {
			return found
		}
	}
	return nil
}

// Texts returns the content of every descendant text node in document order.
func (n *Node) Texts() []string {
	var out []string
	n.Walk(func(d *Node) bool {
		if d.Kind == TextNode {
			out = append(out, d.Data)
		}
		return true
	})
	return out
}

// Text returns the raw concatenation of all descendant text.
func (n *Node) Text() string {
	return strings.Join(n.Texts(), "")
}

// StrippedText trims every descendant text node, drops the empty ones and
// joins the rest with sep.
func (n *Node) StrippedText(sep string) string {
	var parts []string
	for _, t := range n.Texts() {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

// HasText reports whether any descendant text node holds non-whitespace.
func (n *Node) HasText() bool {
	for _, t := range n.Texts() {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

// HasElementDescendant reports whether n has any element below it.
func (n *Node) HasElementDescendant() bool {
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			return true
		}
	}
	return false
}
