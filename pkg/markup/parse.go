package markup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// bodyContext makes the HTML5 parser treat input as body content, so both
// full documents and bare fragments such as "<li>..</li>" produce the same
// shape of tree with no synthesized html/head/body wrappers.
var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Parse builds a tree from raw markup. Malformed markup never fails: the
// HTML5 parser recovers and whatever structure results is returned.
// Comments and doctypes are dropped.
func Parse(markup string) (*Node, error) {
	return ParseReader(strings.NewReader(markup))
}

// ParseReader is Parse over an io.Reader.
func ParseReader(r io.Reader) (*Node, error) {
	nodes, err := html.ParseFragment(r, bodyContext)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	doc := NewDocument()
	for _, hn := range nodes {
		if n := fromHTML(hn); n != nil {
			doc.Children = append(doc.Children, n)
		}
	}
	return doc, nil
}

// fromHTML converts an x/net/html node into a markup node. Comments,
// doctypes and other node types yield nil.
func fromHTML(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return NewText(hn.Data)
	case html.ElementNode:
		el := &Node{Kind: ElementNode, Tag: strings.ToLower(hn.Data)}
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			el.Attrs = append(el.Attrs, Attr{Key: key, Val: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if n := fromHTML(c); n != nil {
				el.Children = append(el.Children, n)
			}
		}
		return el
	default:
		return nil
	}
}

// ToHTML converts a markup tree into an x/net/html tree, e.g. for use with
// goquery.NewDocumentFromNode.
func ToHTML(n *Node) *html.Node {
	if n == nil {
		return nil
	}
	var hn *html.Node
	switch n.Kind {
	case DocumentNode:
		hn = &html.Node{Type: html.DocumentNode}
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	default:
		hn = &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
		for _, a := range n.Attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	}
	for _, c := range n.Children {
		hn.AppendChild(ToHTML(c))
	}
	return hn
}

// Render writes the HTML serialization of n. A document renders as the
// concatenation of its children.
func Render(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	if n.Kind == DocumentNode {
		for _, c := range n.Children {
			if err := html.Render(w, ToHTML(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, ToHTML(n))
}

// String returns the HTML serialization of n.
func (n *Node) String() string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}
