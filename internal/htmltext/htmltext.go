// Package htmltext collects text from goquery selections the way the
// extractors compare it: every descendant text node trimmed, empty ones
// dropped, the rest joined with a separator.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Stripped returns the stripped text of every node in sel joined with sep.
func Stripped(sel *goquery.Selection, sep string) string {
	if sel == nil {
		return ""
	}
	var parts []string
	for _, n := range sel.Nodes {
		collect(n, &parts)
	}
	return strings.Join(parts, sep)
}

func collect(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, parts)
	}
}

// FirstAttr returns the first non-empty value among the named attributes of
// the first node in sel.
func FirstAttr(sel *goquery.Selection, names ...string) (string, bool) {
	if sel == nil || sel.Length() == 0 {
		return "", false
	}
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
