package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NextPage returns the absolute URL of the first element matching selector
// that carries a usable href. Fragment-only and javascript: links are
// skipped, as are disabled pagination buttons.
func NextPage(html, baseURL, selector string) (string, bool) {
	if selector == "" {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}

	var next string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("disabled") || s.AttrOr("aria-disabled", "") == "true" {
			return true
		}
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		next = abs.String()
		return false
	})
	return next, next != ""
}
