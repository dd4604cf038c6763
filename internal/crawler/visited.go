// Package crawler walks paginated listings for URL inputs.
package crawler

import (
	"net/url"
	"sync"
)

// Visited records the pages already walked so pagination loops end.
type Visited struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewVisited creates an empty set.
func NewVisited() *Visited {
	return &Visited{seen: make(map[string]bool)}
}

// Add marks rawURL visited. It reports false when the page was seen before
// or the URL cannot be parsed.
func (v *Visited) Add(rawURL string) bool {
	key := Normalize(rawURL)
	if key == "" {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[key] {
		return false
	}
	v.seen[key] = true
	return true
}

// Len returns the number of distinct pages recorded.
func (v *Visited) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// Normalize canonicalizes a page URL: the fragment and a trailing slash are
// dropped and query parameters are sorted, so ?q=x&page=2 and ?page=2&q=x
// name the same page.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	if len(u.Path) > 1 && u.Path[len(u.Path)-1] == '/' {
		u.Path = u.Path[:len(u.Path)-1]
	}
	u.RawQuery = u.Query().Encode()
	return u.String()
}

// SameHost reports whether two URLs share a host.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Host == ub.Host
}
