package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/jmylchreest/gleaner/pkg/fetcher"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://shop.example/list/", "https://shop.example/list"},
		{"https://shop.example/", "https://shop.example/"},
		{"https://shop.example/list#top", "https://shop.example/list"},
		{"https://shop.example/s?q=pan&page=2", "https://shop.example/s?page=2&q=pan"},
		{"/relative", ""},
		{"://bad", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestVisited(t *testing.T) {
	v := NewVisited()
	if !v.Add("https://shop.example/s?q=a&page=1") {
		t.Fatal("first Add should report true")
	}
	if v.Add("https://shop.example/s?page=1&q=a#x") {
		t.Error("equivalent URL should already be visited")
	}
	if v.Add("not a url") {
		t.Error("unparseable URL should be rejected")
	}
	if v.Len() != 1 {
		t.Errorf("Len() = %d, want 1", v.Len())
	}
}

func TestSameHost(t *testing.T) {
	if !SameHost("https://a.example/x", "https://a.example/y?p=2") {
		t.Error("same host should match")
	}
	if SameHost("https://a.example/x", "https://b.example/x") {
		t.Error("different hosts should not match")
	}
}

func TestNextPage(t *testing.T) {
	const base = "https://shop.example/s?q=pan&page=1"
	tests := []struct {
		name     string
		html     string
		selector string
		want     string
		ok       bool
	}{
		{"relative", `<a class="next" href="?q=pan&page=2">next</a>`, "a.next", "https://shop.example/s?q=pan&page=2", true},
		{"absolute", `<a class="next" href="https://shop.example/p/3">next</a>`, "a.next", "https://shop.example/p/3", true},
		{"fragment dropped", `<a class="next" href="/s?page=2#list">next</a>`, "a.next", "https://shop.example/s?page=2", true},
		{"skips disabled", `<a class="next disabled" href="/x">n</a><a class="next" href="/y">n</a>`, "a.next", "https://shop.example/y", true},
		{"skips aria disabled", `<a class="next" aria-disabled="true" href="/x">n</a>`, "a.next", "", false},
		{"skips javascript", `<a class="next" href="javascript:void(0)">n</a>`, "a.next", "", false},
		{"skips anchor", `<a class="next" href="#">n</a>`, "a.next", "", false},
		{"no match", `<a href="/y">n</a>`, "a.next", "", false},
		{"empty selector", `<a class="next" href="/y">n</a>`, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextPage(tt.html, base, tt.selector)
			if got != tt.want || ok != tt.ok {
				t.Errorf("NextPage() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

// siteFetcher serves fixed pages by URL.
type siteFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *siteFetcher) Fetch(_ context.Context, url string, _ fetcher.Options) (fetcher.Content, error) {
	f.fetched = append(f.fetched, url)
	html, ok := f.pages[url]
	if !ok {
		return fetcher.Content{URL: url}, fetcher.ErrHTTPStatus
	}
	return fetcher.Content{URL: url, HTML: html, StatusCode: 200}, nil
}

func (f *siteFetcher) Close() error { return nil }
func (f *siteFetcher) Type() string { return "site" }

func link(href string) string {
	return `<ul><li>item</li></ul><a class="next" href="` + href + `">next</a>`
}

func TestPaginator_Pages(t *testing.T) {
	const seed = "https://shop.example/s?page=1"
	site := map[string]string{
		seed:                            link("/s?page=2"),
		"https://shop.example/s?page=2": link("/s?page=3"),
		"https://shop.example/s?page=3": `<ul><li>last</li></ul>`,
	}

	tests := []struct {
		name    string
		pages   map[string]string
		config  Config
		want    int
		wantErr bool
	}{
		{"follows to the last page", site, Config{NextSelector: "a.next"}, 3, false},
		{"max pages", site, Config{NextSelector: "a.next", MaxPages: 2}, 2, false},
		{"loop ends", map[string]string{
			seed:                            link("/s?page=2"),
			"https://shop.example/s?page=2": link("/s?page=1#again"),
		}, Config{NextSelector: "a.next"}, 2, false},
		{"off host stops", map[string]string{
			seed: link("https://other.example/s?page=2"),
		}, Config{NextSelector: "a.next"}, 1, false},
		{"missing page keeps earlier pages", map[string]string{
			seed: link("/s?page=2"),
		}, Config{NextSelector: "a.next"}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &siteFetcher{pages: tt.pages}
			pages, err := New(f, fetcher.Options{}, tt.config).Pages(context.Background(), seed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Pages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(pages) != tt.want {
				t.Errorf("len(pages) = %d, want %d (fetched %v)", len(pages), tt.want, f.fetched)
			}
			for i, p := range pages {
				if p.Number != i+1 {
					t.Errorf("page %d numbered %d", i, p.Number)
				}
			}
			if tt.wantErr && !errors.Is(err, fetcher.ErrHTTPStatus) {
				t.Errorf("error should wrap the fetch error: %v", err)
			}
		})
	}
}

func TestPaginator_VisitError(t *testing.T) {
	f := &siteFetcher{pages: map[string]string{"https://a.example/": link("/2")}}
	stop := errors.New("stop")
	err := New(f, fetcher.Options{}, Config{NextSelector: "a.next"}).Walk(context.Background(), "https://a.example/", func(Page) error {
		return stop
	})
	if !errors.Is(err, stop) || len(f.fetched) != 1 {
		t.Errorf("Walk() = %v after %d fetches", err, len(f.fetched))
	}
}
