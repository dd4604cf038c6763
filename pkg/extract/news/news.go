// Package news extracts article records from news search result pages.
package news

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/gleaner/internal/htmltext"
	"github.com/jmylchreest/gleaner/pkg/dedupe"
	"github.com/jmylchreest/gleaner/pkg/identity"
	"github.com/jmylchreest/gleaner/pkg/reltime"
)

// Site selects a result page layout.
type Site string

const (
	SiteNaver     Site = "naver"
	SiteInvesting Site = "investing"
)

// Source labels stored on records.
const (
	SourceNaver     = "Naver"
	SourceInvesting = "Investing.com"
)

// InvestingOrigin prefixes the relative article links of the Investing layout.
const InvestingOrigin = "https://kr.investing.com"

// ParseSite converts a configuration value into a Site.
func ParseSite(s string) (Site, error) {
	switch Site(strings.ToLower(strings.TrimSpace(s))) {
	case SiteNaver:
		return SiteNaver, nil
	case SiteInvesting, "investing.com":
		return SiteInvesting, nil
	default:
		return "", fmt.Errorf("unknown news site: %q", s)
	}
}

// Record is one article.
type Record struct {
	ID          uint64  `json:"-" yaml:"-"`
	Source      string  `json:"source" yaml:"source"`
	Title       string  `json:"title" yaml:"title"`
	Link        string  `json:"link" yaml:"link"`
	Description *string `json:"description" yaml:"description"`
	Thumbnail   *string `json:"thumbnail" yaml:"thumbnail"`
	PublishedAt *string `json:"published_at" yaml:"published_at"`
}

// Identity implements dedupe.Identified. Articles are identified by title.
func (r Record) Identity() uint64 {
	return r.ID
}

// Extractor reads one site layout.
type Extractor struct {
	site   Site
	origin string
	times  *reltime.Normalizer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOrigin overrides the origin used for relative links.
func WithOrigin(origin string) Option {
	return func(e *Extractor) {
		if origin != "" {
			e.origin = strings.TrimRight(origin, "/")
		}
	}
}

// WithClock sets the reference clock for relative publication times.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.times = &reltime.Normalizer{Now: now}
		}
	}
}

// New creates an Extractor for site.
func New(site Site, opts ...Option) (*Extractor, error) {
	e := &Extractor{site: site, times: reltime.NewNormalizer()}
	switch site {
	case SiteNaver:
	case SiteInvesting:
		e.origin = InvestingOrigin
	default:
		return nil, fmt.Errorf("unknown news site: %q", site)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Site returns the layout this extractor reads.
func (e *Extractor) Site() Site {
	return e.site
}

// ExtractReader parses r and extracts its articles.
func (e *Extractor) ExtractReader(r io.Reader) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news page: %w", err)
	}
	return e.Extract(doc.Selection), nil
}

// Extract returns the articles below root in document order. Items without
// a title or link are skipped.
func (e *Extractor) Extract(root *goquery.Selection) []Record {
	if e.site == SiteInvesting {
		return e.investing(root)
	}
	return e.naver(root)
}

func (e *Extractor) naver(root *goquery.Selection) []Record {
	var records []Record
	root.Find("ul.list_news div.sds-comps-vertical-layout").Each(func(_ int, item *goquery.Selection) {
		tit := item.Find(`a[data-heatmap-target=".tit"]`).First()
		title := htmltext.Stripped(tit, "")
		link, _ := tit.Attr("href")
		if title == "" || link == "" {
			return
		}

		rec := Record{Source: SourceNaver, Title: title, Link: e.absolute(link)}
		if body := item.Find(`a[data-heatmap-target=".body"]`).First(); body.Length() > 0 {
			d := htmltext.Stripped(body, " ")
			rec.Description = &d
		}
		if src, ok := item.Find(`a[data-heatmap-target=".img"] img`).First().Attr("src"); ok {
			rec.Thumbnail = &src
		}

		item.Find(".sds-comps-profile-info-subtext span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			txt := htmltext.Stripped(s, "")
			if !strings.Contains(txt, "전") {
				return true
			}
			rec.PublishedAt = e.published(txt)
			return false
		})

		rec.ID = identity.Hash(rec.Title)
		records = append(records, rec)
	})
	return records
}

func (e *Extractor) investing(root *goquery.Selection) []Record {
	articles := root.Find(".articleItem")
	if articles.Length() == 0 {
		articles = root.Find("div.largeTitle")
	}

	var records []Record
	articles.Each(func(_ int, article *goquery.Selection) {
		a := article.Find("a.title").First()
		if a.Length() == 0 {
			return
		}
		title := htmltext.Stripped(a, "")
		href, _ := a.Attr("href")
		link := e.absolute(href)
		if title == "" || link == "" {
			return
		}

		thumb, _ := htmltext.FirstAttr(article.Find("a.img img").First(), "src", "data-src", "data-original")
		desc := htmltext.Stripped(article.Find("p.js-news-item-content").First(), " ")
		date := htmltext.Stripped(article.Find("time.date").First(), "")

		records = append(records, Record{
			ID:          identity.Hash(title),
			Source:      SourceInvesting,
			Title:       title,
			Link:        link,
			Description: &desc,
			Thumbnail:   &thumb,
			PublishedAt: e.published(date),
		})
	})
	return records
}

func (e *Extractor) published(token string) *string {
	v := e.times.Normalize(token)
	if v == "" {
		return nil
	}
	return &v
}

// absolute prefixes relative hrefs with the origin when one is set.
func (e *Extractor) absolute(href string) string {
	if e.origin == "" {
		return href
	}
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return e.origin + href
}

// Merge combines batches, keeps the first article per title and orders the
// result newest first.
func Merge(batches ...[]Record) []Record {
	agg := dedupe.New[Record]()
	for _, b := range batches {
		agg.AddAll(b)
	}
	out := agg.Records()
	SortByPublished(out)
	return out
}

// SortByPublished sorts records by published_at descending. Missing values
// sort as the empty string; ties keep their order.
func SortByPublished(records []Record) {
	key := func(r Record) string {
		if r.PublishedAt == nil {
			return ""
		}
		return *r.PublishedAt
	}
	sort.SliceStable(records, func(i, j int) bool {
		return key(records[i]) > key(records[j])
	})
}
