package gleaner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/gleaner/internal/crawler"
	"github.com/jmylchreest/gleaner/internal/logger"
	"github.com/jmylchreest/gleaner/pkg/cleaner"
	"github.com/jmylchreest/gleaner/pkg/cleaner/flatten"
	"github.com/jmylchreest/gleaner/pkg/cleaner/sanitize"
	"github.com/jmylchreest/gleaner/pkg/dedupe"
	"github.com/jmylchreest/gleaner/pkg/extract/catalog"
	"github.com/jmylchreest/gleaner/pkg/extract/news"
	"github.com/jmylchreest/gleaner/pkg/extract/subsidy"
	"github.com/jmylchreest/gleaner/pkg/markup"
	"github.com/jmylchreest/gleaner/pkg/source"
)

// Store kinds.
const (
	KindCatalog = "catalog"
	KindNews    = "news"
)

// Report is the outcome of one pipeline run.
type Report[T any] struct {
	Records    []T
	Sources    []source.Result[T]
	Duplicates int
	Duration   time.Duration
}

// Failed returns the number of sources that produced an error.
func (r Report[T]) Failed() int {
	return len(source.Failed(r.Sources))
}

// Gleaner runs extraction pipelines.
type Gleaner struct {
	config Config
}

// New creates a Gleaner.
func New(opts ...Option) *Gleaner {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Gleaner{config: cfg}
}

// Close releases the fetcher.
func (g *Gleaner) Close() error {
	if g.config.Fetcher != nil {
		return g.config.Fetcher.Close()
	}
	return nil
}

// CatalogCleaner returns the cleaning chain for a catalog shape. Product
// cards keep their class markers so the extractor can find them.
func CatalogCleaner(shape catalog.Shape) cleaner.Cleaner {
	if shape == catalog.ShapeProduct {
		return cleaner.NewChain(
			sanitize.New(sanitize.PresetMarketplace()),
			flatten.New(&flatten.Config{
				ContainerTags: []string{"div"},
				KeepClasses: []string{
					catalog.ClassProductItem,
					catalog.ClassPicture,
					catalog.ClassDescription,
					catalog.ClassSalePrice,
				},
			}),
		)
	}
	return cleaner.NewChain(sanitize.New(sanitize.DefaultConfig()), flatten.New(nil))
}

// ParseCatalog cleans one document and extracts its records.
func (g *Gleaner) ParseCatalog(html string, shape catalog.Shape) ([]catalog.Record, error) {
	root, err := markup.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	cleaned, err := CatalogCleaner(shape).Clean(root)
	if err != nil {
		return nil, fmt.Errorf("failed to clean markup: %w", err)
	}
	logger.Debug("catalog document cleaned", "nodes_in", root.Count(), "nodes_out", cleaned.Count())

	ext := catalog.New(catalog.WithOrigin(g.config.Origin), catalog.WithCategory(g.config.Category))
	return ext.Extract(cleaned, shape)
}

// Catalog extracts and deduplicates catalog records from inputs (files,
// glob patterns or URLs), in input order.
func (g *Gleaner) Catalog(ctx context.Context, inputs []string, shape catalog.Shape) (*Report[catalog.Record], error) {
	start := time.Now()
	results, err := collect[catalog.Record](ctx, g, inputs, func(html string) ([]catalog.Record, error) {
		return g.ParseCatalog(html, shape)
	})
	if err != nil {
		return nil, err
	}

	agg := dedupe.New[catalog.Record]()
	if err := g.seed(ctx, KindCatalog, agg.Seed); err != nil {
		return nil, err
	}
	for _, r := range results {
		agg.AddAll(r.Records)
	}
	report := &Report[catalog.Record]{
		Records:    agg.Records(),
		Sources:    results,
		Duplicates: agg.Rejected(),
	}
	if err := g.remember(ctx, KindCatalog, agg.IDs()); err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

// NewsBatch is a set of inputs sharing one site layout.
type NewsBatch struct {
	Site   news.Site
	Inputs []string
}

// News extracts articles from every batch, keeps the first article per
// title and sorts the result newest first.
func (g *Gleaner) News(ctx context.Context, batches ...NewsBatch) (*Report[news.Record], error) {
	start := time.Now()
	agg := dedupe.New[news.Record]()
	if err := g.seed(ctx, KindNews, agg.Seed); err != nil {
		return nil, err
	}

	report := &Report[news.Record]{}
	for _, b := range batches {
		ext, err := news.New(b.Site, news.WithClock(g.config.Clock))
		if err != nil {
			return nil, err
		}
		results, err := collect[news.Record](ctx, g, b.Inputs, func(html string) ([]news.Record, error) {
			return ext.ExtractReader(strings.NewReader(html))
		})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			agg.AddAll(r.Records)
		}
		report.Sources = append(report.Sources, results...)
	}

	report.Records = agg.Records()
	news.SortByPublished(report.Records)
	report.Duplicates = agg.Rejected()
	if err := g.remember(ctx, KindNews, agg.IDs()); err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

// Subsidy extracts subsidy rows from inputs, keeping row order.
func (g *Gleaner) Subsidy(ctx context.Context, inputs []string) (*Report[subsidy.Record], error) {
	start := time.Now()
	results, err := collect[subsidy.Record](ctx, g, inputs, func(html string) ([]subsidy.Record, error) {
		return subsidy.ExtractString(html)
	})
	if err != nil {
		return nil, err
	}
	return &Report[subsidy.Record]{
		Records:  source.Records(results),
		Sources:  results,
		Duration: time.Since(start),
	}, nil
}

// Select returns the outer HTML of every element matching a CSS selector,
// for inspecting raw pages before choosing a layout.
func Select(html, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}
	var out []string
	var selErr error
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h, err := goquery.OuterHtml(s)
		if err != nil {
			selErr = err
			return false
		}
		out = append(out, h)
		return true
	})
	return out, selErr
}

// collect expands inputs into sources and runs extract on each.
func collect[T any](ctx context.Context, g *Gleaner, inputs []string, extract source.ExtractFunc[T]) ([]source.Result[T], error) {
	sources, err := source.Expand(inputs, g.config.Fetcher, g.config.FetchOptions, g.config.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	if g.config.Pagination.Enabled() {
		sources = g.paginate(ctx, sources)
	}
	logger.Info("processing sources", "inputs", len(inputs), "sources", len(sources))
	return source.Collect(ctx, sources, extract), nil
}

// paginate replaces every URL source by the pages reachable from it. A seed
// whose first page cannot be fetched is kept so the failure is reported
// with the other per-source results.
func (g *Gleaner) paginate(ctx context.Context, sources []source.Source) []source.Source {
	out := make([]source.Source, 0, len(sources))
	for _, src := range sources {
		u, ok := src.(source.URL)
		if !ok || u.Fetcher == nil {
			out = append(out, src)
			continue
		}
		pages, err := crawler.New(u.Fetcher, u.Options, g.config.Pagination).Pages(ctx, u.Address)
		if err != nil {
			logger.Warn("pagination stopped", "seed", u.Address, "pages", len(pages), "error", err)
		}
		if len(pages) == 0 {
			out = append(out, src)
			continue
		}
		for _, p := range pages {
			out = append(out, source.String{Label: p.URL, HTML: p.HTML})
		}
		logger.Debug("paginated seed", "seed", u.Address, "pages", len(pages))
	}
	return out
}

func (g *Gleaner) seed(ctx context.Context, kind string, seed func(...uint64)) error {
	if g.config.Store == nil {
		return nil
	}
	ids, err := g.config.Store.SeenIDs(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to load seen ids: %w", err)
	}
	seed(ids...)
	logger.Debug("seeded seen ids", "kind", kind, "count", len(ids))
	return nil
}

func (g *Gleaner) remember(ctx context.Context, kind string, ids []uint64) error {
	if g.config.Store == nil || len(ids) == 0 {
		return nil
	}
	added, err := g.config.Store.Remember(ctx, kind, ids)
	if err != nil {
		return fmt.Errorf("failed to remember ids: %w", err)
	}
	logger.Debug("remembered ids", "kind", kind, "new", added)
	return nil
}
