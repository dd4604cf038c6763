package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/gleaner/internal/logger"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
)

// Config controls pagination.
type Config struct {
	// NextSelector matches the "next page" link. Empty disables pagination.
	NextSelector string `mapstructure:"next" yaml:"next"`

	// MaxPages caps the pages walked per seed, the seed included (0 = unlimited).
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`

	// Delay is waited between page fetches.
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`

	// AllowOffHost follows next links that leave the seed's host.
	AllowOffHost bool `mapstructure:"allow_off_host" yaml:"allow_off_host"`
}

// Enabled reports whether pagination is configured.
func (c Config) Enabled() bool {
	return c.NextSelector != ""
}

// Page is one fetched listing page.
type Page struct {
	Number int
	URL    string
	HTML   string
}

// Paginator follows next links from a seed page.
type Paginator struct {
	fetcher fetcher.Fetcher
	opts    fetcher.Options
	config  Config
}

// New creates a Paginator.
func New(f fetcher.Fetcher, opts fetcher.Options, cfg Config) *Paginator {
	return &Paginator{fetcher: f, opts: opts, config: cfg}
}

// Walk fetches seed and every following page, calling visit for each in
// order. It stops at the last page, at MaxPages, on a page seen before, or
// on the first fetch or visit error, which it returns.
func (p *Paginator) Walk(ctx context.Context, seed string, visit func(Page) error) error {
	visited := NewVisited()
	current := seed

	for n := 1; ; n++ {
		if !visited.Add(current) {
			logger.Debug("pagination loop detected", "url", current)
			return nil
		}
		if n > 1 && p.config.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.config.Delay):
			}
		}

		content, err := p.fetcher.Fetch(ctx, current, p.opts)
		if err != nil {
			return fmt.Errorf("page %d (%s): %w", n, current, err)
		}
		if err := visit(Page{Number: n, URL: current, HTML: content.HTML}); err != nil {
			return err
		}
		logger.Debug("page fetched", "page", n, "url", current)

		if p.config.MaxPages > 0 && n >= p.config.MaxPages {
			logger.Debug("pagination reached max pages", "max_pages", p.config.MaxPages)
			return nil
		}
		next, ok := NextPage(content.HTML, coalesceURL(content.URL, current), p.config.NextSelector)
		if !ok {
			return nil
		}
		if !p.config.AllowOffHost && !SameHost(seed, next) {
			logger.Debug("pagination left seed host", "seed", seed, "next", next)
			return nil
		}
		current = next
	}
}

// Pages collects every page Walk visits. On error the pages fetched before
// it are returned with the error.
func (p *Paginator) Pages(ctx context.Context, seed string) ([]Page, error) {
	var pages []Page
	err := p.Walk(ctx, seed, func(pg Page) error {
		pages = append(pages, pg)
		return nil
	})
	return pages, err
}

func coalesceURL(final, requested string) string {
	if final != "" {
		return final
	}
	return requested
}
