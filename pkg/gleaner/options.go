// Package gleaner wires the cleaning, extraction and deduplication stages
// into ready-made pipelines for the supported record kinds.
package gleaner

import (
	"context"
	"time"

	"github.com/jmylchreest/gleaner/internal/crawler"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
)

// SeenStore persists record ids across runs.
type SeenStore interface {
	SeenIDs(ctx context.Context, kind string) ([]uint64, error)
	Remember(ctx context.Context, kind string, ids []uint64) (int, error)
}

// Config holds all pipeline configuration.
type Config struct {
	// Origin absolutizes relative catalog links; empty keeps the default.
	Origin   string
	Category string

	// Clock is the reference time for relative news timestamps.
	Clock func() time.Time

	// MaxInputBytes limits file inputs; zero means unlimited.
	MaxInputBytes uint64

	Fetcher      fetcher.Fetcher
	FetchOptions fetcher.Options

	// Pagination makes URL inputs follow their next-page links.
	Pagination crawler.Config

	Store SeenStore
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Clock: time.Now}
}

// Option configures a Gleaner.
type Option func(*Config)

// WithOrigin sets the origin for relative catalog links.
func WithOrigin(origin string) Option {
	return func(c *Config) {
		c.Origin = origin
	}
}

// WithCategory sets the category stored on catalog records.
func WithCategory(category string) Option {
	return func(c *Config) {
		c.Category = category
	}
}

// WithClock sets the reference clock for relative times.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.Clock = now
		}
	}
}

// WithMaxInputBytes limits the size of file inputs.
func WithMaxInputBytes(n uint64) Option {
	return func(c *Config) {
		c.MaxInputBytes = n
	}
}

// WithFetcher sets the fetcher used for URL inputs. The Gleaner closes it.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}

// WithFetchOptions sets per-request fetch options.
func WithFetchOptions(opts fetcher.Options) Option {
	return func(c *Config) {
		c.FetchOptions = opts
	}
}

// WithStore enables cross-run deduplication.
func WithStore(s SeenStore) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithPagination follows next-page links of URL inputs.
func WithPagination(cfg crawler.Config) Option {
	return func(c *Config) {
		c.Pagination = cfg
	}
}
