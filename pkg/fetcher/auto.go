package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/gleaner/internal/logger"
)

// AutoFetcher fetches statically first and falls back to the browser when
// the static result is blocked or looks like an unrendered app shell.
type AutoFetcher struct {
	static  Fetcher
	dynamic Fetcher
}

// NewAuto creates a fetcher that picks static or dynamic per page.
func NewAuto(cfg Config) (*AutoFetcher, error) {
	dynamic, err := NewDynamic(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic fetcher: %w", err)
	}
	return &AutoFetcher{static: NewStatic(cfg), dynamic: dynamic}, nil
}

// Fetch tries static first, then falls back to dynamic if needed.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts Options) (Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	switch {
	case err == nil && !needsJavaScript(content):
		return content, nil
	case err != nil && errors.Is(err, ErrHTTPStatus) && content.StatusCode == 404:
		return content, err
	}
	logger.Debug("falling back to dynamic fetch", "url", url, "static_error", err)
	return f.dynamic.Fetch(ctx, url, opts)
}

// Close releases all fetcher resources.
func (f *AutoFetcher) Close() error {
	return errors.Join(f.static.Close(), f.dynamic.Close())
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}
