package source

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/gleaner/internal/logger"
)

// ExtractFunc turns one document's markup into records.
type ExtractFunc[T any] func(markup string) ([]T, error)

// Result is the outcome of one source. A failed source has Err set and no
// records.
type Result[T any] struct {
	Source   string
	Records  []T
	Err      error
	Duration time.Duration
}

// Collect loads and extracts every source in order. A failure in one source
// (an error or a panic) is logged and recorded in its Result; later sources
// still run. Collect stops early only when ctx is cancelled.
func Collect[T any](ctx context.Context, sources []Source, extract ExtractFunc[T]) []Result[T] {
	results := make([]Result[T], 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			results = append(results, Result[T]{Source: src.Name(), Err: err})
			continue
		}
		start := time.Now()
		res := run(ctx, src, extract)
		res.Duration = time.Since(start)
		if res.Err != nil {
			logger.Warn("source failed", "source", res.Source, "error", res.Err)
		} else {
			logger.Debug("source extracted", "source", res.Source, "records", len(res.Records), "duration", res.Duration)
		}
		results = append(results, res)
	}
	return results
}

func run[T any](ctx context.Context, src Source, extract ExtractFunc[T]) (res Result[T]) {
	res.Source = src.Name()
	defer func() {
		if r := recover(); r != nil {
			res.Records = nil
			res.Err = fmt.Errorf("panic while processing %s: %v", res.Source, r)
		}
	}()

	markup, err := src.Load(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	logger.Debug("source loaded", "source", res.Source, "size", humanize.Bytes(uint64(len(markup))))

	records, err := extract(markup)
	if err != nil {
		res.Err = fmt.Errorf("failed to extract %s: %w", res.Source, err)
		return res
	}
	res.Records = records
	return res
}

// Records concatenates the records of all results in order.
func Records[T any](results []Result[T]) []T {
	var out []T
	for _, r := range results {
		out = append(out, r.Records...)
	}
	return out
}

// Failed returns the results that carry an error.
func Failed[T any](results []Result[T]) []Result[T] {
	var out []Result[T]
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
