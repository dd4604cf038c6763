package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/gleaner/internal/logger"
	"github.com/jmylchreest/gleaner/internal/output"
	"github.com/jmylchreest/gleaner/internal/store"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
	"github.com/jmylchreest/gleaner/pkg/gleaner"
	"github.com/jmylchreest/gleaner/pkg/source"
)

// pipelineOptions overrides the process settings for one run.
type pipelineOptions struct {
	FetchMode string
	Store     string
	Origin    string
	Category  string
	Next      string
	MaxPages  int
}

// openPipeline builds a Gleaner from the process settings and o. The
// returned cleanup closes the fetcher and the store.
func openPipeline(o pipelineOptions) (*gleaner.Gleaner, func(), error) {
	mode := fetcher.Mode(firstNonEmpty(o.FetchMode, settings.FetchMode))
	f, err := fetcher.New(mode, settings.Fetch)
	if err != nil {
		return nil, nil, err
	}

	maxBytes, err := settings.MaxInputBytes()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	opts := []gleaner.Option{
		gleaner.WithFetcher(f),
		gleaner.WithMaxInputBytes(maxBytes),
		gleaner.WithOrigin(o.Origin),
		gleaner.WithCategory(o.Category),
	}

	pagination := settings.Pagination
	if o.Next != "" {
		pagination.NextSelector = o.Next
	}
	if o.MaxPages > 0 {
		pagination.MaxPages = o.MaxPages
	}
	if pagination.Enabled() {
		opts = append(opts, gleaner.WithPagination(pagination))
		logger.Debug("pagination enabled", "next", pagination.NextSelector, "max_pages", pagination.MaxPages)
	}

	var db *store.SQLite
	if path := firstNonEmpty(o.Store, settings.Store); path != "" {
		db, err = store.Open(path)
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}
		opts = append(opts, gleaner.WithStore(db))
		logger.Debug("using seen-id store", "path", path)
	}

	g := gleaner.New(opts...)
	logger.Debug("pipeline ready", "fetch_mode", f.Type(), "max_input", humanSize(maxBytes))

	cleanup := func() {
		if err := g.Close(); err != nil {
			logger.Warn("failed to close fetcher", "error", err)
		}
		if db != nil {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close store", "error", err)
			}
		}
	}
	return g, cleanup, nil
}

// writeOutput writes records to path, or stdout when path is empty. An
// empty format is taken from the path extension.
func writeOutput[T any](path, format, sheet string, records []T) error {
	f := output.FormatJSON
	switch {
	case format != "":
		parsed, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		f = parsed
	case path != "":
		f = output.FormatFromPath(path)
	case settings.Format != "":
		parsed, err := output.ParseFormat(settings.Format)
		if err != nil {
			return err
		}
		f = parsed
	}

	if path == "" {
		return output.WriteRecords(os.Stdout, f, records, output.WithSheet(sheet))
	}
	if err := output.WriteFile(path, f, records, output.WithSheet(sheet)); err != nil {
		return err
	}
	if st, err := os.Stat(path); err == nil {
		logInfo("wrote %d records to %s (%s)", len(records), path, humanize.Bytes(uint64(st.Size())))
	}
	return nil
}

// outputFlags returns the --output and --format values of cmd.
func outputFlags(cmd *cobra.Command) (path, format string) {
	path, _ = cmd.Flags().GetString("output")
	format, _ = cmd.Flags().GetString("format")
	return path, format
}

// summarize logs the outcome of a report and fails when every source failed.
func summarize[T any](kind string, r *gleaner.Report[T]) error {
	failed := source.Failed(r.Sources)
	for _, res := range failed {
		logError("%s: %v", res.Source, res.Err)
	}
	logger.Info("extraction finished",
		"kind", kind,
		"records", len(r.Records),
		"sources", len(r.Sources),
		"duplicates", r.Duplicates,
		"failed", len(failed),
		"duration", r.Duration,
	)
	logInfo("%s: %d records from %d sources (%d duplicates, %d failed) in %s",
		kind, len(r.Records), len(r.Sources), r.Duplicates, len(failed), r.Duration.Round(time.Millisecond))

	if len(r.Sources) > 0 && len(failed) == len(r.Sources) {
		return fmt.Errorf("all %d sources failed", len(failed))
	}
	return nil
}

func humanSize(n uint64) string {
	if n == 0 {
		return "unlimited"
	}
	return humanize.Bytes(n)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
