// Package source loads raw markup from files and URLs and runs extraction
// for each source inside its own failure boundary.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/gleaner/internal/logger"
	"github.com/jmylchreest/gleaner/pkg/fetcher"
)

var (
	// ErrEmptyInput is returned when a source holds no markup.
	ErrEmptyInput = errors.New("empty input")
	// ErrTooLarge is returned when a source exceeds its size limit.
	ErrTooLarge = errors.New("input exceeds size limit")
)

// Source yields the raw markup of one document.
type Source interface {
	// Name identifies the source in logs and results.
	Name() string

	// Load returns the document markup.
	Load(ctx context.Context) (string, error)
}

// File reads markup from a local file.
type File struct {
	Path string
	// MaxBytes limits the file size; zero means unlimited.
	MaxBytes uint64
}

// Name returns the file path.
func (f File) Name() string {
	return f.Path
}

// Load reads the file.
func (f File) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer fh.Close()

	var r io.Reader = fh
	if f.MaxBytes > 0 {
		r = io.LimitReader(fh, int64(f.MaxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	if f.MaxBytes > 0 && uint64(len(data)) > f.MaxBytes {
		return "", fmt.Errorf("%w: %s is larger than %s", ErrTooLarge, f.Path, humanize.Bytes(f.MaxBytes))
	}
	return checkEmpty(f.Path, string(data))
}

// URL fetches markup over the network.
type URL struct {
	Address string
	Fetcher fetcher.Fetcher
	Options fetcher.Options
}

// Name returns the address.
func (u URL) Name() string {
	return u.Address
}

// Load fetches the page.
func (u URL) Load(ctx context.Context) (string, error) {
	if u.Fetcher == nil {
		return "", fmt.Errorf("no fetcher configured for %s", u.Address)
	}
	content, err := u.Fetcher.Fetch(ctx, u.Address, u.Options)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", u.Address, err)
	}
	return checkEmpty(u.Address, content.HTML)
}

// String serves in-memory markup, e.g. stdin.
type String struct {
	Label string
	HTML  string
}

// Name returns the label.
func (s String) Name() string {
	return s.Label
}

// Load returns the markup.
func (s String) Load(context.Context) (string, error) {
	return checkEmpty(s.Label, s.HTML)
}

func checkEmpty(name, markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyInput, name)
	}
	return markup, nil
}

// IsURL reports whether input names a remote document.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Expand turns inputs (paths, glob patterns or URLs) into sources. Glob
// matches are sorted naturally so catalog_2 precedes catalog_10. Paths that
// do not exist are skipped with a log line.
func Expand(inputs []string, f fetcher.Fetcher, opts fetcher.Options, maxBytes uint64) ([]Source, error) {
	var out []Source
	for _, in := range inputs {
		if IsURL(in) {
			out = append(out, URL{Address: in, Fetcher: f, Options: opts})
			continue
		}
		if strings.ContainsAny(in, "*?[") {
			matches, err := filepath.Glob(in)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", in, err)
			}
			if len(matches) == 0 {
				logger.Info("pattern matched no files", "pattern", in)
			}
			sort.SliceStable(matches, func(i, j int) bool {
				return naturalLess(matches[i], matches[j])
			})
			for _, m := range matches {
				out = append(out, File{Path: m, MaxBytes: maxBytes})
			}
			continue
		}
		if _, err := os.Stat(in); err != nil {
			logger.Info("skipping missing input", "path", in)
			continue
		}
		out = append(out, File{Path: in, MaxBytes: maxBytes})
	}
	return out, nil
}

// naturalLess orders strings comparing embedded digit runs numerically.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		if da && db {
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
