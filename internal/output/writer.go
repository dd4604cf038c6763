// Package output serializes extracted records.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
	FormatTable Format = "table"
)

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single record.
	Write(data any) error

	// WriteAll outputs multiple records.
	WriteAll(data []any) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty    bool
	indent    string
	sheet     string
	cellWidth int
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithSheet names the worksheet of spreadsheet output.
func WithSheet(name string) WriterOption {
	return func(c *writerConfig) {
		c.sheet = name
	}
}

// WithCellWidth caps the display width of table cells.
func WithCellWidth(n int) WriterOption {
	return func(c *writerConfig) {
		c.cellWidth = n
	}
}

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML, FormatXLSX, FormatTable:
		return f, nil
	case "md", "markdown":
		return FormatTable, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty:    true,
		indent:    "  ",
		sheet:     "records",
		cellWidth: DefaultCellWidth,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatXLSX:
		return NewXLSXWriter(w, cfg.sheet), nil
	case FormatTable:
		return NewTableWriter(w, cfg.cellWidth), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteRecords writes records to w in one go.
func WriteRecords[T any](w io.Writer, format Format, records []T, opts ...WriterOption) error {
	wr, err := NewWriter(w, format, opts...)
	if err != nil {
		return err
	}
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r
	}
	if err := wr.WriteAll(items); err != nil {
		return err
	}
	return wr.Close()
}

// WriteFile writes records to path, creating parent directories. An empty
// format is inferred from the extension.
func WriteFile[T any](path string, format Format, records []T, opts ...WriterOption) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRecords(f, format, records, opts...); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
