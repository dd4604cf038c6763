package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultCellWidth caps table cells so long links do not swamp a preview.
const DefaultCellWidth = 40

// TableWriter renders records as a Markdown pipe table for terminal
// previews. Columns are padded by display width, so Hangul and other wide
// characters line up.
type TableWriter struct {
	w        *bufio.Writer
	maxWidth int
	items    []any
	done     bool
}

// NewTableWriter creates a table writer. Cells wider than maxWidth are
// truncated; zero or less disables truncation.
func NewTableWriter(w io.Writer, maxWidth int) *TableWriter {
	return &TableWriter{w: bufio.NewWriter(w), maxWidth: maxWidth}
}

// Write buffers a single item.
func (w *TableWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (w *TableWriter) WriteAll(data []any) error {
	w.items = append(w.items, data...)
	return nil
}

// Flush renders the buffered items.
func (w *TableWriter) Flush() error {
	if len(w.items) == 0 {
		w.done = true
		return w.w.Flush()
	}

	headers := columns(w.items[0])
	rows := [][]string{headers}
	for i, item := range w.items {
		row, err := toRow(item)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		cells := make([]string, len(headers))
		for c, h := range headers {
			cells[c] = w.cell(row[h])
		}
		rows = append(rows, cells)
	}

	widths := make([]int, len(headers))
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	for i, row := range rows {
		w.line(row, widths)
		if i == 0 {
			sep := make([]string, len(widths))
			for j, n := range widths {
				sep[j] = strings.Repeat("-", n)
			}
			w.line(sep, widths)
		}
	}

	w.items = w.items[:0]
	w.done = true
	return w.w.Flush()
}

// Close renders the table unless Flush already did.
func (w *TableWriter) Close() error {
	if w.done && len(w.items) == 0 {
		return nil
	}
	return w.Flush()
}

func (w *TableWriter) line(cells []string, widths []int) {
	var sb strings.Builder
	sb.WriteString("|")
	for i, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(c, widths[i]))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
	_, _ = w.w.WriteString(sb.String())
}

func (w *TableWriter) cell(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = ""
	case string:
		s = x
	case json.Number:
		s = x.String()
	default:
		b, _ := json.Marshal(x)
		s = string(b)
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.Join(strings.Fields(s), " ")
	if w.maxWidth > 0 {
		s = runewidth.Truncate(s, w.maxWidth, "…")
	}
	return s
}
