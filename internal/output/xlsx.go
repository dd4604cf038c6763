package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes records as rows of one worksheet. Columns follow the
// JSON field names of the first record; nested values are written as JSON.
type XLSXWriter struct {
	w     io.Writer
	sheet string
	items []any
	done  bool
}

// NewXLSXWriter creates a spreadsheet writer.
func NewXLSXWriter(w io.Writer, sheet string) *XLSXWriter {
	if sheet == "" {
		sheet = "records"
	}
	return &XLSXWriter{w: w, sheet: sheet}
}

// Write buffers a single item.
func (w *XLSXWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (w *XLSXWriter) WriteAll(data []any) error {
	w.items = append(w.items, data...)
	return nil
}

// Flush writes the workbook.
func (w *XLSXWriter) Flush() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	var headers []string
	if len(w.items) > 0 {
		headers = columns(w.items[0])
	}
	for i, h := range headers {
		if err := w.setCell(f, i+1, 1, h); err != nil {
			return fmt.Errorf("header %q: %w", h, err)
		}
	}

	for i, item := range w.items {
		row, err := toRow(item)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		for col, h := range headers {
			if err := w.setCell(f, col+1, i+2, cellValue(row[h])); err != nil {
				return fmt.Errorf("record %d, column %q: %w", i, h, err)
			}
		}
	}

	if _, err := f.WriteTo(w.w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	w.items = w.items[:0]
	w.done = true
	return nil
}

func (w *XLSXWriter) setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(w.sheet, cell, v)
}

// Close writes the workbook unless Flush already did.
func (w *XLSXWriter) Close() error {
	if w.done && len(w.items) == 0 {
		return nil
	}
	return w.Flush()
}

// columns lists the JSON names of a struct's serialized fields in
// declaration order. Other values fall back to sorted keys.
func columns(v any) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		row, err := toRow(v)
		if err != nil {
			return nil
		}
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}

	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		out = append(out, name)
	}
	return out
}

func toRow(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	// Keep 64-bit ids exact.
	dec.UseNumber()
	var row map[string]any
	if err := dec.Decode(&row); err != nil {
		return nil, fmt.Errorf("record is not an object: %w", err)
	}
	return row, nil
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		if n, err := x.Int64(); err == nil && n < 1<<53 && n > -(1<<53) {
			return n
		}
		if f, err := x.Float64(); err == nil && strings.ContainsAny(x.String(), ".eE") {
			return f
		}
		return x.String()
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return x
	}
}
