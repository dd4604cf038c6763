// Package subsidy extracts regional subsidy quota rows from an HTML table.
package subsidy

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/gleaner/internal/htmltext"
)

// Column positions within a row.
const (
	colLocation1 = 0
	colLocation2 = 1
	colTotal     = 5
	colApplied   = 7
	colEtc       = 9

	// MinCells is the smallest row that carries a quota.
	MinCells = 8
)

var reNumber = regexp.MustCompile(`\d[\d,]*`)

// Record is one region's quota.
type Record struct {
	Location1  string `json:"locationName1" yaml:"locationName1"`
	Location2  string `json:"locationName2" yaml:"locationName2"`
	TotalCount int    `json:"totalCount" yaml:"totalCount"`
	ApplyCount int    `json:"applyCount" yaml:"applyCount"`
	Etc        string `json:"etc" yaml:"etc"`
}

// ExtractReader parses r and extracts its rows. Bare row markup without an
// enclosing table is accepted.
func ExtractReader(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read subsidy table: %w", err)
	}
	return ExtractString(string(raw))
}

// ExtractString is ExtractReader for in-memory markup.
func ExtractString(s string) ([]Record, error) {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "<tr") && !strings.Contains(lower, "<table") {
		// The HTML parser drops rows found outside a table.
		s = "<table>" + s + "</table>"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("failed to parse subsidy table: %w", err)
	}
	return Extract(doc.Selection), nil
}

// Extract returns one record per row of the first tbody (or of the whole
// document when there is none) having at least MinCells cells.
func Extract(root *goquery.Selection) []Record {
	scope := root.Find("tbody").First()
	if scope.Length() == 0 {
		scope = root
	}

	var records []Record
	scope.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < MinCells {
			return
		}
		cell := func(i int, sep string) string {
			return htmltext.Stripped(tds.Eq(i), sep)
		}
		rec := Record{
			Location1:  cell(colLocation1, ""),
			Location2:  cell(colLocation2, ""),
			TotalCount: FirstNumber(cell(colTotal, " ")),
			ApplyCount: FirstNumber(cell(colApplied, " ")),
		}
		if tds.Length() > colEtc {
			rec.Etc = cell(colEtc, " ")
		}
		records = append(records, rec)
	})
	return records
}

// FirstNumber returns the first digit run in s with thousands separators
// removed, or 0 when there is none.
func FirstNumber(s string) int {
	m := reNumber.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
