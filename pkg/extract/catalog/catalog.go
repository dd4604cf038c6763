// Package catalog extracts product records from cleaned marketplace listings.
//
// Two layouts are supported:
//
//   - ShapeList: every <li> is an item; link, image, price, discount and
//     rating are found heuristically inside it.
//   - ShapeProduct: every <div class="product-item"> is an item with
//     dedicated picture, description and sale-price sub-containers.
package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmylchreest/gleaner/pkg/identity"
	"github.com/jmylchreest/gleaner/pkg/markup"
)

// Shape names a supported item layout.
type Shape string

const (
	ShapeList    Shape = "list"
	ShapeProduct Shape = "product"
)

// ParseShape converts a configuration value into a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShapeList, "a":
		return ShapeList, nil
	case ShapeProduct, "b":
		return ShapeProduct, nil
	default:
		return "", fmt.Errorf("unknown catalog shape: %q", s)
	}
}

const (
	// DefaultOrigin prefixes relative item links.
	DefaultOrigin = "https://www.coupang.com"

	// Missing is stored in list-item fields that could not be found.
	Missing = "N/A"

	// Product-card layout markers.
	ClassProductItem = "product-item"
	ClassPicture     = "product-picture"
	ClassDescription = "product-description"
	ClassSalePrice   = "sale-price"
)

// Record is one extracted product.
type Record struct {
	ID       uint64   `json:"id" yaml:"id"`
	Thumb    *string  `json:"thumb" yaml:"thumb"`
	Name     *string  `json:"name" yaml:"name"`
	Price    *string  `json:"price" yaml:"price"`
	Link     *string  `json:"link" yaml:"link"`
	Category string   `json:"category" yaml:"category"`
	Rating   *float64 `json:"rating" yaml:"rating"`

	// Discount is extracted from list items but is not part of the
	// serialized record.
	Discount *string `json:"-" yaml:"-"`
}

// Identity implements dedupe.Identified.
func (r Record) Identity() uint64 {
	return r.ID
}

// Extractor derives records from a cleaned tree.
type Extractor struct {
	origin   string
	category string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOrigin sets the site origin used to absolutize relative links.
func WithOrigin(origin string) Option {
	return func(e *Extractor) {
		if origin != "" {
			e.origin = strings.TrimRight(origin, "/")
		}
	}
}

// WithCategory sets the category stored on every record.
func WithCategory(category string) Option {
	return func(e *Extractor) {
		e.category = category
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{origin: DefaultOrigin}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract dispatches on shape.
func (e *Extractor) Extract(root *markup.Node, shape Shape) ([]Record, error) {
	switch shape {
	case ShapeList, "":
		return e.ExtractListItems(root), nil
	case ShapeProduct:
		return e.ExtractProductItems(root), nil
	default:
		return nil, fmt.Errorf("unknown catalog shape: %q", shape)
	}
}

// ExtractListItems returns one record per <li>, in document order. Items
// are emitted even when no name is found.
func (e *Extractor) ExtractListItems(root *markup.Node) []Record {
	if root == nil {
		return nil
	}
	items := root.FindAll(markup.Tag("li"))
	records := make([]Record, 0, len(items))
	for _, li := range items {
		records = append(records, e.listItem(li))
	}
	return records
}

func (e *Extractor) listItem(li *markup.Node) Record {
	link := Missing
	if a := li.Find(markup.Tag("a")); a != nil {
		if href, ok := a.Attr("href"); ok {
			link = e.absolute(href)
		}
	}

	thumb, name := Missing, Missing
	if img := li.Find(markup.Tag("img")); img != nil {
		if src, ok := img.Attr("src"); ok {
			thumb = src
		}
		if alt, ok := img.Attr("alt"); ok {
			name = alt
		}
	}

	texts := li.Texts()
	rec := Record{
		ID:       identity.Hash(name),
		Thumb:    &thumb,
		Name:     &name,
		Link:     &link,
		Category: e.category,
	}
	if d, ok := FirstDiscount(texts); ok {
		rec.Discount = &d
	}
	if p, ok := FirstPrice(texts); ok {
		rec.Price = &p
	}

	var labels []string
	for _, n := range li.FindAll(markup.WithAttr("aria-label")) {
		v, _ := n.Attr("aria-label")
		labels = append(labels, v)
	}
	if r, ok := FirstRating(labels); ok {
		rec.Rating = &r
	}
	return rec
}

// ExtractProductItems returns one record per product card with a name, in
// document order. Cards without a name are skipped.
func (e *Extractor) ExtractProductItems(root *markup.Node) []Record {
	if root == nil {
		return nil
	}
	items := root.FindAll(markup.TagWithClass("div", ClassProductItem))
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := e.productItem(item); ok {
			records = append(records, rec)
		}
	}
	return records
}

func (e *Extractor) productItem(item *markup.Node) (Record, bool) {
	name := ""
	if desc := item.Find(markup.TagWithClass("div", ClassDescription)); desc != nil {
		name = desc.StrippedText("")
	}
	if name == "" {
		return Record{}, false
	}

	thumb := ""
	if pic := item.Find(markup.TagWithClass("div", ClassPicture)); pic != nil {
		if img := pic.Find(markup.Tag("img")); img != nil {
			thumb, _ = img.Attr("src")
		}
	}

	price := "0"
	if sale := item.Find(markup.TagWithClass("div", ClassSalePrice)); sale != nil {
		if p, ok := PriceDigits(sale.StrippedText("")); ok {
			price = p
		}
	}

	link := ""
	return Record{
		ID:       identity.Hash(name, price),
		Thumb:    &thumb,
		Name:     &name,
		Price:    &price,
		Link:     &link,
		Category: e.category,
	}, true
}

// absolute prefixes relative hrefs with the origin as plain text; hrefs
// with a scheme are kept. The href is not escaped or resolved.
func (e *Extractor) absolute(href string) string {
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return e.origin + href
}
