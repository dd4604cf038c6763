// Package sanitize strips presentation-only markup from a tree: decorative
// badge elements, structural noise tags, tracking/presentation attributes
// and empty wrapper containers.
package sanitize

import "strings"

// Marker identifies a decorative element by one of its attributes.
//
// A marker matches an element when the element has Attr and, if set, its tag
// equals Tag, its value equals Equals and its value contains Contains.
type Marker struct {
	Tag      string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Attr     string `json:"attr" yaml:"attr" validate:"required"`
	Equals   string `json:"equals,omitempty" yaml:"equals,omitempty"`
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty"`
}

// Matches reports whether the marker applies to an element with the given
// tag and attribute lookup.
func (m Marker) Matches(tag string, attr func(string) (string, bool)) bool {
	if m.Tag != "" && m.Tag != tag {
		return false
	}
	val, ok := attr(m.Attr)
	if !ok {
		return false
	}
	if m.Equals != "" && val != m.Equals {
		return false
	}
	if m.Contains != "" && !strings.Contains(val, m.Contains) {
		return false
	}
	return true
}

// Config defines the sanitizer's deny lists.
type Config struct {
	// DecorativeMarkers remove the matching element with its whole subtree.
	DecorativeMarkers []Marker `json:"decorative_markers" yaml:"decorative_markers"`

	// NoiseTags remove every element with one of these tags, subtree included.
	NoiseTags []string `json:"noise_tags" yaml:"noise_tags"`

	// StripAttributes are removed from every remaining element.
	StripAttributes []string `json:"strip_attributes" yaml:"strip_attributes"`

	// StripEmptyContainers removes containers with no text and no element
	// descendants. Evaluated bottom-up, so a container emptied by the removal
	// of its children goes in the same pass.
	StripEmptyContainers bool `json:"strip_empty_containers" yaml:"strip_empty_containers"`

	// EmptyContainerTags are the tags considered by StripEmptyContainers.
	EmptyContainerTags []string `json:"empty_container_tags" yaml:"empty_container_tags"`

	// StripNewlines removes \n and \r from text and attribute values.
	StripNewlines bool `json:"strip_newlines" yaml:"strip_newlines"`
}

// DefaultConfig returns the configuration for list-item (shape A) catalog pages.
func DefaultConfig() *Config {
	return &Config{
		DecorativeMarkers: []Marker{
			{Attr: "data-badge-id", Equals: "ROCKET"},
			{Attr: "data-badge-id", Equals: "ROCKET_MERCHANT"},
			{Tag: "img", Attr: "src", Contains: "/image/badges/cashback"},
		},
		NoiseTags: []string{"svg", "path", "g", "span", "del"},
		StripAttributes: []string{
			"class", "style", "target",
			"data-adsplatform", "data-id", "data-testid",
		},
		StripEmptyContainers: true,
		EmptyContainerTags:   []string{"div"},
		StripNewlines:        true,
	}
}

// PresetMarketplace returns the configuration for product-card (shape B)
// pages. Classes are kept because the extractor locates cards by class.
func PresetMarketplace() *Config {
	return &Config{
		NoiseTags: []string{"svg", "path", "g", "button"},
		StripAttributes: []string{
			"style", "target",
			"data-adsplatform", "data-id", "data-testid",
		},
		EmptyContainerTags: []string{"div"},
		StripNewlines:      true,
	}
}

// PresetMinimal only drops vector graphics and inline styles.
func PresetMinimal() *Config {
	return &Config{
		NoiseTags:       []string{"svg"},
		StripAttributes: []string{"style"},
	}
}

// Preset returns a named preset: "default", "marketplace" or "minimal".
func Preset(name string) (*Config, bool) {
	switch strings.ToLower(name) {
	case "", "default", "list":
		return DefaultConfig(), true
	case "marketplace", "product":
		return PresetMarketplace(), true
	case "minimal":
		return PresetMinimal(), true
	default:
		return nil, false
	}
}

// Merge merges another config into this one.
// Boolean options from other win when true; lists are appended without duplicates.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c
	merged.DecorativeMarkers = append([]Marker(nil), c.DecorativeMarkers...)

	if other.StripEmptyContainers {
		merged.StripEmptyContainers = true
	}
	if other.StripNewlines {
		merged.StripNewlines = true
	}

	seenMarker := make(map[Marker]bool)
	for _, m := range merged.DecorativeMarkers {
		seenMarker[m] = true
	}
	for _, m := range other.DecorativeMarkers {
		if !seenMarker[m] {
			merged.DecorativeMarkers = append(merged.DecorativeMarkers, m)
			seenMarker[m] = true
		}
	}

	merged.NoiseTags = appendUnique(c.NoiseTags, other.NoiseTags)
	merged.StripAttributes = appendUnique(c.StripAttributes, other.StripAttributes)
	merged.EmptyContainerTags = appendUnique(c.EmptyContainerTags, other.EmptyContainerTags)

	return &merged
}

func appendUnique(base, extra []string) []string {
	out := append([]string(nil), base...)
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[strings.ToLower(s)] = true
	}
	return set
}
