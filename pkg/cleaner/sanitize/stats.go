package sanitize

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/gleaner/pkg/markup"
)

// Stats captures metrics about what the sanitizer did.
type Stats struct {
	// Size metrics, in nodes
	InputNodes  int `json:"input_nodes"`
	OutputNodes int `json:"output_nodes"`

	// Element counts
	ElementsRemoved map[string]int `json:"elements_removed"` // tag -> count

	// Per-pass counters
	MarkerRemovals         int `json:"marker_removals"`
	NoiseRemovals          int `json:"noise_removals"`
	AttributesRemoved      int `json:"attributes_removed"`
	EmptyContainerRemovals int `json:"empty_container_removals"`
	NewlinesStripped       int `json:"newlines_stripped"`
	TextMerges             int `json:"text_merges"`

	Duration time.Duration `json:"duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
	}
}

// ReductionPercent returns the percentage reduction in node count.
func (s *Stats) ReductionPercent() float64 {
	if s.InputNodes == 0 {
		return 0
	}
	return float64(s.InputNodes-s.OutputNodes) / float64(s.InputNodes) * 100
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Nodes: %d -> %d (%.1f%% reduction)\n",
		s.InputNodes, s.OutputNodes, s.ReductionPercent()))

	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by tag: ")
		parts := make([]string, 0, len(s.ElementsRemoved))
		for tag, count := range s.ElementsRemoved {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, count))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Markers: %d, noise: %d, empty: %d, attributes: %d\n",
		s.MarkerRemovals, s.NoiseRemovals, s.EmptyContainerRemovals, s.AttributesRemoved))
	sb.WriteString(fmt.Sprintf("Timing: %v\n", s.Duration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during sanitizing.
type Warning struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Context string `json:"context"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a sanitize operation.
type Result struct {
	// Root is the sanitized tree. On a nil input it is an empty document.
	Root *markup.Node `json:"-"`

	Stats    *Stats    `json:"stats"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
