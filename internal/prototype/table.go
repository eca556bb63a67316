package prototype

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Entry is one accent class: its label, centroid and the number of clips
// averaged into it.
type Entry struct {
	Label    string    `json:"label" yaml:"label"`
	Centroid []float64 `json:"centroid" yaml:"centroid"`
	Clips    int       `json:"clips" yaml:"clips"`
}

// Table maps accent labels to centroids. It is immutable once built and safe
// for concurrent reads; accessors hand out copies.
type Table struct {
	entries   []Entry
	index     map[string]int
	dimension int
}

// NewTable validates entries and returns them as a table ordered by label.
// Labels must be non-empty and unique and all centroids must share one
// finite dimension.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, entry := range entries {
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			return nil, fmt.Errorf("prototype with empty label")
		}
		if _, dup := t.index[label]; dup {
			return nil, fmt.Errorf("duplicate prototype label %q", label)
		}
		if len(entry.Centroid) == 0 {
			return nil, fmt.Errorf("prototype %q has an empty centroid", label)
		}
		if t.dimension == 0 {
			t.dimension = len(entry.Centroid)
		} else if len(entry.Centroid) != t.dimension {
			return nil, fmt.Errorf("prototype %q has dimension %d, expected %d", label, len(entry.Centroid), t.dimension)
		}
		for _, x := range entry.Centroid {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("prototype %q has a non-finite centroid", label)
			}
		}

		t.index[label] = -1
		t.entries = append(t.entries, Entry{
			Label:    label,
			Centroid: slices.Clone(entry.Centroid),
			Clips:    entry.Clips,
		})
	}

	slices.SortFunc(t.entries, func(a, b Entry) int {
		return strings.Compare(a.Label, b.Label)
	})
	for i, entry := range t.entries {
		t.index[entry.Label] = i
	}

	return t, nil
}

// Len returns the number of labels
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// IsEmpty reports whether the table has no labels
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Dimension returns the centroid length, or 0 for an empty table
func (t *Table) Dimension() int {
	if t == nil {
		return 0
	}
	return t.dimension
}

// Labels returns the labels in lexical order
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}
	labels := make([]string, len(t.entries))
	for i, entry := range t.entries {
		labels[i] = entry.Label
	}
	return labels
}

// Centroid returns a copy of the centroid for label
func (t *Table) Centroid(label string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[label]
	if !ok {
		return nil, false
	}
	return slices.Clone(t.entries[i].Centroid), true
}

// ClipCount returns how many clips were averaged into label's centroid
func (t *Table) ClipCount(label string) int {
	if t == nil {
		return 0
	}
	if i, ok := t.index[label]; ok {
		return t.entries[i].Clips
	}
	return 0
}

// Entries returns copies of all entries in label order
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	for i, entry := range t.entries {
		out[i] = Entry{
			Label:    entry.Label,
			Centroid: slices.Clone(entry.Centroid),
			Clips:    entry.Clips,
		}
	}
	return out
}

// Each calls fn for every entry in label order without copying centroids.
// fn must not modify the centroid it is given.
func (t *Table) Each(fn func(label string, centroid []float64)) {
	if t == nil {
		return
	}
	for _, entry := range t.entries {
		fn(entry.Label, entry.Centroid)
	}
}
