package prototype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableOrdersLabels(t *testing.T) {
	table, err := NewTable([]Entry{
		{Label: "yorkshire", Centroid: []float64{3, 3}, Clips: 1},
		{Label: "irish", Centroid: []float64{1, 1}, Clips: 2},
		{Label: "scottish", Centroid: []float64{2, 2}, Clips: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"irish", "scottish", "yorkshire"}, table.Labels())
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 2, table.Dimension())
	assert.Equal(t, 3, table.ClipCount("scottish"))
	assert.Equal(t, 0, table.ClipCount("welsh"))

	var visited []string
	table.Each(func(label string, centroid []float64) {
		visited = append(visited, label)
	})
	assert.Equal(t, table.Labels(), visited)
}

func TestTableAccessorsReturnCopies(t *testing.T) {
	source := []float64{1, 2, 3}
	table, err := NewTable([]Entry{{Label: "irish", Centroid: source}})
	require.NoError(t, err)

	source[0] = 100
	centroid, ok := table.Centroid("irish")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, centroid)

	centroid[1] = 100
	table.Entries()[0].Centroid[2] = 100

	again, _ := table.Centroid("irish")
	assert.Equal(t, []float64{1, 2, 3}, again)

	_, ok = table.Centroid("welsh")
	assert.False(t, ok)
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty label", []Entry{{Label: " ", Centroid: []float64{1}}}},
		{"duplicate label", []Entry{{Label: "irish", Centroid: []float64{1}}, {Label: "irish", Centroid: []float64{2}}}},
		{"empty centroid", []Entry{{Label: "irish"}}},
		{"dimension mismatch", []Entry{{Label: "irish", Centroid: []float64{1}}, {Label: "scottish", Centroid: []float64{1, 2}}}},
		{"non-finite", []Entry{{Label: "irish", Centroid: []float64{math.NaN()}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.entries)
			assert.Error(t, err)
		})
	}
}

func TestEmptyAndNilTable(t *testing.T) {
	empty, err := NewTable(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.Dimension())

	var missing *Table
	assert.True(t, missing.IsEmpty())
	assert.Nil(t, missing.Labels())
	_, ok := missing.Centroid("irish")
	assert.False(t, ok)
}
