// Package similarity ranks a query fingerprint against trained accent prototypes.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/kim210603/accent-recognition/internal/prototype"
)

// Epsilon keeps the confidence formula defined when every distance is zero
const Epsilon = 1e-9

// DimensionError is returned when a query vector and the prototypes differ in length
type DimensionError struct {
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("query has dimension %d, prototypes have %d", e.Actual, e.Expected)
}

// ErrNonFiniteQuery is returned for query vectors containing NaN or infinity
var ErrNonFiniteQuery = errors.New("query vector contains non-finite values")

// LabelScore is one row of a ranking
type LabelScore struct {
	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Distance   float64 `json:"distance" yaml:"distance"`
}

// Result is the outcome of scoring one query
type Result struct {
	ID             string             `json:"id" yaml:"id"`
	Best           string             `json:"best" yaml:"best"`
	BestConfidence float64            `json:"best_confidence" yaml:"best_confidence"`
	Confidences    map[string]float64 `json:"confidences" yaml:"confidences"`
	Distances      map[string]float64 `json:"distances" yaml:"distances"`
	Ranking        []LabelScore       `json:"ranking" yaml:"ranking"`
	Empty          bool               `json:"empty" yaml:"empty"`
}

// Scorer compares queries against a prototype table it never modifies
type Scorer struct {
	table  *prototype.Table
	logger logging.Logger
}

// NewScorer creates a scorer over table. A nil or empty table is a
// MissingModelError: there is nothing to score against.
func NewScorer(table *prototype.Table) (*Scorer, error) {
	if table.IsEmpty() {
		return nil, prototype.NewMissingModelError("", prototype.ErrCodeModelEmpty, "prototype table is empty", nil)
	}
	return &Scorer{
		table: table,
		logger: logging.WithFields(logging.Fields{
			"component": "similarity_scorer",
			"labels":    table.Len(),
		}),
	}, nil
}

// Table returns the prototypes the scorer compares against
func (s *Scorer) Table() *prototype.Table {
	return s.table
}

// Score computes the Euclidean distance from query to every centroid and
// maps it to a confidence of 100 * (1 - d / (max_d + Epsilon)). The label
// closest to the query wins; equal confidences fall back to label order.
func (s *Scorer) Score(query []float64) (*Result, error) {
	if len(query) != s.table.Dimension() {
		return nil, &DimensionError{Expected: s.table.Dimension(), Actual: len(query)}
	}
	for _, x := range query {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, ErrNonFiniteQuery
		}
	}

	result := &Result{
		ID:          uuid.NewString(),
		Confidences: make(map[string]float64, s.table.Len()),
		Distances:   make(map[string]float64, s.table.Len()),
		Ranking:     make([]LabelScore, 0, s.table.Len()),
	}

	maxDistance := 0.0
	s.table.Each(func(label string, centroid []float64) {
		d := floats.Distance(query, centroid, 2)
		result.Distances[label] = d
		maxDistance = math.Max(maxDistance, d)
	})

	for _, label := range s.table.Labels() {
		d := result.Distances[label]
		confidence := 100 * (1 - d/(maxDistance+Epsilon))
		result.Confidences[label] = confidence
		result.Ranking = append(result.Ranking, LabelScore{
			Label:      label,
			Confidence: confidence,
			Distance:   d,
		})
	}

	slices.SortStableFunc(result.Ranking, func(a, b LabelScore) int {
		if a.Confidence != b.Confidence {
			if a.Confidence > b.Confidence {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})

	result.Best = result.Ranking[0].Label
	result.BestConfidence = result.Ranking[0].Confidence

	s.logger.Debug("Query scored", logging.Fields{
		"id":              result.ID,
		"best":            result.Best,
		"best_confidence": result.BestConfidence,
		"max_distance":    maxDistance,
	})

	return result, nil
}

// ScoreEmpty scores a query that came from a silent recording. The zero
// vector is ranked like any other query and the result is flagged.
func (s *Scorer) ScoreEmpty() (*Result, error) {
	result, err := s.Score(make([]float64, s.table.Dimension()))
	if err != nil {
		return nil, err
	}
	result.Empty = true
	return result, nil
}
