package analyzers

import (
	"fmt"
	"math"
	"sync"
)

// WindowType identifies an analysis window
type WindowType int

const (
	WindowRectangular WindowType = iota
	WindowHann
	WindowHamming
)

func (w WindowType) String() string {
	switch w {
	case WindowRectangular:
		return "rectangular"
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

type windowKey struct {
	kind WindowType
	size int
}

// WindowGenerator builds periodic (DFT-even) analysis windows and caches them
// by type and size. Cached windows must not be modified by callers.
type WindowGenerator struct {
	mu    sync.RWMutex
	cache map[windowKey][]float64
}

// NewWindowGenerator creates an empty window cache
func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{cache: make(map[windowKey][]float64)}
}

// Generate returns the window of the given type and size
func (wg *WindowGenerator) Generate(kind WindowType, size int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	key := windowKey{kind: kind, size: size}
	wg.mu.RLock()
	window, ok := wg.cache[key]
	wg.mu.RUnlock()
	if ok {
		return window, nil
	}

	window = make([]float64, size)
	n := float64(size)
	for i := range size {
		phase := 2 * math.Pi * float64(i) / n
		switch kind {
		case WindowRectangular:
			window[i] = 1
		case WindowHann:
			window[i] = 0.5 - 0.5*math.Cos(phase)
		case WindowHamming:
			window[i] = 0.54 - 0.46*math.Cos(phase)
		default:
			return nil, fmt.Errorf("unsupported window type %s", kind)
		}
	}

	wg.mu.Lock()
	wg.cache[key] = window
	wg.mu.Unlock()

	return window, nil
}
