package analyzers

import "math"

// PowerToDB returns a power spectrogram in decibels relative to 1.0. Values below amin are floored, and when topDB is positive the
// result is clipped to topDB below the spectrogram maximum.
func PowerToDB(power [][]float64, amin, topDB float64) [][]float64 {
	db := make([][]float64, len(power))
	peak := math.Inf(-1)

	for t, frame := range power {
		db[t] = make([]float64, len(frame))
		for f, p := range frame {
			v := 10 * math.Log10(math.Max(amin, p))
			db[t][f] = v
			peak = math.Max(peak, v)
		}
	}

	if topDB > 0 {
		floor := peak - topDB
		for _, frame := range db {
			for f, v := range frame {
				frame[f] = math.Max(v, floor)
			}
		}
	}

	return db
}

// DCT computes the leading terms of the orthonormal type-II discrete cosine
// transform.
type DCT struct {
	basis [][]float64
	size  int
}

// NewDCT precomputes the cosine basis for inputs of length size
func NewDCT(size, numCoeffs int) *DCT {
	numCoeffs = min(numCoeffs, size)
	basis := make([][]float64, numCoeffs)
	n := float64(size)

	for k := range numCoeffs {
		scale := math.Sqrt(2 / n)
		if k == 0 {
			scale = math.Sqrt(1 / n)
		}
		basis[k] = make([]float64, size)
		for i := range size {
			basis[k][i] = scale * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*n))
		}
	}

	return &DCT{basis: basis, size: size}
}

// Transform applies the DCT to x, which must have the configured length
func (d *DCT) Transform(x []float64) []float64 {
	out := make([]float64, len(d.basis))
	for k, row := range d.basis {
		sum := 0.0
		for i := 0; i < d.size && i < len(x); i++ {
			sum += row[i] * x[i]
		}
		out[k] = sum
	}
	return out
}
