package audio

import "math"

// powerFloor is the smallest frame power treated as signal. A waveform whose
// loudest frame is below it is considered silent in its entirety.
const powerFloor = 1e-10

// TrimSilence removes leading and trailing regions quieter than topDB below
// the loudest frame. Frames are centered on multiples of hopLength and zero
// padded at the edges. If no frame is loud enough the result is empty.
func TrimSilence(samples []float64, topDB float64, frameLength, hopLength int) []float64 {
	if len(samples) == 0 {
		return samples[:0]
	}

	power := FramePower(samples, frameLength, hopLength)

	peak := 0.0
	for _, p := range power {
		peak = math.Max(peak, p)
	}
	if peak < powerFloor {
		return samples[:0]
	}

	threshold := peak * math.Pow(10, -topDB/10)

	first, last := -1, -1
	for i, p := range power {
		if math.Max(p, powerFloor) > threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return samples[:0]
	}

	start := min(first*hopLength, len(samples))
	end := min((last+1)*hopLength, len(samples))
	return samples[start:end]
}

// FramePower returns the mean squared amplitude of each centered frame.
// There are 1 + len(samples)/hopLength frames.
func FramePower(samples []float64, frameLength, hopLength int) []float64 {
	n := len(samples)
	if n == 0 || frameLength <= 0 || hopLength <= 0 {
		return nil
	}

	// Prefix sums of squares make every frame O(1).
	cumulative := make([]float64, n+1)
	for i, s := range samples {
		cumulative[i+1] = cumulative[i] + s*s
	}

	numFrames := 1 + n/hopLength
	half := frameLength / 2
	power := make([]float64, numFrames)

	for t := range numFrames {
		lo := t*hopLength - half
		hi := lo + frameLength
		lo = max(lo, 0)
		hi = min(hi, n)
		if hi <= lo {
			continue
		}
		power[t] = (cumulative[hi] - cumulative[lo]) / float64(frameLength)
	}

	return power
}
