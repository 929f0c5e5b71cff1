package audio

import (
	"math"

	"github.com/lixenwraith/voice-dodger/parameter"
)

// EstimatePitch implements the McLeod pitch method over one window
// The normalized square difference function is searched for key maxima between
// EstimatorMinHz and EstimatorMaxHz; the first key maximum within EstimatorCutoff
// of the highest one is the period, refined by parabolic interpolation
// Clarity is the NSDF height at that period
func EstimatePitch(samples []float32, sampleRate int) (float64, float64) {
	n := len(samples)
	if n < 4 || sampleRate <= 0 {
		return 0, 0
	}

	minLag := int(float64(sampleRate) / parameter.EstimatorMaxHz)
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(float64(sampleRate) / parameter.EstimatorMinHz)
	if maxLag > n/2 {
		maxLag = n / 2
	}
	if minLag >= maxLag {
		return 0, 0
	}

	x := make([]float64, n)
	var mean float64
	for i, s := range samples {
		x[i] = float64(s)
		mean += x[i]
	}
	mean /= float64(n)

	var energy float64
	for i := range x {
		x[i] -= mean
		energy += x[i] * x[i]
	}
	if math.Sqrt(energy/float64(n)) < parameter.EstimatorSilenceRMS {
		return 0, 0
	}

	nsdf := make([]float64, maxLag+2)
	for tau := 0; tau < len(nsdf); tau++ {
		var acf, m float64
		for i := 0; i+tau < n; i++ {
			acf += x[i] * x[i+tau]
			m += x[i]*x[i] + x[i+tau]*x[i+tau]
		}
		if m > 0 {
			nsdf[tau] = 2 * acf / m
		}
	}

	peaks := keyMaxima(nsdf, maxLag)
	if len(peaks) == 0 {
		return 0, 0
	}

	var highest float64
	for _, p := range peaks {
		if p >= minLag && nsdf[p] > highest {
			highest = nsdf[p]
		}
	}
	if highest <= 0 {
		return 0, 0
	}

	threshold := parameter.EstimatorCutoff * highest
	for _, p := range peaks {
		if p < minLag || nsdf[p] < threshold {
			continue
		}

		period, clarity := refinePeak(nsdf, p)
		if period <= 0 {
			return 0, 0
		}
		clarity = math.Max(0, math.Min(1, clarity))

		pitch := float64(sampleRate) / period
		if pitch < parameter.EstimatorMinHz || pitch > parameter.EstimatorMaxHz {
			return 0, clarity
		}
		return pitch, clarity
	}
	return 0, 0
}

// keyMaxima returns the lag of the highest value in each positive lobe after the first negative crossing
func keyMaxima(nsdf []float64, maxLag int) []int {
	var peaks []int

	tau := 1
	// Skip the zero-lag lobe
	for tau <= maxLag && nsdf[tau] > 0 {
		tau++
	}

	for tau <= maxLag {
		for tau <= maxLag && nsdf[tau] <= 0 {
			tau++
		}
		if tau > maxLag {
			break
		}

		peak := tau
		for tau <= maxLag && nsdf[tau] > 0 {
			if nsdf[tau] > nsdf[peak] {
				peak = tau
			}
			tau++
		}
		// A lobe cut off by the search limit only counts if it already turned down
		if tau > maxLag && peak == maxLag {
			break
		}
		peaks = append(peaks, peak)
	}
	return peaks
}

// refinePeak fits a parabola through the peak and its neighbours
func refinePeak(nsdf []float64, p int) (period, height float64) {
	if p <= 0 || p+1 >= len(nsdf) {
		return float64(p), nsdf[p]
	}

	a, b, c := nsdf[p-1], nsdf[p], nsdf[p+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(p), b
	}

	shift := 0.5 * (a - c) / denom
	return float64(p) + shift, b - 0.25*(a-c)*shift
}
