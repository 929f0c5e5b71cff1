package vmath

// Clamp limits v to [lo, hi]; lo wins when the range is inverted
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// InverseLerp maps v from [a, b] onto [0, 1] without clamping
// Values outside the range extrapolate linearly; a degenerate range maps to 0
func InverseLerp(a, b, v float64) float64 {
	if b == a {
		return 0
	}
	return (v - a) / (b - a)
}

// Lerp interpolates between a and b by t without clamping
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
