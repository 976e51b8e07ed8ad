package docembed

import "math"

// NormalizeVector scales a vector to unit length so persisted vectors can be
// compared by plain dot product. Always returns a fresh slice; a zero vector
// has no direction and comes back as a zero vector of the same length.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	result := make([]float32, len(v))
	if sum == 0 {
		return result
	}

	inv := float32(1 / math.Sqrt(sum))
	for i, val := range v {
		result[i] = val * inv
	}
	return result
}
