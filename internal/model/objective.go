package model

import "math"

// ObjectiveEPS is the relative tolerance used when comparing objectives.
const ObjectiveEPS = 1e-9

// CompareObjective compares two objective values with relative tolerance
// ObjectiveEPS. It returns -1, 0 or 1.
func CompareObjective(l, r float64) int {
	denom := math.Abs(l) + math.Abs(r)
	if denom == 0 {
		return 0
	}
	diff := (l - r) / denom
	switch {
	case diff > ObjectiveEPS:
		return 1
	case diff < -ObjectiveEPS:
		return -1
	default:
		return 0
	}
}
