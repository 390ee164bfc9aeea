package curve

import "sort"

// findSegment returns the index i of the segment [positions[i], positions[i+1]] used to
// value target, and whether target sits exactly on node i or i+1.
//
// Targets outside the node range map to the nearest boundary segment so that the
// interpolation formula extrapolates. Requires at least two positions.
func findSegment(positions []float64, target float64) (i int, node int, exact bool) {
	n := len(positions)

	// First index with positions[idx] >= target.
	idx := sort.SearchFloat64s(positions, target)
	if idx < n && positions[idx] == target {
		exact = true
		node = idx
	}

	switch {
	case idx <= 0:
		return 0, node, exact
	case idx >= n:
		return n - 2, node, exact
	default:
		return idx - 1, node, exact
	}
}
