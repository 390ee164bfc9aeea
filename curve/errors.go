package curve

import "errors"

var (
	// ErrTooFewNodes is returned when a curve has fewer than two nodes. A Null curve may
	// have exactly one.
	ErrTooFewNodes = errors.New("curve: too few nodes")

	// ErrNotMonotonic is returned when node positions are not strictly increasing.
	ErrNotMonotonic = errors.New("curve: node positions not strictly increasing")

	// ErrNodeCount is returned when the number of values does not match the number of nodes.
	ErrNodeCount = errors.New("curve: node count mismatch")

	// ErrNodeIndex is returned when a node index is out of range.
	ErrNodeIndex = errors.New("curve: node index out of range")

	// ErrInvalidPosition is returned for NaN or infinite positions and values.
	ErrInvalidPosition = errors.New("curve: invalid position or value")

	// ErrUnknownInterpolation is returned for an unsupported interpolation name.
	ErrUnknownInterpolation = errors.New("curve: unknown interpolation")

	// ErrNoInterpolation is returned when a Null curve is queried away from its nodes.
	ErrNoInterpolation = errors.New("curve: no value between nodes of a null curve")

	// ErrAnchorMismatch is returned when composite constituents have different anchors.
	ErrAnchorMismatch = errors.New("curve: constituent anchors differ")

	// ErrNoConstituents is returned when a composite has no curves.
	ErrNoConstituents = errors.New("curve: composite has no constituents")

	// ErrEmptyID is returned when a curve is constructed without an identifier.
	ErrEmptyID = errors.New("curve: empty id")

	// ErrDuplicateID is returned when a Set receives two curves with the same id.
	ErrDuplicateID = errors.New("curve: duplicate id")

	// ErrNilCurve is returned when a Set receives a nil curve.
	ErrNilCurve = errors.New("curve: nil curve")

	// ErrUnknownComposition is returned for a composite combining function other than
	// Product or LogSum.
	ErrUnknownComposition = errors.New("curve: unknown composition")

	// ErrCurveNotFound is returned when a Set has no curve for the requested id.
	ErrCurveNotFound = errors.New("curve: not found")
)
