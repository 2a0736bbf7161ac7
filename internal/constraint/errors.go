package constraint

import "errors"

var (
	// ErrDimension reports a multiplier or vector length that does not
	// match the constraint's declared equation counts.
	ErrDimension = errors.New("constraint: dimension mismatch")

	// ErrGeometry reports geometry that cannot define the constraint, such
	// as a zero-length axis or a negative rod length.
	ErrGeometry = errors.New("constraint: invalid geometry")

	// ErrKind reports a geometry access against the wrong constraint kind.
	ErrKind = errors.New("constraint: wrong constraint kind")
)
