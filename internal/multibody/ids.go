package multibody

// BodyIndex identifies a body node within one System. Indices are assigned
// at construction, are stable for the life of the System, and are never
// reused. Ground is always index 0.
type BodyIndex int

const (
	// Ground is the inertial reference body present in every System.
	Ground BodyIndex = 0

	// InvalidBody is the out-of-band value for "no body".
	InvalidBody BodyIndex = -1
)

// IsValid reports whether the index refers to some body (not necessarily
// one belonging to a given system; range checks are the system's job).
func (b BodyIndex) IsValid() bool { return b >= 0 }
