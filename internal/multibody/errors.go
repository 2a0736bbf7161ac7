package multibody

import (
	"errors"
	"fmt"

	"github.com/san-kum/kinetree/internal/stage"
)

// Domain errors for tree construction and realization.
var (
	// ErrStageNotRealized indicates an accessor ran before its guarding
	// stage was realized. This is a programming error, never transient.
	ErrStageNotRealized = errors.New("multibody: stage not realized")

	// ErrTopologyMismatch indicates a state or body reference that does not
	// belong to this system's realized topology.
	ErrTopologyMismatch = errors.New("multibody: topology mismatch")

	// ErrTopologyFrozen indicates an attempt to modify topology after it
	// was realized.
	ErrTopologyFrozen = errors.New("multibody: topology already realized")

	// ErrNotImplemented indicates a declared operation whose implementation
	// is intentionally absent; callers get this instead of a silent zero.
	ErrNotImplemented = errors.New("multibody: operation not implemented")

	// ErrDimensionMismatch indicates a supplied vector whose length does
	// not match the system's q/u partition.
	ErrDimensionMismatch = errors.New("multibody: dimension mismatch")
)

// StageError reports a stage-precondition violation: the operation named in
// Op needs the state realized to at least Need, but it is only at Have.
type StageError struct {
	Op   string
	Need stage.Stage
	Have stage.Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("multibody: %s requires stage %s, state is at %s", e.Op, e.Need, e.Have)
}

func (e *StageError) Unwrap() error { return ErrStageNotRealized }
