package multibody

import (
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

// State is the versioned container for everything that varies at run time:
// the generalized coordinates q, speeds u, prescribed accelerations udot,
// instance-stage discrete variables, and the per-stage caches the
// realization pipeline fills in.
//
// A single stage marker governs cache validity. Every accessor checks the
// marker against its guarding stage; every mutator truncates the marker to
// just below the first stage whose results it invalidates. There is no
// per-entry validity tracking: contents above the marker are simply
// unreadable until the system realizes them again.
//
// A State is produced by System.RealizeTopology and is tied to that
// system's topology version. One State must not be shared between
// goroutines; distinct States over the same realized System may be used
// concurrently.
type State struct {
	systemID        uint64
	topologyVersion uint64
	nb              int
	stg             stage.Stage

	q, u, udot []float64

	discrete []discreteVar
	cache    []cacheEntry

	// position cache
	xFM []spatial.Transform // cross-mobilizer transforms
	xGB []spatial.Transform // body frames in Ground

	// velocity cache
	vGB  []spatial.SpatialVec
	qdot []float64

	// dynamics cache
	massG    []spatial.MassProperties // body mass properties reexpressed in G
	gravityF []spatial.SpatialVec     // gravity body forces in G

	// acceleration cache
	aGB []spatial.SpatialVec
}

type discreteVar struct {
	invalidates stage.Stage
	value       any
}

type cacheEntry struct {
	computedBy stage.Stage
	value      any
}

// DiscreteIndex addresses a discrete variable allocated in a State.
type DiscreteIndex int

// CacheIndex addresses a cache entry allocated in a State.
type CacheIndex int

// Stage returns the highest realized stage.
func (s *State) Stage() stage.Stage { return s.stg }

// TopologyVersion identifies the system topology this state was built for.
func (s *State) TopologyVersion() uint64 { return s.topologyVersion }

func (s *State) invalidate(g stage.Stage) {
	s.stg = stage.Min(s.stg, g.Prev())
}

func (s *State) checkStage(need stage.Stage, op string) error {
	if s.stg < need {
		return &StageError{Op: op, Need: need, Have: s.stg}
	}
	return nil
}

// NumQ and NumU report the partition sizes.
func (s *State) NumQ() int { return len(s.q) }
func (s *State) NumU() int { return len(s.u) }

// Q returns a read-only view of the generalized coordinates. Mutate through
// SetQ or SetOneQ so dependent stages are invalidated.
func (s *State) Q() ([]float64, error) {
	if err := s.checkStage(stage.Topology, "Q"); err != nil {
		return nil, err
	}
	return s.q, nil
}

// U returns a read-only view of the generalized speeds.
func (s *State) U() ([]float64, error) {
	if err := s.checkStage(stage.Topology, "U"); err != nil {
		return nil, err
	}
	return s.u, nil
}

// UDot returns a read-only view of the prescribed generalized accelerations.
func (s *State) UDot() ([]float64, error) {
	if err := s.checkStage(stage.Topology, "UDot"); err != nil {
		return nil, err
	}
	return s.udot, nil
}

// QDot returns the cached coordinate derivatives; Velocity stage.
func (s *State) QDot() ([]float64, error) {
	if err := s.checkStage(stage.Velocity, "QDot"); err != nil {
		return nil, err
	}
	return s.qdot, nil
}

// SetQ replaces all generalized coordinates, invalidating Position and
// above.
func (s *State) SetQ(q []float64) error {
	if len(q) != len(s.q) {
		return ErrDimensionMismatch
	}
	copy(s.q, q)
	s.invalidate(stage.Position)
	return nil
}

// SetOneQ sets a single coordinate, invalidating Position and above.
func (s *State) SetOneQ(i int, v float64) error {
	if i < 0 || i >= len(s.q) {
		return ErrDimensionMismatch
	}
	s.q[i] = v
	s.invalidate(stage.Position)
	return nil
}

// SetU replaces all generalized speeds, invalidating Velocity and above.
func (s *State) SetU(u []float64) error {
	if len(u) != len(s.u) {
		return ErrDimensionMismatch
	}
	copy(s.u, u)
	s.invalidate(stage.Velocity)
	return nil
}

// SetOneU sets a single speed, invalidating Velocity and above.
func (s *State) SetOneU(i int, v float64) error {
	if i < 0 || i >= len(s.u) {
		return ErrDimensionMismatch
	}
	s.u[i] = v
	s.invalidate(stage.Velocity)
	return nil
}

// SetUDot prescribes the generalized accelerations, invalidating
// Acceleration and above.
func (s *State) SetUDot(udot []float64) error {
	if len(udot) != len(s.udot) {
		return ErrDimensionMismatch
	}
	copy(s.udot, udot)
	s.invalidate(stage.Acceleration)
	return nil
}

// AllocDiscrete adds a discrete variable whose mutation invalidates the
// given stage and above. Intended for use while realizing topology.
func (s *State) AllocDiscrete(invalidates stage.Stage, v any) DiscreteIndex {
	s.discrete = append(s.discrete, discreteVar{invalidates: invalidates, value: v})
	return DiscreteIndex(len(s.discrete) - 1)
}

// Discrete reads a discrete variable. Always valid once allocated.
func (s *State) Discrete(ix DiscreteIndex) any {
	return s.discrete[ix].value
}

// SetDiscrete replaces a discrete variable and invalidates its stage.
func (s *State) SetDiscrete(ix DiscreteIndex, v any) {
	s.discrete[ix].value = v
	s.invalidate(s.discrete[ix].invalidates)
}

// AllocCache adds a cache entry owned by the given stage. Intended for use
// while realizing topology.
func (s *State) AllocCache(computedBy stage.Stage, v any) CacheIndex {
	s.cache = append(s.cache, cacheEntry{computedBy: computedBy, value: v})
	return CacheIndex(len(s.cache) - 1)
}

// Cache reads a cache entry, guarded by its owning stage.
func (s *State) Cache(ix CacheIndex) (any, error) {
	e := s.cache[ix]
	if err := s.checkStage(e.computedBy, "Cache"); err != nil {
		return nil, err
	}
	return e.value, nil
}

// UpdCache returns a cache entry for writing during realization of its
// owning stage; no guard applies because the marker has not advanced yet.
func (s *State) UpdCache(ix CacheIndex) any {
	return s.cache[ix].value
}

// SetCache replaces a cache entry's value during realization.
func (s *State) SetCache(ix CacheIndex, v any) {
	s.cache[ix].value = v
}

// Clone returns a deep copy sharing nothing with the original, suitable
// for realizing concurrently against the same system. Cache entry and
// discrete values holding pointer types are copied shallowly; components
// replace rather than mutate them during realization.
func (s *State) Clone() *State {
	c := &State{
		systemID:        s.systemID,
		topologyVersion: s.topologyVersion,
		nb:              s.nb,
		stg:             s.stg,
		q:               append([]float64(nil), s.q...),
		u:               append([]float64(nil), s.u...),
		udot:            append([]float64(nil), s.udot...),
		qdot:            append([]float64(nil), s.qdot...),
		discrete:        append([]discreteVar(nil), s.discrete...),
		cache:           append([]cacheEntry(nil), s.cache...),
		xFM:             append([]spatial.Transform(nil), s.xFM...),
		xGB:             append([]spatial.Transform(nil), s.xGB...),
		vGB:             append([]spatial.SpatialVec(nil), s.vGB...),
		massG:           append([]spatial.MassProperties(nil), s.massG...),
		gravityF:        append([]spatial.SpatialVec(nil), s.gravityF...),
		aGB:             append([]spatial.SpatialVec(nil), s.aGB...),
	}
	return c
}
