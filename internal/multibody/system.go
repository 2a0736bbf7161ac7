package multibody

import (
	"fmt"
	"sync/atomic"

	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

// systemSerial hands every System a process-unique identity, stamped into
// its States so a State cannot be realized against a foreign system even
// when the two systems happen to share a topology version.
var systemSerial atomic.Uint64

// Component is anything realized alongside the tree, such as a constraint
// set. RealizeTopology runs once while the default state is built and may
// allocate discrete variables and cache entries; Realize runs for every
// stage after the tree's own sweep for that stage, before the state's
// stage marker advances.
type Component interface {
	RealizeTopology(sys *System, s *State) error
	Realize(sys *System, s *State, g stage.Stage) error
}

// System is the multibody tree: an arena of body nodes addressed by
// BodyIndex, with parent links stored as indices and an explicit
// topological traversal order computed at topology realization. After
// RealizeTopology the system is immutable and may be shared between
// goroutines, each holding its own State.
type System struct {
	bodies     []*Body
	order      []BodyIndex
	components []Component
	gravity    spatial.Vec3

	id              uint64
	topologyVersion uint64
	realized        bool
	nq, nu          int

	// discrete-variable indices, identical across all states of this system
	massVar []DiscreteIndex
	inbVar  []DiscreteIndex
	outbVar []DiscreteIndex
}

// NewSystem creates a system containing only Ground.
func NewSystem() *System {
	sys := &System{id: systemSerial.Add(1), topologyVersion: 1}
	ground := &Body{
		sys:    sys,
		index:  Ground,
		parent: InvalidBody,
		name:   "ground",
		mob:    WeldMobilizer{},
	}
	sys.bodies = []*Body{ground}
	return sys
}

// AddBody appends a body under the given parent. The inboard frame is X_PF
// on the parent, the outboard frame is X_BM on the new body. Topology must
// not have been realized yet.
func (sys *System) AddBody(parent BodyIndex, name string, mass spatial.MassProperties,
	inboard, outboard spatial.Transform, mob Mobilizer) (BodyIndex, error) {

	if sys.realized {
		return InvalidBody, ErrTopologyFrozen
	}
	if int(parent) < 0 || int(parent) >= len(sys.bodies) {
		return InvalidBody, fmt.Errorf("%w: parent %d of %q", ErrTopologyMismatch, parent, name)
	}
	if mob == nil {
		mob = WeldMobilizer{}
	}
	ix := BodyIndex(len(sys.bodies))
	b := &Body{
		sys:      sys,
		index:    ix,
		parent:   parent,
		name:     name,
		mass:     mass,
		inboard:  inboard,
		outboard: outboard,
		mob:      mob,
	}
	sys.bodies = append(sys.bodies, b)
	sys.topologyVersion++
	return ix, nil
}

// AddComponent registers a component to be realized with the tree.
func (sys *System) AddComponent(c Component) error {
	if sys.realized {
		return ErrTopologyFrozen
	}
	sys.components = append(sys.components, c)
	sys.topologyVersion++
	return nil
}

// SetGravity sets the uniform gravity vector applied at Dynamics stage.
func (sys *System) SetGravity(g spatial.Vec3) { sys.gravity = g }

func (sys *System) Gravity() spatial.Vec3 { return sys.gravity }

func (sys *System) NumBodies() int { return len(sys.bodies) }
func (sys *System) NumQ() int      { return sys.nq }
func (sys *System) NumU() int      { return sys.nu }

// TopologyVersion changes whenever a body or component is added.
func (sys *System) TopologyVersion() uint64 { return sys.topologyVersion }

// Body returns the node for an index; it panics on a bad index, which is a
// programming error on par with slicing out of range.
func (sys *System) Body(ix BodyIndex) *Body { return sys.bodies[ix] }

// GroundBody returns the Ground node.
func (sys *System) GroundBody() *Body { return sys.bodies[Ground] }

// TraversalOrder returns the parent-before-child order computed at
// topology realization.
func (sys *System) TraversalOrder() []BodyIndex { return sys.order }

// RealizeTopology freezes the topology, assigns the q/u partition and
// traversal order, and returns the default State stamped with this
// system's topology version. Components allocate their state slots here.
func (sys *System) RealizeTopology() (*State, error) {
	// partition q and u contiguously per body in index order; index order
	// is parent-before-child because parents must exist when added
	nq, nu := 0, 0
	for _, b := range sys.bodies {
		b.qStart, b.uStart = nq, nu
		nq += b.NumQ()
		nu += b.NumU()
		b.children = b.children[:0]
		if b.index != Ground {
			b.level = sys.bodies[b.parent].level + 1
			sys.bodies[b.parent].children = append(sys.bodies[b.parent].children, b.index)
		}
	}
	sys.nq, sys.nu = nq, nu

	sys.order = sys.order[:0]
	for _, b := range sys.bodies {
		sys.order = append(sys.order, b.index)
	}

	nb := len(sys.bodies)
	s := &State{
		systemID:        sys.id,
		topologyVersion: sys.topologyVersion,
		nb:              nb,
		q:               make([]float64, nq),
		u:               make([]float64, nu),
		udot:            make([]float64, nu),
		qdot:            make([]float64, nq),
		xFM:             make([]spatial.Transform, nb),
		xGB:             make([]spatial.Transform, nb),
		vGB:             make([]spatial.SpatialVec, nb),
		massG:           make([]spatial.MassProperties, nb),
		gravityF:        make([]spatial.SpatialVec, nb),
		aGB:             make([]spatial.SpatialVec, nb),
	}

	sys.massVar = sys.massVar[:0]
	sys.inbVar = sys.inbVar[:0]
	sys.outbVar = sys.outbVar[:0]
	for _, b := range sys.bodies {
		sys.massVar = append(sys.massVar, s.AllocDiscrete(stage.Instance, b.mass))
		sys.inbVar = append(sys.inbVar, s.AllocDiscrete(stage.Instance, b.inboard))
		sys.outbVar = append(sys.outbVar, s.AllocDiscrete(stage.Instance, b.outboard))
	}

	for _, c := range sys.components {
		if err := c.RealizeTopology(sys, s); err != nil {
			return nil, err
		}
	}

	sys.realized = true
	s.stg = stage.Topology
	return s, nil
}

// instanceMass reads a body's instance-stage mass properties.
func (sys *System) instanceMass(s *State, ix BodyIndex) spatial.MassProperties {
	return s.Discrete(sys.massVar[ix]).(spatial.MassProperties)
}

func (sys *System) instanceInboard(s *State, ix BodyIndex) spatial.Transform {
	return s.Discrete(sys.inbVar[ix]).(spatial.Transform)
}

func (sys *System) instanceOutboard(s *State, ix BodyIndex) spatial.Transform {
	return s.Discrete(sys.outbVar[ix]).(spatial.Transform)
}

// SetBodyMassProperties overrides a body's mass properties in this state,
// invalidating Instance and above.
func (sys *System) SetBodyMassProperties(s *State, ix BodyIndex, mp spatial.MassProperties) {
	s.SetDiscrete(sys.massVar[ix], mp)
}

// SetBodyInboardFrame overrides X_PF in this state.
func (sys *System) SetBodyInboardFrame(s *State, ix BodyIndex, x spatial.Transform) {
	s.SetDiscrete(sys.inbVar[ix], x)
}

// SetBodyOutboardFrame overrides X_BM in this state.
func (sys *System) SetBodyOutboardFrame(s *State, ix BodyIndex, x spatial.Transform) {
	s.SetDiscrete(sys.outbVar[ix], x)
}
