package constraint

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

// Index addresses a constraint within its set.
type Index int

// Kind tags the closed catalog of built-in constraint types; user-defined
// constraints carry KindCustom and dispatch through their own callbacks.
type Kind int

const (
	KindRod Kind = iota
	KindBall
	KindWeld
	KindPointInPlane
	KindConstantAngle
	KindConstantOrientation
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindRod:
		return "rod"
	case KindBall:
		return "ball"
	case KindWeld:
		return "weld"
	case KindPointInPlane:
		return "point-in-plane"
	case KindConstantAngle:
		return "constant-angle"
	case KindConstantOrientation:
		return "constant-orientation"
	case KindCustom:
		return "custom"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Counts holds a constraint's equation counts: holonomic (position-level),
// nonholonomic (velocity-level), and acceleration-only.
type Counts struct {
	MP, MV, MA int
}

// Total is the number of scalar errors and multipliers the constraint
// produces.
func (c Counts) Total() int { return c.MP + c.MV + c.MA }

// Set is a collection of constraints over one multibody system. It registers
// itself as a component of the system, so topology realization assigns each
// constraint its ancestor, participating mobilities, and state slots.
// Constraints are added during topology construction and fixed afterwards.
type Set struct {
	sys         *multibody.System
	constraints []*Constraint
	realized    bool
}

// NewSet creates an empty constraint set bound to the system.
func NewSet(sys *multibody.System) (*Set, error) {
	set := &Set{sys: sys}
	if err := sys.AddComponent(set); err != nil {
		return nil, err
	}
	return set, nil
}

func (set *Set) NumConstraints() int { return len(set.constraints) }

// Constraint returns the node for an index; it panics on a bad index, as
// does slicing out of range.
func (set *Set) Constraint(ix Index) *Constraint { return set.constraints[ix] }

func (set *Set) add(kind Kind, bodies []multibody.BodyIndex, counts Counts, geom any, eqs equations) (Index, error) {
	if set.realized {
		return -1, multibody.ErrTopologyFrozen
	}
	if len(bodies) == 0 {
		return -1, fmt.Errorf("%w: %s constraint with no constrained bodies", multibody.ErrTopologyMismatch, kind)
	}
	for _, b := range bodies {
		if int(b) < 0 || int(b) >= set.sys.NumBodies() {
			return -1, fmt.Errorf("%w: constrained body %d out of range", multibody.ErrTopologyMismatch, b)
		}
	}
	ix := Index(len(set.constraints))
	set.constraints = append(set.constraints, &Constraint{
		set:    set,
		index:  ix,
		kind:   kind,
		bodies: append([]multibody.BodyIndex(nil), bodies...),
		counts: counts,
		geom:   geom,
		eqs:    eqs,
	})
	return ix, nil
}

// AddRod constrains the distance between a station on each of two bodies to
// a fixed length: one holonomic equation.
func (set *Set) AddRod(b1 multibody.BodyIndex, p1 spatial.Vec3, b2 multibody.BodyIndex, p2 spatial.Vec3, length float64) (Index, error) {
	if length <= 0 || math.IsNaN(length) {
		return -1, fmt.Errorf("%w: rod length %v", ErrGeometry, length)
	}
	geom := RodGeometry{Point1: p1, Point2: p2, Length: length}
	return set.add(KindRod, []multibody.BodyIndex{b1, b2}, Counts{MP: 1}, geom, rodEquations{})
}

// AddBall pins a station on each of two bodies together: three holonomic
// equations.
func (set *Set) AddBall(b1 multibody.BodyIndex, p1 spatial.Vec3, b2 multibody.BodyIndex, p2 spatial.Vec3) (Index, error) {
	geom := BallGeometry{Point1: p1, Point2: p2}
	return set.add(KindBall, []multibody.BodyIndex{b1, b2}, Counts{MP: 3}, geom, ballEquations{})
}

// AddWeld locks the pose of a frame on body 2 to a frame on body 1: six
// holonomic equations, three orientation then three position.
func (set *Set) AddWeld(b1 multibody.BodyIndex, x1 spatial.Transform, b2 multibody.BodyIndex, x2 spatial.Transform) (Index, error) {
	geom := WeldGeometry{Frame1: x1, Frame2: x2}
	return set.add(KindWeld, []multibody.BodyIndex{b1, b2}, Counts{MP: 6}, geom, weldEquations{})
}

// AddPointInPlane keeps a follower station on body 2 in a plane fixed on
// body 1, given by a unit normal and a height in body 1's frame: one
// holonomic equation.
func (set *Set) AddPointInPlane(planeBody multibody.BodyIndex, normal spatial.Vec3, height float64, followerBody multibody.BodyIndex, followerPoint spatial.Vec3) (Index, error) {
	n, ok := unitize(normal)
	if !ok {
		return -1, fmt.Errorf("%w: plane normal %v", ErrGeometry, normal)
	}
	geom := PointInPlaneGeometry{Normal: n, Height: height, FollowerPoint: followerPoint}
	return set.add(KindPointInPlane, []multibody.BodyIndex{planeBody, followerBody}, Counts{MP: 1}, geom, pointInPlaneEquations{})
}

// AddConstantAngle keeps the angle between a base axis fixed on body 1 and a
// follower axis fixed on body 2 at a target value: one holonomic equation.
// The target must stay away from 0 and pi, where the parametrization is
// singular.
func (set *Set) AddConstantAngle(b1 multibody.BodyIndex, baseAxis spatial.Vec3, b2 multibody.BodyIndex, followerAxis spatial.Vec3, angle float64) (Index, error) {
	b, ok := unitize(baseAxis)
	if !ok {
		return -1, fmt.Errorf("%w: base axis %v", ErrGeometry, baseAxis)
	}
	f, ok := unitize(followerAxis)
	if !ok {
		return -1, fmt.Errorf("%w: follower axis %v", ErrGeometry, followerAxis)
	}
	geom := ConstantAngleGeometry{BaseAxis: b, FollowerAxis: f, Angle: angle}
	return set.add(KindConstantAngle, []multibody.BodyIndex{b1, b2}, Counts{MP: 1}, geom, constantAngleEquations{})
}

// AddConstantOrientation locks a frame on body 2 to the orientation of a
// frame on body 1, leaving translation free: three holonomic equations.
func (set *Set) AddConstantOrientation(b1 multibody.BodyIndex, r1 spatial.Rotation, b2 multibody.BodyIndex, r2 spatial.Rotation) (Index, error) {
	geom := ConstantOrientationGeometry{BaseFrame: r1, FollowerFrame: r2}
	return set.add(KindConstantOrientation, []multibody.BodyIndex{b1, b2}, Counts{MP: 3}, geom, constantOrientationEquations{})
}

// AddCustom registers a user-defined constraint over the given bodies. The
// implementation supplies the error and force callbacks; its declared
// counts are reread whenever the Model stage is realized, so a count
// change takes effect on the next realization.
func (set *Set) AddCustom(bodies []multibody.BodyIndex, impl CustomConstraint) (Index, error) {
	counts := impl.Counts()
	if counts.MP < 0 || counts.MV < 0 || counts.MA < 0 || counts.Total() == 0 {
		return -1, fmt.Errorf("%w: custom constraint counts %+v", ErrGeometry, counts)
	}
	return set.add(KindCustom, bodies, counts, nil, customEquations{impl: impl})
}

func unitize(v spatial.Vec3) (spatial.Vec3, bool) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return spatial.Vec3{}, false
	}
	return v.Scale(1 / n), true
}

// RealizeTopology freezes the set: it resolves each constraint's ancestor
// and participating mobilities and allocates its state slots. Runs as part
// of the system's topology realization.
func (set *Set) RealizeTopology(sys *multibody.System, s *multibody.State) error {
	if sys != set.sys {
		return fmt.Errorf("%w: constraint set bound to a different system", multibody.ErrTopologyMismatch)
	}
	for _, c := range set.constraints {
		c.ancestor = set.commonAncestor(c.bodies)
		c.participating = set.participatingMobilities(c.bodies, c.ancestor)
		c.enabledVar = s.AllocDiscrete(stage.Model, true)
		c.geomVar = s.AllocDiscrete(stage.Instance, c.geom)
	}
	set.realized = true
	return nil
}

// Realize validates constraint parameters as stages come up; the error and
// Jacobian evaluations themselves are operators over the realized tree, not
// cache fills.
func (set *Set) Realize(sys *multibody.System, s *multibody.State, g stage.Stage) error {
	switch g {
	case stage.Model:
		return set.realizeModel()
	case stage.Instance:
		for _, c := range set.constraints {
			if !c.Enabled(s) {
				continue
			}
			if err := c.validateGeometry(s); err != nil {
				return fmt.Errorf("constraint %d (%s): %w", c.index, c.kind, err)
			}
		}
	}
	return nil
}

// realizeModel rereads the equation counts of custom constraints. Error
// and multiplier slices are sized per evaluation, so refreshing the counts
// is the whole of the reallocation.
func (set *Set) realizeModel() error {
	for _, c := range set.constraints {
		ce, ok := c.eqs.(customEquations)
		if !ok {
			continue
		}
		counts := ce.impl.Counts()
		if counts.MP < 0 || counts.MV < 0 || counts.MA < 0 || counts.Total() == 0 {
			return fmt.Errorf("constraint %d (%s): %w: counts %+v", c.index, c.kind, ErrGeometry, counts)
		}
		c.counts = counts
	}
	return nil
}

func (set *Set) level(ix multibody.BodyIndex) int {
	n := 0
	for ix != multibody.Ground {
		ix = set.sys.Body(ix).Parent()
		n++
	}
	return n
}

// commonAncestor returns the lowest common ancestor of the constrained
// bodies; Ground when the bodies sit on separate branches.
func (set *Set) commonAncestor(bodies []multibody.BodyIndex) multibody.BodyIndex {
	a := bodies[0]
	for _, b := range bodies[1:] {
		la, lb := set.level(a), set.level(b)
		for la > lb {
			a = set.sys.Body(a).Parent()
			la--
		}
		for lb > la {
			b = set.sys.Body(b).Parent()
			lb--
		}
		for a != b {
			a = set.sys.Body(a).Parent()
			b = set.sys.Body(b).Parent()
		}
	}
	return a
}

// participatingMobilities collects, sorted, every generalized-speed index on
// the tree branches between the ancestor and each constrained body. These
// are the only columns where the constraint's Jacobians can be nonzero.
func (set *Set) participatingMobilities(bodies []multibody.BodyIndex, ancestor multibody.BodyIndex) []int {
	seen := make(map[int]struct{})
	for _, ix := range bodies {
		for ix != ancestor {
			b := set.sys.Body(ix)
			for k := 0; k < b.NumU(); k++ {
				seen[b.UStart()+k] = struct{}{}
			}
			ix = b.Parent()
		}
	}
	out := make([]int, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Ints(out)
	return out
}
