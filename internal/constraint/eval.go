package constraint

import (
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// Evaluation bundles everything a constraint's error and force functions may
// read: the realized state, the constrained body list, the ancestor, and the
// body velocities or accelerations the evaluation is being run against. The
// velocity and acceleration slices are not always the state's own cache:
// Jacobian columns are produced by re-running the error functions against
// sweep results for unit generalized-speed vectors.
type Evaluation struct {
	sys      *multibody.System
	s        *multibody.State
	bodies   []multibody.BodyIndex
	ancestor multibody.BodyIndex

	v []spatial.SpatialVec // per-tree-body spatial velocities in G
	a []spatial.SpatialVec // per-tree-body spatial accelerations in G
}

// NumConstrainedBodies reports how many bodies the constraint restricts.
func (ev *Evaluation) NumConstrainedBodies() int { return len(ev.bodies) }

// ConstrainedBody maps a local index to the tree-wide body index.
func (ev *Evaluation) ConstrainedBody(local int) multibody.BodyIndex {
	return ev.bodies[local]
}

// Ancestor returns the body whose frame cross-constraint quantities are
// expressed in.
func (ev *Evaluation) Ancestor() multibody.BodyIndex { return ev.ancestor }

// Transform returns X_GB for a constrained body; Position stage.
func (ev *Evaluation) Transform(local int) (spatial.Transform, error) {
	return ev.sys.Body(ev.bodies[local]).Transform(ev.s)
}

// AncestorTransform returns X_GA; Position stage.
func (ev *Evaluation) AncestorTransform() (spatial.Transform, error) {
	return ev.sys.Body(ev.ancestor).Transform(ev.s)
}

// SpatialVelocity returns the spatial velocity in Ground of a constrained
// body under the generalized speeds this evaluation was built for. Only
// valid when the evaluation carries velocities; a force mapping on a state
// realized no further than Position does not.
func (ev *Evaluation) SpatialVelocity(local int) spatial.SpatialVec {
	return ev.v[ev.bodies[local]]
}

// AncestorVelocity returns the ancestor's spatial velocity in Ground.
func (ev *Evaluation) AncestorVelocity() spatial.SpatialVec {
	return ev.v[ev.ancestor]
}

// SpatialAcceleration returns the spatial acceleration in Ground of a
// constrained body under the generalized accelerations this evaluation was
// built for.
func (ev *Evaluation) SpatialAcceleration(local int) spatial.SpatialVec {
	return ev.a[ev.bodies[local]]
}

// AncestorAcceleration returns the ancestor's spatial acceleration in Ground.
func (ev *Evaluation) AncestorAcceleration() spatial.SpatialVec {
	return ev.a[ev.ancestor]
}

// StationLocation returns the Ground-frame location of a station fixed on a
// constrained body.
func (ev *Evaluation) StationLocation(local int, stationOnB spatial.Vec3) (spatial.Vec3, error) {
	x, err := ev.Transform(local)
	if err != nil {
		return spatial.Vec3{}, err
	}
	return x.Apply(stationOnB), nil
}

// StationVelocity returns the Ground-frame velocity of a station fixed on a
// constrained body under this evaluation's speeds.
func (ev *Evaluation) StationVelocity(local int, stationOnB spatial.Vec3) (spatial.Vec3, error) {
	x, err := ev.Transform(local)
	if err != nil {
		return spatial.Vec3{}, err
	}
	v := ev.v[ev.bodies[local]]
	return v.V.Add(v.W.Cross(x.R.Apply(stationOnB))), nil
}

// StationAcceleration returns the Ground-frame acceleration of a station
// fixed on a constrained body under this evaluation's accelerations. The
// centripetal term uses the evaluation's velocities, which for acceleration
// evaluations are always the state's realized ones.
func (ev *Evaluation) StationAcceleration(local int, stationOnB spatial.Vec3) (spatial.Vec3, error) {
	x, err := ev.Transform(local)
	if err != nil {
		return spatial.Vec3{}, err
	}
	ix := ev.bodies[local]
	r := x.R.Apply(stationOnB)
	a := ev.a[ix]
	w := ev.v[ix].W
	return a.V.Add(a.W.Cross(r)).Add(w.Cross(w.Cross(r))), nil
}

// relativeInAncestor converts the Ground-frame derivative of a separation
// vector into the derivative taken in the ancestor frame, expressed in the
// ancestor: R_AG * (rdotG - wA x rG). It is the term that makes constraint
// velocity errors vanish when the constrained bodies ride rigidly with a
// moving ancestor.
func (ev *Evaluation) relativeInAncestor(rG, rdotG spatial.Vec3, rGA spatial.Rotation) spatial.Vec3 {
	wA := ev.v[ev.ancestor].W
	return rGA.InvApply(rdotG.Sub(wA.Cross(rG)))
}
