package multibody

import (
	"fmt"
	"math"

	"github.com/san-kum/kinetree/internal/spatial"
	"github.com/san-kum/kinetree/internal/stage"
)

// Realize advances the state's cache from its current stage up to target,
// computing each intermediate stage in order. Components registered on the
// system are realized after the tree at each stage, before the stage
// marker advances.
func (sys *System) Realize(s *State, target stage.Stage) error {
	if !sys.realized {
		return fmt.Errorf("%w: system topology not realized", ErrTopologyMismatch)
	}
	if s.systemID != sys.id {
		return fmt.Errorf("%w: state belongs to a different system", ErrTopologyMismatch)
	}
	if s.topologyVersion != sys.topologyVersion {
		return fmt.Errorf("%w: state built for topology version %d, system is at %d",
			ErrTopologyMismatch, s.topologyVersion, sys.topologyVersion)
	}
	if target > stage.Acceleration {
		return fmt.Errorf("multibody: invalid target stage %d", target)
	}

	for g := s.stg + 1; g <= target; g++ {
		var err error
		switch g {
		case stage.Model, stage.Topology:
			// allocation happened at topology realization; nothing to do
		case stage.Instance:
			err = sys.realizeInstance(s)
		case stage.Position:
			err = sys.realizePosition(s)
		case stage.Velocity:
			err = sys.realizeVelocity(s)
		case stage.Dynamics:
			err = sys.realizeDynamics(s)
		case stage.Acceleration:
			err = sys.realizeAcceleration(s)
		}
		if err != nil {
			return err
		}
		for _, c := range sys.components {
			if err := c.Realize(sys, s, g); err != nil {
				return err
			}
		}
		s.stg = g
	}
	return nil
}

func (sys *System) realizeInstance(s *State) error {
	for _, b := range sys.bodies {
		if b.index == Ground {
			continue
		}
		mp := sys.instanceMass(s, b.index)
		if mp.Mass < 0 || math.IsNaN(mp.Mass) {
			return fmt.Errorf("multibody: body %q has invalid mass %v", b.name, mp.Mass)
		}
	}
	return nil
}

// realizePosition is the forward kinematic sweep: each body's X_FM from its
// own q slice, composed with the parent's already-computed ground transform:
// X_GB = X_GP * X_PF * X_FM * inv(X_BM).
func (sys *System) realizePosition(s *State) error {
	s.xGB[Ground] = spatial.IdentityTransform()
	s.xFM[Ground] = spatial.IdentityTransform()
	for _, ix := range sys.order {
		if ix == Ground {
			continue
		}
		b := sys.bodies[ix]
		xFM := b.mob.Transform(b.qSlice(s.q))
		s.xFM[ix] = xFM

		xGF := s.xGB[b.parent].Mul(sys.instanceInboard(s, ix))
		xGM := xGF.Mul(xFM)
		s.xGB[ix] = xGM.Mul(sys.instanceOutboard(s, ix).Inv())
	}
	return nil
}

// sweepVelocities computes every body's spatial velocity in Ground for an
// arbitrary u-like vector, using the already-realized position cache. The
// result is exactly linear in u, which the constraint Jacobians rely on.
func (sys *System) sweepVelocities(s *State, ulike []float64, out []spatial.SpatialVec) {
	out[Ground] = spatial.SpatialVec{}
	for _, ix := range sys.order {
		if ix == Ground {
			continue
		}
		b := sys.bodies[ix]
		vFM := b.mob.Velocity(b.qSlice(s.q), b.uSlice(ulike))

		xGF := s.xGB[b.parent].Mul(sys.instanceInboard(s, ix))
		xGM := xGF.Mul(s.xFM[ix])

		parent := out[b.parent]
		wRel := xGF.R.Apply(vFM.W)
		wGB := parent.W.Add(wRel)

		pPM := xGM.P.Sub(s.xGB[b.parent].P)
		vOM := parent.V.Add(parent.W.Cross(pPM)).Add(xGF.R.Apply(vFM.V))

		pMB := s.xGB[ix].P.Sub(xGM.P)
		vOB := vOM.Add(wGB.Cross(pMB))

		out[ix] = spatial.SpatialVec{W: wGB, V: vOB}
	}
}

func (sys *System) realizeVelocity(s *State) error {
	sys.sweepVelocities(s, s.u, s.vGB)
	for _, ix := range sys.order {
		b := sys.bodies[ix]
		if b.NumQ() == 0 {
			continue
		}
		b.mob.QDot(b.qSlice(s.q), b.uSlice(s.u), b.qSlice(s.qdot))
	}
	return nil
}

func (sys *System) realizeDynamics(s *State) error {
	g := sys.gravity
	for _, ix := range sys.order {
		if ix == Ground {
			s.massG[Ground] = spatial.MassProperties{}
			s.gravityF[Ground] = spatial.SpatialVec{}
			continue
		}
		mp := sys.instanceMass(s, ix)
		rGB := s.xGB[ix].R
		mpG := mp.Reexpress(rGB)
		s.massG[ix] = mpG

		f := g.Scale(mpG.Mass)
		s.gravityF[ix] = spatial.SpatialVec{W: mpG.COM.Cross(f), V: f}
	}
	return nil
}

// sweepAccelerations computes every body's spatial acceleration in Ground
// for an arbitrary udot-like vector, using the state's own q and u. The
// parent composition carries the centripetal and Coriolis terms.
func (sys *System) sweepAccelerations(s *State, udotlike []float64, out []spatial.SpatialVec) {
	out[Ground] = spatial.SpatialVec{}
	for _, ix := range sys.order {
		if ix == Ground {
			continue
		}
		b := sys.bodies[ix]
		q, u := b.qSlice(s.q), b.uSlice(s.u)
		vFM := b.mob.Velocity(q, u)
		aFM := b.mob.Acceleration(q, u, b.uSlice(udotlike))

		xGF := s.xGB[b.parent].Mul(sys.instanceInboard(s, ix))
		xGM := xGF.Mul(s.xFM[ix])

		vP := s.vGB[b.parent]
		aP := out[b.parent]
		wGB := s.vGB[ix].W

		wRelG := xGF.R.Apply(vFM.W)
		bGB := aP.W.Add(vP.W.Cross(wRelG)).Add(xGF.R.Apply(aFM.W))

		pPM := xGM.P.Sub(s.xGB[b.parent].P)
		vRelG := xGF.R.Apply(vFM.V)
		vOM := vP.V.Add(vP.W.Cross(pPM)).Add(vRelG)

		// d/dt of vOM: parent terms, transport of the lever arm, and the
		// Coriolis contribution from the mobilizer's own rate
		aOM := aP.V.
			Add(aP.W.Cross(pPM)).
			Add(vP.W.Cross(vOM.Sub(vP.V))).
			Add(vP.W.Cross(vRelG)).
			Add(xGF.R.Apply(aFM.V))

		pMB := s.xGB[ix].P.Sub(xGM.P)
		aOB := aOM.Add(bGB.Cross(pMB)).Add(wGB.Cross(wGB.Cross(pMB)))

		out[ix] = spatial.SpatialVec{W: bGB, V: aOB}
	}
}

func (sys *System) realizeAcceleration(s *State) error {
	sys.sweepAccelerations(s, s.udot, s.aGB)
	return nil
}

// CalcBodyVelocitiesFromU is the operator form of the velocity sweep: the
// spatial velocity every body would have if the generalized speeds were
// ulike, holding the realized positions fixed. Position stage.
func (sys *System) CalcBodyVelocitiesFromU(s *State, ulike []float64) ([]spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Position, "CalcBodyVelocitiesFromU"); err != nil {
		return nil, err
	}
	if len(ulike) != sys.nu {
		return nil, ErrDimensionMismatch
	}
	out := make([]spatial.SpatialVec, len(sys.bodies))
	sys.sweepVelocities(s, ulike, out)
	return out, nil
}

// CalcBodyAccelerationsFromUDot is the operator form of the acceleration
// sweep for an arbitrary udot-like vector, holding the realized positions
// and velocities fixed. Velocity stage.
func (sys *System) CalcBodyAccelerationsFromUDot(s *State, udotlike []float64) ([]spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Velocity, "CalcBodyAccelerationsFromUDot"); err != nil {
		return nil, err
	}
	if len(udotlike) != sys.nu {
		return nil, ErrDimensionMismatch
	}
	out := make([]spatial.SpatialVec, len(sys.bodies))
	sys.sweepAccelerations(s, udotlike, out)
	return out, nil
}

// BodyVelocities returns the per-body spatial velocities in Ground;
// Velocity stage.
func (sys *System) BodyVelocities(s *State) ([]spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Velocity, "BodyVelocities"); err != nil {
		return nil, err
	}
	return s.vGB, nil
}

// BodyAccelerations returns the per-body spatial accelerations in Ground;
// Acceleration stage.
func (sys *System) BodyAccelerations(s *State) ([]spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Acceleration, "BodyAccelerations"); err != nil {
		return nil, err
	}
	return s.aGB, nil
}

// GravityForces returns the per-body gravity spatial forces in Ground;
// Dynamics stage.
func (sys *System) GravityForces(s *State) ([]spatial.SpatialVec, error) {
	if err := s.checkStage(stage.Dynamics, "GravityForces"); err != nil {
		return nil, err
	}
	return s.gravityF, nil
}
