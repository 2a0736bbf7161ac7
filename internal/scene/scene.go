// Package scene turns a declarative configuration into a realized
// multibody system: bodies with mobilizers and frames, the constraint set
// closing the tree, and a state carrying the configured initial coordinates.
package scene

import (
	"fmt"

	"github.com/san-kum/kinetree/internal/config"
	"github.com/san-kum/kinetree/internal/constraint"
	"github.com/san-kum/kinetree/internal/multibody"
	"github.com/san-kum/kinetree/internal/spatial"
)

// Scene bundles what a run needs: the tree, its constraints, and the
// initial state produced by topology realization.
type Scene struct {
	Sys   *multibody.System
	Set   *constraint.Set
	State *multibody.State
	Names map[string]multibody.BodyIndex
}

// Build constructs and realizes the scene described by cfg. Bodies must be
// listed parents-first; all names must be unique and resolvable.
func Build(cfg *config.Config) (*Scene, error) {
	sys := multibody.NewSystem()
	sys.SetGravity(spatial.Vec3(cfg.Gravity))

	names := map[string]multibody.BodyIndex{"": multibody.Ground, "ground": multibody.Ground}
	for _, bc := range cfg.Bodies {
		if bc.Name == "" || bc.Name == "ground" {
			return nil, fmt.Errorf("scene: reserved or empty body name %q", bc.Name)
		}
		if _, dup := names[bc.Name]; dup {
			return nil, fmt.Errorf("scene: duplicate body name %q", bc.Name)
		}
		parent, ok := names[bc.Parent]
		if !ok {
			return nil, fmt.Errorf("scene: body %q references unknown parent %q", bc.Name, bc.Parent)
		}
		mob, err := mobilizerByName(bc.Mobilizer)
		if err != nil {
			return nil, fmt.Errorf("scene: body %q: %w", bc.Name, err)
		}
		ix, err := sys.AddBody(parent, bc.Name, massProperties(bc),
			frameTransform(bc.Inboard, bc.InboardRotation),
			frameTransform(bc.Outboard, bc.OutboardRotation), mob)
		if err != nil {
			return nil, fmt.Errorf("scene: body %q: %w", bc.Name, err)
		}
		names[bc.Name] = ix
	}

	set, err := constraint.NewSet(sys)
	if err != nil {
		return nil, err
	}
	for i, cc := range cfg.Constraints {
		if err := addConstraint(set, names, cc); err != nil {
			return nil, fmt.Errorf("scene: constraint %d (%s): %w", i, cc.Kind, err)
		}
	}

	s, err := sys.RealizeTopology()
	if err != nil {
		return nil, err
	}
	if err := applyInitialCoordinates(sys, s, cfg, names); err != nil {
		return nil, err
	}
	return &Scene{Sys: sys, Set: set, State: s, Names: names}, nil
}

func mobilizerByName(name string) (multibody.Mobilizer, error) {
	switch name {
	case "weld":
		return multibody.WeldMobilizer{}, nil
	case "pin":
		return multibody.PinMobilizer{}, nil
	case "slider":
		return multibody.SliderMobilizer{}, nil
	case "cartesian":
		return multibody.CartesianMobilizer{}, nil
	case "gimbal":
		return multibody.GimbalMobilizer{}, nil
	default:
		return nil, fmt.Errorf("unknown mobilizer %q", name)
	}
}

func frameTransform(p, rot [3]float64) spatial.Transform {
	r := spatial.IdentityRotation()
	if rot != ([3]float64{}) {
		r = spatial.RotationFromBodyXYZ(spatial.Vec3(rot))
	}
	return spatial.NewTransform(r, spatial.Vec3(p))
}

func massProperties(bc config.BodyConfig) spatial.MassProperties {
	if bc.Inertia == ([3]float64{}) && bc.COM == ([3]float64{}) {
		return spatial.PointMass(bc.Mass)
	}
	inertia := spatial.NewInertia(bc.Inertia[0], bc.Inertia[1], bc.Inertia[2])
	return spatial.NewMassProperties(bc.Mass, spatial.Vec3(bc.COM), inertia)
}

func addConstraint(set *constraint.Set, names map[string]multibody.BodyIndex, cc config.ConstraintConfig) error {
	b1, ok := names[cc.Body1]
	if !ok {
		return fmt.Errorf("unknown body %q", cc.Body1)
	}
	b2, ok := names[cc.Body2]
	if !ok {
		return fmt.Errorf("unknown body %q", cc.Body2)
	}
	var err error
	switch cc.Kind {
	case "rod":
		_, err = set.AddRod(b1, spatial.Vec3(cc.Point1), b2, spatial.Vec3(cc.Point2), cc.Length)
	case "ball":
		_, err = set.AddBall(b1, spatial.Vec3(cc.Point1), b2, spatial.Vec3(cc.Point2))
	case "weld":
		_, err = set.AddWeld(b1, spatial.TranslationTransform(spatial.Vec3(cc.Frame1)),
			b2, spatial.TranslationTransform(spatial.Vec3(cc.Frame2)))
	case "point_in_plane":
		_, err = set.AddPointInPlane(b1, spatial.Vec3(cc.Normal), cc.Height, b2, spatial.Vec3(cc.Point2))
	case "constant_angle":
		_, err = set.AddConstantAngle(b1, spatial.Vec3(cc.Axis1), b2, spatial.Vec3(cc.Axis2), cc.Angle)
	case "constant_orientation":
		_, err = set.AddConstantOrientation(b1, spatial.RotationFromBodyXYZ(spatial.Vec3(cc.Frame1)),
			b2, spatial.RotationFromBodyXYZ(spatial.Vec3(cc.Frame2)))
	default:
		return fmt.Errorf("unknown constraint kind %q", cc.Kind)
	}
	return err
}

func applyInitialCoordinates(sys *multibody.System, s *multibody.State, cfg *config.Config, names map[string]multibody.BodyIndex) error {
	for _, bc := range cfg.Bodies {
		b := sys.Body(names[bc.Name])
		if len(bc.Q) > 0 {
			if len(bc.Q) != b.NumQ() {
				return fmt.Errorf("scene: body %q has %d q values, mobilizer %q needs %d",
					bc.Name, len(bc.Q), bc.Mobilizer, b.NumQ())
			}
			for i, v := range bc.Q {
				if err := s.SetOneQ(b.QStart()+i, v); err != nil {
					return err
				}
			}
		}
		if len(bc.U) > 0 {
			if len(bc.U) != b.NumU() {
				return fmt.Errorf("scene: body %q has %d u values, mobilizer %q needs %d",
					bc.Name, len(bc.U), bc.Mobilizer, b.NumU())
			}
			for i, v := range bc.U {
				if err := s.SetOneU(b.UStart()+i, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Body resolves a configured body name; ok is false for unknown names.
func (sc *Scene) Body(name string) (*multibody.Body, bool) {
	ix, ok := sc.Names[name]
	if !ok {
		return nil, false
	}
	return sc.Sys.Body(ix), true
}
