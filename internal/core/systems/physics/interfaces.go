package physics

// Narrow rigid-body service contract consumed by the gameplay core.
// Semantics follow the Bullet conventions the renderer-side tooling expects:
// mass 0 means static, the kinematic collision flag marks bodies whose
// transform is driven from outside, and stepping runs fixed sub steps.

import (
	"github.com/go-gl/mathgl/mgl64"
)

type BodyID uint32

// CollisionFlags is a bit set of per-body collision behaviors.
type CollisionFlags uint32

const (
	FlagStaticObject      CollisionFlags = 1
	FlagKinematic         CollisionFlags = 2
	FlagNoContactResponse CollisionFlags = 4
)

// ActivationState controls whether a body takes part in integration.
type ActivationState uint8

const (
	ActiveTag ActivationState = iota + 1
	IslandSleeping
	WantsDeactivation
	DisableDeactivation
	DisableSimulation
)

type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota + 1
	ShapeBox
	ShapeCylinder
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// Shape is a primitive collision shape. Cylinders are aligned to the local
// Y axis; HalfExtents.X is the radius and HalfExtents.Y the half height.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents mgl64.Vec3
	Margin      float64
}

func Sphere(radius float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

func Box(halfExtents mgl64.Vec3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: halfExtents}
}

func Cylinder(halfExtents mgl64.Vec3) Shape {
	return Shape{Kind: ShapeCylinder, HalfExtents: halfExtents}
}

// WithMargin returns a copy of the shape with the collision margin set.
func (s Shape) WithMargin(margin float64) Shape {
	s.Margin = margin
	return s
}

func (s Shape) validate() error {
	switch s.Kind {
	case ShapeSphere:
		if s.Radius <= 0 {
			return ErrInvalidShape
		}
	case ShapeBox, ShapeCylinder:
		if s.HalfExtents.X() <= 0 || s.HalfExtents.Y() <= 0 || s.HalfExtents.Z() <= 0 {
			return ErrInvalidShape
		}
	default:
		return ErrInvalidShape
	}
	if s.Margin < 0 {
		return ErrInvalidShape
	}
	return nil
}

// BodyDef describes a body to create.
type BodyDef struct {
	Shape       Shape
	Mass        float64
	Friction    float64
	Restitution float64
	Transform   Transform
	Flags       CollisionFlags
	Activation  ActivationState
}

// Body is an opaque handle into the physics service.
type Body interface {
	ID() BodyID
	Shape() Shape
	Mass() float64

	Transform() Transform
	SetTransform(Transform)

	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(mgl64.Vec3)
	ApplyCentralImpulse(mgl64.Vec3)

	Friction() float64
	Restitution() float64

	CollisionFlags() CollisionFlags
	SetCollisionFlags(CollisionFlags)
	ActivationState() ActivationState
	SetActivationState(ActivationState)
	// Activate wakes a sleeping body.
	Activate()
}

// World owns bodies and advances the simulation.
type World interface {
	AddBody(def BodyDef) (Body, error)
	Bodies() []Body
	Gravity() mgl64.Vec3
	// Step advances by dt seconds using at most maxSubSteps fixed sub steps
	// and returns the number of sub steps taken.
	Step(dt float64, maxSubSteps int) int
}

// IsKinematic reports whether the kinematic bit is set on the body.
func IsKinematic(b Body) bool {
	return b != nil && b.CollisionFlags()&FlagKinematic != 0
}
