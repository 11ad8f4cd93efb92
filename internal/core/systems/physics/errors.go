package physics

import "errors"

var (
	ErrInvalidShape      = errors.New("physics: invalid shape")
	ErrInvalidMass       = errors.New("physics: mass must not be negative")
	ErrUnsupportedShape  = errors.New("physics: dynamic bodies must be spheres")
	ErrKinematicWithMass = errors.New("physics: kinematic bodies must have zero mass")
)
