package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid world transform: origin plus orientation.
type Transform struct {
	Origin   mgl64.Vec3
	Rotation mgl64.Quat
}

func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

func NewTransform(origin mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{Origin: origin, Rotation: rotation}
}

// At returns an identity-rotation transform at origin.
func At(origin mgl64.Vec3) Transform {
	return Transform{Origin: origin, Rotation: mgl64.QuatIdent()}
}

// ToLocal maps a world point into the transform's local frame.
func (t Transform) ToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(p.Sub(t.Origin))
}

// ToWorld maps a local point into world space.
func (t Transform) ToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Origin)
}

// ToWorldDir rotates a local direction into world space.
func (t Transform) ToWorldDir(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

func (t Transform) normalized() Transform {
	if t.Rotation.Len() == 0 {
		t.Rotation = mgl64.QuatIdent()
		return t
	}
	t.Rotation = t.Rotation.Normalize()
	return t
}

// AbsSum returns |x|+|y|+|z|.
func AbsSum(v mgl64.Vec3) float64 {
	return math.Abs(v.X()) + math.Abs(v.Y()) + math.Abs(v.Z())
}
