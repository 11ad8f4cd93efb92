package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Defaults mirror Bullet's discrete dynamics world.
const (
	DefaultFixedTimeStep = 1.0 / 60.0

	sleepLinearThreshold  = 0.8
	sleepAngularThreshold = 1.0
	sleepDelay            = 2.0
	frictionCap           = 10.0
	stepEpsilon           = 1e-9
)

// WorldConfig tunes the built-in backend.
type WorldConfig struct {
	Gravity       mgl64.Vec3
	FixedTimeStep float64
	// RollingDamping is the fraction of linear speed a ball in contact loses
	// per second; Bullet has no rolling resistance for spheres, so without it
	// a rolling ball never settles.
	RollingDamping float64
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:        mgl64.Vec3{0, -9.81, 0},
		FixedTimeStep:  DefaultFixedTimeStep,
		RollingDamping: 0.3,
	}
}

var _ World = (*world)(nil)

// world is a small impulse-based backend: dynamic spheres against static and
// kinematic boxes, cylinders and spheres. It is enough for a single ball on
// a table and keeps the service contract swappable.
type world struct {
	mu          sync.Mutex
	cfg         WorldConfig
	bodies      []*body
	nextID      BodyID
	accumulator float64
}

// NewWorld creates the built-in physics backend.
func NewWorld(cfg WorldConfig) World {
	if cfg.FixedTimeStep <= 0 {
		cfg.FixedTimeStep = DefaultFixedTimeStep
	}
	return &world{cfg: cfg}
}

func (w *world) Gravity() mgl64.Vec3 { return w.cfg.Gravity }

func (w *world) AddBody(def BodyDef) (Body, error) {
	if err := def.Shape.validate(); err != nil {
		return nil, err
	}
	if def.Mass < 0 {
		return nil, ErrInvalidMass
	}
	if def.Flags&FlagKinematic != 0 && def.Mass != 0 {
		return nil, ErrKinematicWithMass
	}
	if def.Mass > 0 && def.Shape.Kind != ShapeSphere {
		return nil, ErrUnsupportedShape
	}

	flags := def.Flags
	if def.Mass == 0 && flags&FlagKinematic == 0 {
		flags |= FlagStaticObject
	}
	activation := def.Activation
	if activation == 0 {
		activation = ActiveTag
	}
	tr := def.Transform
	if tr.Rotation.Len() == 0 {
		tr.Rotation = mgl64.QuatIdent()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	b := &body{
		world:       w,
		id:          w.nextID,
		shape:       def.Shape,
		mass:        def.Mass,
		friction:    def.Friction,
		restitution: def.Restitution,
		transform:   tr.normalized(),
		prevOrigin:  tr.Origin,
		flags:       flags,
		activation:  activation,
	}
	if def.Mass > 0 {
		b.invMass = 1 / def.Mass
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

func (w *world) Bodies() []Body {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Body, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b
	}
	return out
}

func (w *world) Step(dt float64, maxSubSteps int) int {
	if dt <= 0 {
		return 0
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.saveKinematicState(dt)

	fixed := w.cfg.FixedTimeStep
	w.accumulator += dt
	steps := 0
	for w.accumulator+stepEpsilon >= fixed && steps < maxSubSteps {
		w.singleStep(fixed)
		w.accumulator -= fixed
		steps++
	}
	if steps == maxSubSteps && w.accumulator >= fixed {
		// Bullet drops the time it could not simulate.
		w.accumulator = 0
	}
	if w.accumulator < 0 {
		w.accumulator = 0
	}
	return steps
}

// saveKinematicState derives kinematic body velocity from how far the owner
// moved them since the previous step.
func (w *world) saveKinematicState(dt float64) {
	for _, b := range w.bodies {
		if b.flags&FlagKinematic == 0 {
			continue
		}
		b.linVel = b.transform.Origin.Sub(b.prevOrigin).Mul(1 / dt)
		b.prevOrigin = b.transform.Origin
	}
}

func (w *world) singleStep(dt float64) {
	w.wakeTouchedSleepers()
	for _, b := range w.bodies {
		if !b.isSimulated() {
			continue
		}
		b.linVel = b.linVel.Add(w.cfg.Gravity.Mul(dt))
		b.transform.Origin = b.transform.Origin.Add(b.linVel.Mul(dt))
		b.integrateRotation(dt)

		touching := false
		for _, other := range w.bodies {
			if other == b || other.mass > 0 || other.flags&FlagNoContactResponse != 0 {
				continue
			}
			if other.activation == DisableSimulation {
				continue
			}
			if b.resolveAgainst(other) {
				touching = true
			}
		}
		if touching && w.cfg.RollingDamping > 0 {
			damp := math.Max(0, 1-w.cfg.RollingDamping*dt)
			b.linVel = b.linVel.Mul(damp)
			b.angVel = b.angVel.Mul(damp)
		}
		b.updateDeactivation(dt)
	}
}

// wakeTouchedSleepers wakes sleeping dynamic bodies that a moving kinematic
// body is pressing into.
func (w *world) wakeTouchedSleepers() {
	for _, b := range w.bodies {
		if b.invMass == 0 || b.activation != IslandSleeping {
			continue
		}
		for _, k := range w.bodies {
			if k.flags&FlagKinematic == 0 || k.linVel.Len() == 0 {
				continue
			}
			if _, _, ok := sphereContact(b.transform.Origin, b.shape.Radius, k); ok {
				b.wakeLocked()
				break
			}
		}
	}
}

type body struct {
	world *world

	id          BodyID
	shape       Shape
	mass        float64
	invMass     float64
	friction    float64
	restitution float64

	transform  Transform
	prevOrigin mgl64.Vec3
	linVel     mgl64.Vec3
	angVel     mgl64.Vec3

	flags      CollisionFlags
	activation ActivationState
	idleTime   float64
}

func (b *body) ID() BodyID   { return b.id }
func (b *body) Shape() Shape { return b.shape }
func (b *body) Mass() float64 {
	return b.mass
}
func (b *body) Friction() float64    { return b.friction }
func (b *body) Restitution() float64 { return b.restitution }

// Accessors take the world lock so transport goroutines reading a body for
// diagnostics never observe a half-written transform.

func (b *body) Transform() Transform {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.transform
}

func (b *body) SetTransform(t Transform) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.transform = t.normalized()
}

func (b *body) LinearVelocity() mgl64.Vec3 {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.linVel
}

func (b *body) SetLinearVelocity(v mgl64.Vec3) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.linVel = v
}

func (b *body) AngularVelocity() mgl64.Vec3 {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.angVel
}

func (b *body) SetAngularVelocity(v mgl64.Vec3) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.angVel = v
}

func (b *body) ApplyCentralImpulse(impulse mgl64.Vec3) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(impulse.Mul(b.invMass))
	b.wakeLocked()
}

func (b *body) CollisionFlags() CollisionFlags {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.flags
}

func (b *body) SetCollisionFlags(f CollisionFlags) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.flags = f
}

func (b *body) ActivationState() ActivationState {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	return b.activation
}

func (b *body) SetActivationState(s ActivationState) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.activation = s
}

func (b *body) Activate() {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.wakeLocked()
}

func (b *body) wakeLocked() {
	if b.activation != DisableDeactivation && b.activation != DisableSimulation {
		b.activation = ActiveTag
	}
	b.idleTime = 0
}

func (b *body) isSimulated() bool {
	if b.invMass == 0 || b.flags&FlagKinematic != 0 {
		return false
	}
	return b.activation == ActiveTag || b.activation == WantsDeactivation || b.activation == DisableDeactivation
}

func (b *body) integrateRotation(dt float64) {
	if b.angVel.Len() == 0 {
		return
	}
	spin := mgl64.Quat{W: 0, V: b.angVel}.Mul(b.transform.Rotation).Scale(0.5 * dt)
	b.transform.Rotation = b.transform.Rotation.Add(spin).Normalize()
}

func (b *body) updateDeactivation(dt float64) {
	if b.activation == DisableDeactivation {
		return
	}
	if b.linVel.Len() < sleepLinearThreshold && b.angVel.Len() < sleepAngularThreshold {
		b.idleTime += dt
	} else {
		b.idleTime = 0
		b.activation = ActiveTag
		return
	}
	if b.idleTime >= sleepDelay {
		b.activation = IslandSleeping
		b.linVel = mgl64.Vec3{}
		b.angVel = mgl64.Vec3{}
	}
}

// resolveAgainst pushes the sphere out of a non-dynamic body and applies
// restitution and Coulomb friction. It reports whether they touch.
func (b *body) resolveAgainst(other *body) bool {
	radius := b.shape.Radius
	center := b.transform.Origin

	normal, depth, ok := sphereContact(center, radius, other)
	if !ok {
		return false
	}

	b.transform.Origin = center.Add(normal.Mul(depth))

	rel := b.linVel.Sub(other.linVel)
	vn := rel.Dot(normal)
	if vn < 0 {
		e := b.restitution * other.restitution
		jn := -(1 + e) * vn
		b.linVel = b.linVel.Add(normal.Mul(jn))

		tangent := rel.Sub(normal.Mul(vn))
		if speed := tangent.Len(); speed > 0 {
			mu := math.Min(b.friction*other.friction, frictionCap)
			dv := math.Min(speed, mu*jn)
			b.linVel = b.linVel.Sub(tangent.Mul(dv / speed))
		}
	}

	// Rolling without slipping about the contact normal.
	b.angVel = normal.Cross(b.linVel.Sub(other.linVel)).Mul(1 / radius)
	if other.flags&FlagKinematic != 0 {
		b.wakeLocked()
	}
	return true
}

// sphereContact returns the push-out normal and depth for a sphere against
// a static or kinematic shape.
func sphereContact(center mgl64.Vec3, radius float64, other *body) (mgl64.Vec3, float64, bool) {
	local := other.transform.ToLocal(center)

	var closest mgl64.Vec3
	inside := false
	var insideNormal mgl64.Vec3
	var insideDepth float64

	switch other.shape.Kind {
	case ShapeSphere:
		d := local.Len()
		limit := radius + other.shape.Radius
		if d >= limit {
			return mgl64.Vec3{}, 0, false
		}
		n := mgl64.Vec3{0, 1, 0}
		if d > 0 {
			n = local.Mul(1 / d)
		}
		return other.transform.ToWorldDir(n), limit - d, true

	case ShapeBox:
		h := other.shape.HalfExtents
		closest = mgl64.Vec3{
			clamp(local.X(), -h.X(), h.X()),
			clamp(local.Y(), -h.Y(), h.Y()),
			clamp(local.Z(), -h.Z(), h.Z()),
		}
		if closest == local {
			inside = true
			insideNormal, insideDepth = boxExit(local, h)
		}

	case ShapeCylinder:
		h := other.shape.HalfExtents
		r := h.X()
		radial := mgl64.Vec3{local.X(), 0, local.Z()}
		rl := radial.Len()
		cy := clamp(local.Y(), -h.Y(), h.Y())
		if rl <= r && cy == local.Y() {
			inside = true
			sideDepth := r - rl
			capDepth := h.Y() - math.Abs(local.Y())
			if capDepth < sideDepth {
				insideNormal = mgl64.Vec3{0, sign(local.Y()), 0}
				insideDepth = capDepth
			} else {
				insideNormal = mgl64.Vec3{1, 0, 0}
				if rl > 0 {
					insideNormal = radial.Mul(1 / rl)
				}
				insideDepth = sideDepth
			}
		} else {
			if rl > r {
				radial = radial.Mul(r / rl)
			}
			closest = mgl64.Vec3{radial.X(), cy, radial.Z()}
		}

	default:
		return mgl64.Vec3{}, 0, false
	}

	if inside {
		return other.transform.ToWorldDir(insideNormal), insideDepth + radius, true
	}

	diff := local.Sub(closest)
	d := diff.Len()
	if d >= radius || d == 0 {
		return mgl64.Vec3{}, 0, false
	}
	return other.transform.ToWorldDir(diff.Mul(1 / d)), radius - d, true
}

// boxExit finds the face of least penetration for a point inside a box.
func boxExit(p, h mgl64.Vec3) (mgl64.Vec3, float64) {
	best := math.Inf(1)
	var n mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		d := h[axis] - math.Abs(p[axis])
		if d < best {
			best = d
			n = mgl64.Vec3{}
			n[axis] = sign(p[axis])
		}
	}
	return n, best
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
