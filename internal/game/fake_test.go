package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// fakeBody records every call the gameplay core makes. Nothing moves unless a
// test moves it.
type fakeBody struct {
	id         physics.BodyID
	shape      physics.Shape
	mass       float64
	transform  physics.Transform
	lin, ang   mgl64.Vec3
	flags      physics.CollisionFlags
	activation physics.ActivationState

	impulses    []mgl64.Vec3
	activations int
	writes      int
}

func (b *fakeBody) ID() physics.BodyID                           { return b.id }
func (b *fakeBody) Shape() physics.Shape                         { return b.shape }
func (b *fakeBody) Mass() float64                                { return b.mass }
func (b *fakeBody) Transform() physics.Transform                 { return b.transform }
func (b *fakeBody) LinearVelocity() mgl64.Vec3                   { return b.lin }
func (b *fakeBody) SetLinearVelocity(v mgl64.Vec3)               { b.lin = v }
func (b *fakeBody) AngularVelocity() mgl64.Vec3                  { return b.ang }
func (b *fakeBody) SetAngularVelocity(v mgl64.Vec3)              { b.ang = v }
func (b *fakeBody) Friction() float64                            { return 0 }
func (b *fakeBody) Restitution() float64                         { return 0 }
func (b *fakeBody) CollisionFlags() physics.CollisionFlags       { return b.flags }
func (b *fakeBody) SetCollisionFlags(f physics.CollisionFlags)   { b.flags = f }
func (b *fakeBody) ActivationState() physics.ActivationState     { return b.activation }
func (b *fakeBody) SetActivationState(s physics.ActivationState) { b.activation = s }
func (b *fakeBody) Activate()                                    { b.activations++ }

func (b *fakeBody) SetTransform(t physics.Transform) {
	b.transform = t
	b.writes++
}

func (b *fakeBody) ApplyCentralImpulse(imp mgl64.Vec3) {
	b.impulses = append(b.impulses, imp)
	if b.mass > 0 {
		b.lin = b.lin.Add(imp.Mul(1 / b.mass))
	}
}

type fakeWorld struct {
	bodies []*fakeBody
	steps  []float64
	// onStep runs inside Step, standing in for the integrator.
	onStep func(dt float64)
}

func (w *fakeWorld) AddBody(def physics.BodyDef) (physics.Body, error) {
	b := &fakeBody{
		id:         physics.BodyID(len(w.bodies) + 1),
		shape:      def.Shape,
		mass:       def.Mass,
		transform:  def.Transform,
		flags:      def.Flags,
		activation: def.Activation,
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

func (w *fakeWorld) Bodies() []physics.Body {
	out := make([]physics.Body, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = b
	}
	return out
}

func (w *fakeWorld) Gravity() mgl64.Vec3 { return mgl64.Vec3{0, -7.8, 0} }

func (w *fakeWorld) Step(dt float64, _ int) int {
	w.steps = append(w.steps, dt)
	if w.onStep != nil {
		w.onStep(dt)
	}
	return 1
}

// fixedRandom always returns the same draw.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func newFakeMatch(t *testing.T, tune func(*config.Config)) (*Match, *fakeWorld) {
	t.Helper()
	cfg := config.Default()
	if tune != nil {
		tune(cfg)
	}
	w := &fakeWorld{}
	m, err := Build(cfg, w, bus.New(), log.NewNop(), fixedRandom(0.9))
	require.NoError(t, err)
	return m, w
}

func ballBody(t *testing.T, m *Match) *fakeBody {
	t.Helper()
	b, ok := m.Ball().Body().(*fakeBody)
	require.True(t, ok)
	return b
}

// placeBall moves the ball body and its node, as a physics step plus
// readback would.
func placeBall(m *Match, pos mgl64.Vec3) {
	t := physics.At(pos)
	m.Ball().Body().SetTransform(t)
	m.Ball().Entity().Node.SetWorldTransform(t)
}

// recordEvents collects every event of the given type published on the bus.
func recordEvents(t *testing.T, m *Match, eventType string) *[]bus.Event {
	t.Helper()
	var got []bus.Event
	_, err := m.Bus().Subscribe(eventType, func(e bus.Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	return &got
}
