package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// BallPhase is the lifecycle state of the ball.
type BallPhase uint8

const (
	BallUnstarted BallPhase = iota
	BallInPlay
	BallGrounded
)

func (p BallPhase) String() string {
	switch p {
	case BallUnstarted:
		return "unstarted"
	case BallInPlay:
		return "in_play"
	case BallGrounded:
		return "grounded"
	default:
		return "unknown"
	}
}

// Random is the source of the kickoff direction. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// Ball owns the lifecycle rules of the single ball: kickoff, the grounded
// soft ceiling and the stillness reset. Every method is a no-op while the
// ball has no body.
type Ball struct {
	entity *TrackedEntity
	cfg    config.BallConfig
	rng    Random
	pub    publisher
	logger log.Log

	started  bool
	grounded bool
	// stillTime is the continuous time spent below the stillness speed, in
	// seconds.
	stillTime float64
	resets    uint64
}

func newBall(entity *TrackedEntity, cfg config.BallConfig, rng Random, pub publisher, logger log.Log) *Ball {
	return &Ball{
		entity: entity,
		cfg:    cfg,
		rng:    rng,
		pub:    pub,
		logger: logger.With(log.String("component", "ball")),
	}
}

func (b *Ball) Entity() *TrackedEntity { return b.entity }

func (b *Ball) Body() physics.Body {
	if b == nil || b.entity == nil {
		return nil
	}
	return b.entity.Body
}

// Position is the ball's rendered world position as of the last readback.
func (b *Ball) Position() mgl64.Vec3 {
	if b == nil || b.entity == nil {
		return mgl64.Vec3{}
	}
	return b.entity.Node.WorldPosition()
}

func (b *Ball) Started() bool      { return b.started }
func (b *Ball) Grounded() bool     { return b.grounded }
func (b *Ball) StillTime() float64 { return b.stillTime }

// Resets counts every reset since the match was built.
func (b *Ball) Resets() uint64 { return b.resets }

func (b *Ball) Phase() BallPhase {
	switch {
	case !b.started:
		return BallUnstarted
	case b.grounded:
		return BallGrounded
	default:
		return BallInPlay
	}
}

func (b *Ball) startPoint() mgl64.Vec3 {
	return mgl64.Vec3{b.cfg.Start[0], b.cfg.Start[1], b.cfg.Start[2]}
}

// afterReadback runs the kickoff and grounded rules against the body state
// that was just copied to the node.
func (b *Ball) afterReadback() {
	body := b.Body()
	if body == nil {
		return
	}

	t := body.Transform()
	if !b.started && t.Origin.Y() < b.cfg.KickoffHeight {
		b.kickoff(body)
	}
	if !b.grounded {
		return
	}

	if v := body.LinearVelocity(); v.Y() > b.cfg.MaxUpwardSpeed {
		v[1] = b.cfg.MaxUpwardSpeed
		body.SetLinearVelocity(v)
	}
	if t.Origin.Y() > b.cfg.CeilingHeight {
		t.Origin[1] = b.cfg.CeilingHeight
		body.SetTransform(t)
		body.Activate()
		b.entity.Node.SetWorldTransform(t)
	}
}

func (b *Ball) kickoff(body physics.Body) {
	dir := 1.0
	if b.rng != nil && b.rng.Float64() < 0.5 {
		dir = -1
	}
	v := mgl64.Vec3{0, 0, dir * b.cfg.KickoffSpeed}
	body.SetLinearVelocity(v)
	b.started = true
	b.grounded = true

	b.logger.Info("kickoff", log.Float64("direction", dir))
	b.pub.publish(EventBallKickoff, KickoffEvent{Direction: dir, Velocity: v})
}

// CheckStill accumulates continuous stillness and resets the ball when it
// reaches the limit. It reports whether a reset happened.
func (b *Ball) CheckStill(dt float64) bool {
	body := b.Body()
	if body == nil {
		return false
	}

	if physics.AbsSum(body.LinearVelocity()) >= b.cfg.StillSpeed {
		b.stillTime = 0
		return false
	}

	b.stillTime += dt
	if b.stillTime >= b.cfg.StillLimit.Seconds()-timeEpsilon {
		b.Reset(ResetStill)
		return true
	}
	return false
}

// Reset puts the ball back at the kickoff point, at rest and unstarted.
func (b *Ball) Reset(reason ResetReason) {
	body := b.Body()
	if body == nil {
		return
	}

	t := physics.At(b.startPoint())
	body.SetTransform(t)
	body.SetLinearVelocity(mgl64.Vec3{})
	body.SetAngularVelocity(mgl64.Vec3{})
	body.Activate()
	b.entity.Node.SetWorldTransform(t)

	b.started = false
	b.grounded = false
	b.stillTime = 0
	b.resets++

	b.logger.Info("ball reset", log.String("reason", string(reason)))
	b.pub.publish(EventBallReset, ResetEvent{Reason: reason})
}

// ApplyImpulse pushes the ball and wakes it.
func (b *Ball) ApplyImpulse(impulse mgl64.Vec3) {
	body := b.Body()
	if body == nil {
		return
	}
	body.ApplyCentralImpulse(impulse)
	body.Activate()
}
