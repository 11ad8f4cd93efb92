package game

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

const stillTick = 0.1

func assertAtKickoffPoint(t *testing.T, m *Match) {
	t.Helper()
	body := ballBody(t, m)
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, body.transform.Origin)
	assert.Equal(t, mgl64.QuatIdent(), body.transform.Rotation)
	assert.Equal(t, mgl64.Vec3{}, body.lin)
	assert.Equal(t, mgl64.Vec3{}, body.ang)
	assert.Equal(t, mgl64.Vec3{0, 3, 0}, m.Ball().Position())
	assert.False(t, m.Ball().Started())
	assert.Equal(t, BallUnstarted, m.Ball().Phase())
}

func TestStillnessResetFiresOnceAtLimit(t *testing.T) {
	m, _ := newFakeMatch(t, nil)
	ball := m.Ball()
	body := ballBody(t, m)

	placeBall(m, mgl64.Vec3{3, 0.5, 2})
	ball.started, ball.grounded = true, true
	body.lin = mgl64.Vec3{0.01, -0.01, 0.02}

	for i := 1; i < 50; i++ {
		require.False(t, ball.CheckStill(stillTick), "no reset at %.1fs", float64(i)*stillTick)
	}
	assert.InDelta(t, 4.9, ball.StillTime(), 1e-9)

	assert.True(t, ball.CheckStill(stillTick), "reset at 5.0s")
	assertAtKickoffPoint(t, m)
	assert.Zero(t, ball.StillTime())
	assert.EqualValues(t, 1, ball.Resets())

	assert.False(t, ball.CheckStill(stillTick))
	assert.EqualValues(t, 1, ball.Resets())
}

func TestStillnessSpikeRestartsAccumulator(t *testing.T) {
	m, _ := newFakeMatch(t, nil)
	ball := m.Ball()
	body := ballBody(t, m)
	ball.started = true

	for i := 0; i < 45; i++ {
		require.False(t, ball.CheckStill(stillTick))
	}

	body.lin = mgl64.Vec3{0.03, 0, -0.03}
	assert.False(t, ball.CheckStill(stillTick))
	assert.Zero(t, ball.StillTime())

	body.lin = mgl64.Vec3{}
	for i := 0; i < 49; i++ {
		require.False(t, ball.CheckStill(stillTick))
	}
	assert.True(t, ball.Started(), "no reset without continuous stillness")
	assert.Zero(t, ball.Resets())
}

func TestStillnessEndToEnd(t *testing.T) {
	m, _ := newFakeMatch(t, nil)
	ball := m.Ball()
	body := ballBody(t, m)
	resets := recordEvents(t, m, EventBallReset)

	ball.Reset(ResetManual)
	assertAtKickoffPoint(t, m)

	for i := 0; i < 49; i++ {
		require.False(t, ball.CheckStill(stillTick))
	}

	body.lin = mgl64.Vec3{0, 0, 0.2}
	require.False(t, ball.CheckStill(stillTick))
	body.lin = mgl64.Vec3{}

	// 4.9s of stillness after the nudge; 9.9s since the manual reset.
	for i := 0; i < 49; i++ {
		require.False(t, ball.CheckStill(stillTick))
	}
	assert.True(t, ball.CheckStill(stillTick))

	require.Len(t, *resets, 2)
	assert.Equal(t, ResetEvent{Reason: ResetManual}, (*resets)[0].Data())
	assert.Equal(t, ResetEvent{Reason: ResetStill}, (*resets)[1].Data())
}

func TestKickoff(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		want float64
	}{
		{"low draw goes to -z", 0.2, -5},
		{"high draw goes to +z", 0.7, 5},
		{"half goes to +z", 0.5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newFakeMatch(t, nil)
			ball := m.Ball()
			ball.rng = fixedRandom(tt.draw)
			body := ballBody(t, m)
			kickoffs := recordEvents(t, m, EventBallKickoff)

			placeBall(m, mgl64.Vec3{1, 0.61, 0})
			ball.afterReadback()
			assert.False(t, ball.Started())

			body.lin = mgl64.Vec3{0.3, -4, 0}
			placeBall(m, mgl64.Vec3{1, 0.59, 0})
			ball.afterReadback()

			assert.True(t, ball.Started())
			assert.True(t, ball.Grounded())
			assert.Equal(t, BallGrounded, ball.Phase())
			assert.Equal(t, mgl64.Vec3{0, 0, tt.want}, body.lin)
			assert.InDelta(t, 5, math.Hypot(body.lin.X(), body.lin.Z()), 1e-12)
			require.Len(t, *kickoffs, 1)

			// Started balls never get a second kickoff.
			body.lin = mgl64.Vec3{1, 0, 1}
			ball.afterReadback()
			assert.Equal(t, mgl64.Vec3{1, 0, 1}, body.lin)
			assert.Len(t, *kickoffs, 1)
		})
	}
}

func TestGroundedCeilingClamp(t *testing.T) {
	m, _ := newFakeMatch(t, nil)
	ball := m.Ball()
	body := ballBody(t, m)

	// Before kickoff the ceiling does not apply.
	body.lin = mgl64.Vec3{0, 3, 0}
	placeBall(m, mgl64.Vec3{0, 2.5, 0})
	ball.afterReadback()
	assert.Equal(t, 2.5, body.transform.Origin.Y())
	assert.Equal(t, 3.0, body.lin.Y())

	placeBall(m, mgl64.Vec3{0, 0.5, 0})
	ball.afterReadback()
	require.True(t, ball.Grounded())

	rot := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize())
	body.SetTransform(physics.NewTransform(mgl64.Vec3{1.5, 1.7, -3}, rot))
	body.lin = mgl64.Vec3{2, 3, -1}
	before := body.activations
	ball.afterReadback()

	assert.Equal(t, mgl64.Vec3{1.5, 1.2, -3}, body.transform.Origin)
	assert.Equal(t, rot, body.transform.Rotation)
	assert.Equal(t, mgl64.Vec3{2, 0.5, -1}, body.lin)
	assert.Greater(t, body.activations, before)
	assert.InDelta(t, 1.2, ball.Position().Y(), 1e-12)

	for _, vy := range []float64{0.5, 0.3, -2} {
		body.lin = mgl64.Vec3{0, vy, 0}
		ball.afterReadback()
		assert.Equal(t, vy, body.lin.Y())
	}
}

func TestResetClearsLifecycle(t *testing.T) {
	m, _ := newFakeMatch(t, nil)
	ball := m.Ball()
	body := ballBody(t, m)

	placeBall(m, mgl64.Vec3{4, 0.5, -7})
	ball.afterReadback()
	body.ang = mgl64.Vec3{1, 2, 3}
	ball.stillTime = 2

	ball.Reset(ResetManual)
	assertAtKickoffPoint(t, m)
	assert.False(t, ball.Grounded())
	assert.Zero(t, ball.StillTime())
}

func TestBallWithoutBodyIsInert(t *testing.T) {
	var nilBall *Ball
	assert.Nil(t, nilBall.Body())
	assert.Equal(t, mgl64.Vec3{}, nilBall.Position())

	ball := &Ball{}
	assert.NotPanics(t, func() {
		ball.afterReadback()
		ball.Reset(ResetManual)
		ball.ApplyImpulse(mgl64.Vec3{0, 0, 10})
		assert.False(t, ball.CheckStill(10))
	})
	assert.Zero(t, ball.Resets())
}
