package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

const frame = 1.0 / 60

// newTable builds a match on the built-in physics backend.
func newTable(t *testing.T) *Match {
	t.Helper()
	cfg := config.Default()
	m, err := Build(cfg, NewWorld(cfg), bus.New(), log.NewNop(), fixedRandom(0.9))
	require.NoError(t, err)
	return m
}

// teleport puts the ball in play at pos with velocity v.
func teleport(m *Match, pos, v mgl64.Vec3) {
	placeBall(m, pos)
	body := m.Ball().Body()
	body.SetLinearVelocity(v)
	body.SetAngularVelocity(mgl64.Vec3{})
	body.Activate()
	m.Ball().started, m.Ball().grounded = true, true
}

func TestTableKickoffAfterDrop(t *testing.T) {
	m := newTable(t)
	kickoffs := recordEvents(t, m, EventBallKickoff)

	for i := 0; i < 120 && !m.Ball().Started(); i++ {
		require.NoError(t, m.Tick(frame))
	}
	require.True(t, m.Ball().Started(), "ball never reached kickoff height")
	require.Len(t, *kickoffs, 1)
	assert.Equal(t, KickoffEvent{Direction: 1, Velocity: [3]float64{0, 0, 5}}, (*kickoffs)[0].Data())
	assert.Less(t, m.Ball().Position().Y(), 0.6)
}

func TestTableKickMovesBallTowardGoal(t *testing.T) {
	m := newTable(t)
	contacts := recordEvents(t, m, EventKickContact)

	// Just in front of team A's keeper at z=-14.
	teleport(m, mgl64.Vec3{0, 0.5, -13.1}, mgl64.Vec3{})
	require.NoError(t, m.Apply(Command{Kind: CmdKick, Team: TeamA, Rod: 0}))
	require.NoError(t, m.Tick(frame))

	require.NotEmpty(t, *contacts)
	assert.Greater(t, m.Ball().Body().LinearVelocity().Z(), 5.0)
}

func TestTableFiguresFollowRods(t *testing.T) {
	m := newTable(t)
	require.NoError(t, m.Apply(Command{Kind: CmdKeyDown, Key: KeyForwardB}))
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Tick(frame))
	}

	rod := m.Rods(TeamB)[0]
	assert.InDelta(t, 1.0, rod.Lateral(), 1e-9)
	for _, f := range rod.Figures {
		assert.True(t, physics.IsKinematic(f.Body))
		want := f.Node.WorldPosition()
		got := f.Body.Transform().Origin
		assert.InDelta(t, want.X(), got.X(), 1e-9)
		assert.InDelta(t, want.Z(), got.Z(), 1e-9)
	}
}

func TestTableGoalResetsBall(t *testing.T) {
	m := newTable(t)
	goals := recordEvents(t, m, EventGoalScored)

	teleport(m, mgl64.Vec3{0, 0.6, m.Limits().MaxZ + 0.3}, mgl64.Vec3{0, 0, 5})
	for i := 0; i < 30 && m.Score().B == 0; i++ {
		require.NoError(t, m.Tick(frame))
	}

	require.Len(t, *goals, 1)
	assert.Equal(t, Score{A: 0, B: 1}, m.Score())
	assert.Equal(t, "numbers/1.png", m.Goals().Scoreboard().Texture(TeamB))
	assert.True(t, m.Snapshot().Overlay.Visible)
	assert.False(t, m.Ball().Started())
	assert.InDelta(t, 3, m.Ball().Position().Y(), 0.1)
	assert.InDelta(t, 0, m.Ball().Position().Z(), 1e-9)
}
