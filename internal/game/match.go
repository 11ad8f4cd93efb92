package game

import (
	"fmt"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/core/scene"
	"github.com/zeusync/futbolin/internal/core/systems"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// Match is the whole simulation context of one table. It is owned by a
// single goroutine; nothing in it is safe for concurrent use.
type Match struct {
	cfg    *config.Config
	world  physics.World
	bus    bus.EventBus
	logger log.Log

	root      *scene.Node
	registry  *Registry
	ball      *Ball
	rods      [2][]*Rod
	kicks     *KickController
	kinematic *KinematicSync
	goals     *GoalDetector
	controls  *Controls
	systems   *systems.Manager[*Match]

	ready bool
	tick  uint64
	// clock is the simulated time in seconds.
	clock float64
}

// Ready reports whether every entity the systems need exists.
func (m *Match) Ready() bool { return m != nil && m.ready }

func (m *Match) Config() *config.Config    { return m.cfg }
func (m *Match) World() physics.World      { return m.world }
func (m *Match) Bus() bus.EventBus         { return m.bus }
func (m *Match) Scene() *scene.Node        { return m.root }
func (m *Match) Registry() *Registry       { return m.registry }
func (m *Match) Ball() *Ball               { return m.ball }
func (m *Match) Kicks() *KickController    { return m.kicks }
func (m *Match) Kinematic() *KinematicSync { return m.kinematic }
func (m *Match) Goals() *GoalDetector      { return m.goals }
func (m *Match) Controls() *Controls       { return m.controls }
func (m *Match) TickCount() uint64         { return m.tick }
func (m *Match) Clock() float64            { return m.clock }

// Systems exposes the scheduler, mostly for metrics.
func (m *Match) Systems() *systems.Manager[*Match] { return m.systems }

func (m *Match) Rods(team Team) []*Rod {
	if !team.valid() {
		return nil
	}
	return m.rods[team]
}

func (m *Match) Rod(team Team, index int) (*Rod, error) {
	return m.kicks.rod(team, index)
}

func (m *Match) Score() Score { return m.goals.Score() }

// Limits returns the playable z range.
func (m *Match) Limits() FieldLimits {
	return FieldLimits{MinZ: m.cfg.Field.MinZ, MaxZ: m.cfg.Field.MaxZ}
}

// Tick advances the match by dt seconds in the fixed order:
// rod controls, kinematic sync, physics step with per-entity readback, kickoff
// and grounded rules and goal checks, stillness, kick animation, overlay.
func (m *Match) Tick(dt float64) error {
	if !m.Ready() {
		return ErrNotReady
	}
	m.tick++
	m.clock += dt
	if err := m.systems.Update(dt, m); err != nil {
		return fmt.Errorf("tick %d: %w", m.tick, err)
	}
	return nil
}

func (m *Match) afterReadback(e *TrackedEntity) {
	if e == m.ball.entity {
		m.ball.afterReadback()
	}
	m.goals.Check(e.Node.WorldPosition())
}

// matchSystem adapts a step function to systems.System.
type matchSystem struct {
	name  string
	phase systems.ExecutionPhase
	run   func(dt float64, m *Match)
}

func (s matchSystem) Name() string                           { return s.name }
func (s matchSystem) ExecutionPhase() systems.ExecutionPhase { return s.phase }

func (s matchSystem) Update(dt float64, m *Match) error {
	s.run(dt, m)
	return nil
}

func registerSystems(mgr *systems.Manager[*Match]) error {
	list := []matchSystem{
		{"rod-controls", systems.PhaseInput, func(_ float64, m *Match) {
			m.slideSelected()
		}},
		{"kinematic-sync", systems.PhasePreUpdate, func(_ float64, m *Match) {
			m.kinematic.Sync()
		}},
		{"physics-step", systems.PhaseUpdate, func(dt float64, m *Match) {
			m.world.Step(dt, m.cfg.Physics.MaxSubSteps)
			m.registry.Readback(m.afterReadback)
		}},
		{"ball-stillness", systems.PhasePostUpdate, func(dt float64, m *Match) {
			m.ball.CheckStill(dt)
		}},
		{"kick-animation", systems.PhaseLateUpdate, func(dt float64, m *Match) {
			m.kicks.Advance(dt)
		}},
		{"goal-overlay", systems.PhaseLateUpdate, func(dt float64, m *Match) {
			m.goals.celebration.Advance(dt)
		}},
	}
	for _, s := range list {
		if err := mgr.RegisterSystem(s); err != nil {
			return err
		}
	}
	return nil
}
