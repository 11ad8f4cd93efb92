package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/core/scene"
	"github.com/zeusync/futbolin/internal/core/systems"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// NewWorld creates the physics backend tuned by cfg.
func NewWorld(cfg *config.Config) physics.World {
	return physics.NewWorld(physics.WorldConfig{
		Gravity:        mgl64.Vec3{0, cfg.Physics.Gravity, 0},
		FixedTimeStep:  cfg.Physics.FixedTimeStep,
		RollingDamping: cfg.Physics.RollingDamping,
	})
}

// Build creates every body and scene node of the table in world and returns
// a ready match. Bodies live for the whole match; resets mutate them.
func Build(cfg *config.Config, world physics.World, eventBus bus.EventBus, logger log.Log, rng Random) (*Match, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}

	m := &Match{
		cfg:      cfg,
		world:    world,
		bus:      eventBus,
		logger:   logger.With(log.String("component", "match")),
		root:     scene.NewNode("table"),
		registry: NewRegistry(),
		systems:  systems.NewManager[*Match](),
	}
	pub := publisher{bus: eventBus, source: "match", logger: m.logger}

	b := &builder{cfg: cfg, world: world, margin: cfg.Physics.Margin}
	if err := b.field(); err != nil {
		return nil, fmt.Errorf("build field: %w", err)
	}
	if err := b.walls(); err != nil {
		return nil, fmt.Errorf("build walls: %w", err)
	}
	if err := b.goals(); err != nil {
		return nil, fmt.Errorf("build goals: %w", err)
	}

	ballNode, ballBody, err := b.ball()
	if err != nil {
		return nil, fmt.Errorf("build ball: %w", err)
	}
	m.root.Add(ballNode)
	entity, err := m.registry.Track(ballNode, ballBody)
	if err != nil {
		return nil, err
	}
	m.ball = newBall(entity, cfg.Ball, rng, pub, logger)

	for _, team := range Teams {
		rods, err := b.team(team)
		if err != nil {
			return nil, fmt.Errorf("build team %s: %w", team, err)
		}
		for _, r := range rods {
			m.root.Add(r.Node)
		}
		m.rods[team] = rods
	}

	m.kicks = newKickController(cfg.Kick, m.rods, m.ball, pub, logger)
	m.kinematic = newKinematicSync(m.rods)
	m.goals = newGoalDetector(m.Limits(), cfg.Goal, m.ball, pub, logger)
	m.controls = newControls([2]int{len(m.rods[TeamA]), len(m.rods[TeamB])})

	if err := registerSystems(m.systems); err != nil {
		return nil, err
	}
	m.systems.OnSystemError(func(name string, err error) {
		m.logger.Error("system failed", log.String("system", name), log.Error(err))
	})

	m.ready = true
	m.logger.Info("table built",
		log.Int("bodies", len(world.Bodies())),
		log.Int("rods_a", len(m.rods[TeamA])),
		log.Int("rods_b", len(m.rods[TeamB])),
	)
	return m, nil
}

type builder struct {
	cfg    *config.Config
	world  physics.World
	margin float64
}

func (b *builder) static(shape physics.Shape, at mgl64.Vec3, friction, restitution float64) error {
	_, err := b.world.AddBody(physics.BodyDef{
		Shape:       shape,
		Friction:    friction,
		Restitution: restitution,
		Transform:   physics.At(at),
	})
	return err
}

// field is the playing slab, top face at y=0.
func (b *builder) field() error {
	f := b.cfg.Field
	shape := physics.Box(mgl64.Vec3{f.Width / 2, 0.5, f.Length / 2}).WithMargin(b.margin)
	return b.static(shape, mgl64.Vec3{0, -0.5, 0}, 0.5, 0)
}

// walls are the two side walls and the end walls split by the goal mouth.
func (b *builder) walls() error {
	f := b.cfg.Field
	halfWidth := f.Width / 2
	gapHalf := b.cfg.Goal.Width / 2
	segment := halfWidth - gapHalf
	wallY := f.WallHeight / 2

	for _, z := range []float64{f.MaxZ + f.WallThickness, f.MinZ - f.WallThickness} {
		half := mgl64.Vec3{segment / 2, f.WallHeight / 2, f.WallThickness / 2}
		for _, x := range []float64{-gapHalf - segment/2, gapHalf + segment/2} {
			if err := b.static(physics.Box(half), mgl64.Vec3{x, wallY, z}, f.WallFriction, f.WallRestitution); err != nil {
				return err
			}
		}
	}

	side := mgl64.Vec3{f.WallThickness / 2, f.WallHeight / 2, f.Length / 2}
	for _, x := range []float64{-halfWidth - f.WallThickness, halfWidth + f.WallThickness} {
		if err := b.static(physics.Box(side), mgl64.Vec3{x, wallY, 0}, f.WallFriction, f.WallRestitution); err != nil {
			return err
		}
	}
	return nil
}

// goals builds a floor and an open box behind each end line.
func (b *builder) goals() error {
	f := b.cfg.Field
	g := b.cfg.Goal
	for _, end := range []struct{ z, dir float64 }{{f.MaxZ, 1}, {f.MinZ, -1}} {
		floor := physics.Box(mgl64.Vec3{g.Width / 2, 0.1, g.Depth / 2})
		if err := b.static(floor, mgl64.Vec3{0, 0, end.z + end.dir*g.FloorOffset}, g.Friction, g.Restitution); err != nil {
			return err
		}
		if err := b.goalBox(end.z+end.dir*g.MouthOffset, end.dir); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) goalBox(z, dir float64) error {
	g := b.cfg.Goal
	halfW, halfH, halfD := g.Width/2, g.Height/2, g.Depth/2
	mid := z + dir*halfD

	parts := []struct {
		half mgl64.Vec3
		at   mgl64.Vec3
	}{
		{mgl64.Vec3{halfW, 0.1, halfD}, mgl64.Vec3{0, g.BaseY - halfH, mid}},
		{mgl64.Vec3{halfW, 0.1, halfD}, mgl64.Vec3{0, g.BaseY + g.Height, mid}},
		{mgl64.Vec3{halfW, halfH, 0.1}, mgl64.Vec3{0, g.BaseY, z + dir*g.Depth}},
		{mgl64.Vec3{0.1, halfH, halfD}, mgl64.Vec3{-halfW, g.BaseY, mid}},
		{mgl64.Vec3{0.1, halfH, halfD}, mgl64.Vec3{halfW, g.BaseY, mid}},
	}
	for _, p := range parts {
		if err := b.static(physics.Box(p.half), p.at, g.Friction, g.Restitution); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) ball() (*scene.Node, physics.Body, error) {
	c := b.cfg.Ball
	start := mgl64.Vec3{c.Start[0], c.Start[1], c.Start[2]}
	body, err := b.world.AddBody(physics.BodyDef{
		Shape:       physics.Sphere(c.Radius).WithMargin(b.margin),
		Mass:        c.Mass,
		Friction:    c.Friction,
		Restitution: c.Restitution,
		Transform:   physics.At(start),
	})
	if err != nil {
		return nil, nil, err
	}
	return scene.NewNodeAt("ball", start), body, nil
}

// team lays out one side's rods. Figures are spread evenly around x=0 and
// attached to their rod without moving.
func (b *builder) team(team Team) ([]*Rod, error) {
	rows := b.cfg.Teams.A
	if team == TeamB {
		rows = b.cfg.Teams.B
	}
	rc := b.cfg.Rods
	half := mgl64.Vec3{rc.FigureHalf[0], rc.FigureHalf[1], rc.FigureHalf[2]}

	rods := make([]*Rod, 0, len(rows))
	for i, row := range rows {
		r := NewRod(team, i, mgl64.Vec3{0, rc.Height, row.Z})
		spacing := b.cfg.Teams.SpacingFor(row.Count)
		startX := -float64(row.Count-1) * spacing / 2

		for j := 0; j < row.Count; j++ {
			pos := mgl64.Vec3{startX + float64(j)*spacing, rc.FigureHeight, row.Z}
			body, err := b.world.AddBody(physics.BodyDef{
				Shape:      physics.Cylinder(half).WithMargin(b.margin),
				Transform:  physics.At(pos),
				Flags:      physics.FlagKinematic,
				Activation: physics.DisableDeactivation,
			})
			if err != nil {
				return nil, err
			}
			node := scene.NewNodeAt(fmt.Sprintf("figure-%s-%d-%d", team, i, j), pos)
			r.Mount(node, body)
		}
		rods = append(rods, r)
	}
	return rods, nil
}
