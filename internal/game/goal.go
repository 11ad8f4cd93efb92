package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/observability/log"
)

// maxDigit is the highest score a scoreboard digit shows before wrapping.
const maxDigit = 9

// Score holds both team counters, each in [0, 9].
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (s Score) For(team Team) int {
	if team == TeamB {
		return s.B
	}
	return s.A
}

func (s *Score) add(team Team) int {
	v := s.For(team) + 1
	if v > maxDigit {
		v = 0
	}
	if team == TeamB {
		s.B = v
	} else {
		s.A = v
	}
	return v
}

// FieldLimits are the z bounds of the playable length.
type FieldLimits struct {
	MinZ float64 `json:"min_z"`
	MaxZ float64 `json:"max_z"`
}

// Scoreboard maps each team's digit to the texture the renderer shows.
type Scoreboard struct {
	pattern  string
	textures [2]string
}

func newScoreboard(pattern string) *Scoreboard {
	s := &Scoreboard{pattern: pattern}
	for _, team := range Teams {
		s.set(team, 0)
	}
	return s
}

func (s *Scoreboard) set(team Team, digit int) {
	s.textures[team] = fmt.Sprintf(s.pattern, digit)
}

func (s *Scoreboard) Texture(team Team) string {
	return s.textures[team]
}

// Celebration is the goal overlay. It is advanced by simulated time and
// never blocks the loop.
type Celebration struct {
	duration  float64
	remaining float64
	shown     uint64
}

func (c *Celebration) Show() {
	c.remaining = c.duration
	c.shown++
}

func (c *Celebration) Advance(dt float64) {
	if c.remaining <= 0 {
		return
	}
	c.remaining -= dt
	if c.remaining < timeEpsilon {
		c.remaining = 0
	}
}

func (c *Celebration) Visible() bool      { return c.remaining > 0 }
func (c *Celebration) Remaining() float64 { return c.remaining }

// Shown counts how many times the overlay was triggered.
func (c *Celebration) Shown() uint64 { return c.shown }

// GoalDetector tests positions against the two goal trigger volumes and
// keeps the score.
type GoalDetector struct {
	limits    FieldLimits
	halfWidth float64
	overshoot float64

	score       Score
	board       *Scoreboard
	celebration *Celebration
	ball        *Ball
	pub         publisher
	logger      log.Log
}

func newGoalDetector(limits FieldLimits, cfg config.GoalConfig, ball *Ball, pub publisher, logger log.Log) *GoalDetector {
	return &GoalDetector{
		limits:      limits,
		halfWidth:   cfg.Width / 2,
		overshoot:   cfg.Overshoot,
		board:       newScoreboard(cfg.TexturePattern),
		celebration: &Celebration{duration: cfg.Celebration.Seconds()},
		ball:        ball,
		pub:         pub,
		logger:      logger.With(log.String("component", "goal")),
	}
}

func (g *GoalDetector) Score() Score              { return g.score }
func (g *GoalDetector) Scoreboard() *Scoreboard   { return g.board }
func (g *GoalDetector) Celebration() *Celebration { return g.celebration }

// Zone returns the team credited for a ball at pos, if pos is inside a
// trigger volume. Bounds on x are strict.
func (g *GoalDetector) Zone(pos mgl64.Vec3) (Team, bool) {
	if pos.X() <= -g.halfWidth || pos.X() >= g.halfWidth {
		return 0, false
	}
	switch {
	case pos.Z() < g.limits.MinZ-g.overshoot:
		return TeamA, true
	case pos.Z() > g.limits.MaxZ+g.overshoot:
		return TeamB, true
	}
	return 0, false
}

// Check scores a goal when pos lies in a trigger volume: bumps the score,
// swaps the scoreboard texture, shows the overlay and resets the ball.
func (g *GoalDetector) Check(pos mgl64.Vec3) (Team, bool) {
	team, ok := g.Zone(pos)
	if !ok {
		return 0, false
	}

	digit := g.score.add(team)
	g.board.set(team, digit)
	g.celebration.Show()

	g.logger.Info("goal",
		log.String("team", team.String()),
		log.Int("score_a", g.score.A),
		log.Int("score_b", g.score.B),
	)
	g.pub.publish(EventGoalScored, GoalEvent{Team: team, Score: g.score, Texture: g.board.Texture(team)})

	g.ball.Reset(ResetGoal)
	return team, true
}
