package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/observability/log"
)

// KickController runs the per-rod kick state machine:
// neutral -> kicking out -> kicking back -> neutral.
type KickController struct {
	cfg    config.KickConfig
	rods   [2][]*Rod
	ball   *Ball
	pub    publisher
	logger log.Log
}

func newKickController(cfg config.KickConfig, rods [2][]*Rod, ball *Ball, pub publisher, logger log.Log) *KickController {
	return &KickController{
		cfg:    cfg,
		rods:   rods,
		ball:   ball,
		pub:    pub,
		logger: logger.With(log.String("component", "kick")),
	}
}

func (k *KickController) rod(team Team, index int) (*Rod, error) {
	if !team.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTeam, uint8(team))
	}
	rods := k.rods[team]
	if index < 0 || index >= len(rods) {
		return nil, fmt.Errorf("%w: team %s rod %d of %d", ErrRodIndex, team, index, len(rods))
	}
	return rods[index], nil
}

// StartKick begins a kick on the given rod. A rod that is still moving
// ignores the request and ErrRodBusy is returned.
func (k *KickController) StartKick(team Team, rodIndex int) error {
	r, err := k.rod(team, rodIndex)
	if err != nil {
		return err
	}
	if r.state != KickNeutral {
		return ErrRodBusy
	}

	r.state = KickingOut
	r.elapsed = 0
	r.contacts = 0

	k.logger.Debug("kick started", log.String("team", team.String()), log.Int("rod", rodIndex))
	k.pub.publish(EventKickStarted, KickEvent{Team: team, Rod: rodIndex})
	return nil
}

// Advance moves every active kick forward by dt seconds. Each outbound
// update may apply at most one impulse.
func (k *KickController) Advance(dt float64) {
	for _, team := range Teams {
		for _, r := range k.rods[team] {
			k.advanceRod(r, dt)
		}
	}
}

func (k *KickController) advanceRod(r *Rod, dt float64) {
	target := r.Team.KickSign() * k.cfg.Angle

	switch r.state {
	case KickingOut:
		r.elapsed += dt
		p := tweenProgress(r.elapsed, k.cfg.OutDuration.Seconds())
		r.setAngle(lerp(0, target, easeOutQuad(p)))
		k.tryContact(r)
		if p >= 1 {
			r.state = KickingBack
			r.elapsed = 0
			r.backFrom = r.angle
		}

	case KickingBack:
		r.elapsed += dt
		p := tweenProgress(r.elapsed, k.cfg.BackDuration.Seconds())
		r.setAngle(lerp(r.backFrom, 0, easeOutQuad(p)))
		if p >= 1 {
			r.setAngle(0)
			r.state = KickNeutral
			r.elapsed = 0
		}
	}
}

// inReach reports whether a figure at fig can strike a ball at ball.
func (k *KickController) inReach(fig, ball mgl64.Vec3) bool {
	if math.Abs(fig.X()-ball.X()) > k.cfg.ReachX {
		return false
	}
	return math.Abs(fig.Z()-ball.Z()) < k.cfg.ReachZ
}

// tryContact applies the kick impulse from the first figure in mount order
// that reaches the ball.
func (k *KickController) tryContact(r *Rod) bool {
	if k.ball.Body() == nil {
		return false
	}
	if k.cfg.OncePerKick && r.contacts > 0 {
		return false
	}

	ballPos := k.ball.Position()
	for i, f := range r.Figures {
		if !k.inReach(f.Node.WorldPosition(), ballPos) {
			continue
		}
		impulse := mgl64.Vec3{0, 0, r.Team.Attack() * k.cfg.Impulse}
		k.ball.ApplyImpulse(impulse)
		r.contacts++

		k.logger.Debug("kick contact",
			log.String("team", r.Team.String()),
			log.Int("rod", r.Index),
			log.Int("figure", i),
		)
		k.pub.publish(EventKickContact, KickEvent{Team: r.Team, Rod: r.Index, Figure: i, Impulse: impulse})
		return true
	}
	return false
}
