package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/internal/core/scene"
	"github.com/zeusync/futbolin/internal/core/systems/physics"
)

// KickState is the phase of a rod's kick animation.
type KickState uint8

const (
	KickNeutral KickState = iota
	KickingOut
	KickingBack
)

func (s KickState) String() string {
	switch s {
	case KickNeutral:
		return "neutral"
	case KickingOut:
		return "kicking_out"
	case KickingBack:
		return "kicking_back"
	default:
		return "unknown"
	}
}

// rodRoll lays the rod's length along the x axis.
const rodRoll = math.Pi / 2

// Figure is a player mounted on a rod. Its body is kinematic and only gives
// the figure collision presence.
type Figure struct {
	Node *scene.Node
	Body physics.Body
	Rod  *Rod
}

// Rod is one rotating, laterally sliding axis of figures. Figures are kept in
// mount order, left to right along x.
type Rod struct {
	Team    Team
	Index   int
	Node    *scene.Node
	Figures []*Figure

	angle float64
	state KickState
	// elapsed is the time spent in the current kick phase, in seconds.
	elapsed  float64
	backFrom float64
	contacts int
}

func NewRod(team Team, index int, pos mgl64.Vec3) *Rod {
	node := scene.NewNodeAt(rodName(team, index), pos)
	r := &Rod{Team: team, Index: index, Node: node}
	r.setAngle(0)
	return r
}

func rodName(team Team, index int) string {
	return fmt.Sprintf("rod-%s-%d", team, index)
}

// Mount attaches a figure node to the rod, keeping its world transform.
func (r *Rod) Mount(node *scene.Node, body physics.Body) *Figure {
	r.Node.Attach(node)
	node.Body = body
	f := &Figure{Node: node, Body: body, Rod: r}
	r.Figures = append(r.Figures, f)
	return f
}

// Angle is the current rotation about the rod axis in radians.
func (r *Rod) Angle() float64 { return r.angle }

func (r *Rod) State() KickState { return r.state }

func (r *Rod) Kicking() bool { return r.state != KickNeutral }

// Contacts counts impulses applied during the current kick.
func (r *Rod) Contacts() int { return r.contacts }

// Lateral is the rod's offset along x.
func (r *Rod) Lateral() float64 { return r.Node.Position.X() }

func (r *Rod) setAngle(a float64) {
	r.angle = a
	r.Node.SetEulerXYZ(a, 0, rodRoll)
}

// Slide moves the rod along x by dx and clamps it to [-limit, limit].
func (r *Rod) Slide(dx, limit float64) {
	r.Node.Position[0] += dx
	r.Clamp(limit)
}

func (r *Rod) Clamp(limit float64) {
	x := r.Node.Position.X()
	r.Node.Position[0] = math.Max(-limit, math.Min(limit, x))
}
