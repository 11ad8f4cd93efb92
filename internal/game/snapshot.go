package game

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/futbolin/pkg/generic"
)

var digestBuffers = generic.NewBufferPool(512)

// Pose is a world position plus orientation as (x, y, z, w), the layout the
// browser renderer's quaternion uses.
type Pose struct {
	Position   [3]float64 `json:"position"`
	Quaternion [4]float64 `json:"quaternion"`
}

func poseOf(pos mgl64.Vec3, q mgl64.Quat) Pose {
	return Pose{
		Position:   pos,
		Quaternion: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
	}
}

type BallFrame struct {
	Pose
	Velocity  [3]float64 `json:"velocity"`
	Phase     string     `json:"phase"`
	StillTime float64    `json:"still_time"`
}

type RodFrame struct {
	Team     Team    `json:"team"`
	Index    int     `json:"index"`
	Lateral  float64 `json:"lateral"`
	Angle    float64 `json:"angle"`
	State    string  `json:"state"`
	Selected bool    `json:"selected"`
	Figures  []Pose  `json:"figures"`
}

type ScoreFrame struct {
	Score
	TextureA string `json:"texture_a"`
	TextureB string `json:"texture_b"`
}

type OverlayFrame struct {
	Visible   bool    `json:"visible"`
	Remaining float64 `json:"remaining"`
}

// Snapshot is an immutable copy of everything the renderer draws after a
// tick. Digest covers the visual state only, not Tick or Time, so two
// snapshots of an unchanged table share a digest.
type Snapshot struct {
	Tick    uint64       `json:"tick"`
	Time    float64      `json:"time"`
	Ball    BallFrame    `json:"ball"`
	Rods    []RodFrame   `json:"rods"`
	Score   ScoreFrame   `json:"score"`
	Overlay OverlayFrame `json:"overlay"`
	Digest  uint64       `json:"digest"`
}

// Snapshot copies the current state out of the match.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{Tick: m.tick, Time: m.clock}
	if !m.Ready() {
		return s
	}

	node := m.ball.entity.Node
	s.Ball = BallFrame{
		Pose:      poseOf(node.WorldPosition(), node.WorldQuaternion()),
		Phase:     m.ball.Phase().String(),
		StillTime: m.ball.stillTime,
	}
	if body := m.ball.Body(); body != nil {
		s.Ball.Velocity = body.LinearVelocity()
	}

	for _, team := range Teams {
		for _, r := range m.rods[team] {
			rf := RodFrame{
				Team:     team,
				Index:    r.Index,
				Lateral:  r.Lateral(),
				Angle:    r.angle,
				State:    r.state.String(),
				Selected: m.controls.selected[team] == r.Index,
				Figures:  make([]Pose, 0, len(r.Figures)),
			}
			for _, f := range r.Figures {
				wt := f.Node.WorldTransform()
				rf.Figures = append(rf.Figures, poseOf(wt.Origin, wt.Rotation))
			}
			s.Rods = append(s.Rods, rf)
		}
	}

	board := m.goals.board
	s.Score = ScoreFrame{
		Score:    m.goals.score,
		TextureA: board.Texture(TeamA),
		TextureB: board.Texture(TeamB),
	}
	s.Overlay = OverlayFrame{
		Visible:   m.goals.celebration.Visible(),
		Remaining: m.goals.celebration.Remaining(),
	}
	s.Digest = s.digest()
	return s
}

// digest hashes the visual fields with xxhash.
func (s Snapshot) digest() uint64 {
	bp := digestBuffers.Get()
	defer digestBuffers.Put(bp)

	buf := *bp
	putF := func(vs ...float64) {
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	putPose := func(p Pose) {
		putF(p.Position[:]...)
		putF(p.Quaternion[:]...)
	}

	putPose(s.Ball.Pose)
	putF(s.Ball.Velocity[:]...)
	buf = append(buf, s.Ball.Phase...)
	for _, r := range s.Rods {
		buf = append(buf, byte(r.Team), byte(r.Index))
		putF(r.Lateral, r.Angle)
		buf = append(buf, r.State...)
		if r.Selected {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	buf = append(buf, byte(s.Score.A), byte(s.Score.B))
	if s.Overlay.Visible {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	*bp = buf
	return xxhash.Sum64(buf)
}
