package game

import (
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/core/observability/log"
)

// Event types published on the match bus.
const (
	EventBallKickoff = "ball.kickoff"
	EventBallReset   = "ball.reset"
	EventGoalScored  = "goal.scored"
	EventKickStarted = "kick.started"
	EventKickContact = "kick.contact"
)

// ResetReason says why the ball went back to the kickoff point.
type ResetReason string

const (
	ResetStill  ResetReason = "still"
	ResetGoal   ResetReason = "goal"
	ResetManual ResetReason = "manual"
)

type KickoffEvent struct {
	Direction float64    `json:"direction"`
	Velocity  [3]float64 `json:"velocity"`
}

type ResetEvent struct {
	Reason ResetReason `json:"reason"`
}

type GoalEvent struct {
	Team    Team   `json:"team"`
	Score   Score  `json:"score"`
	Texture string `json:"texture"`
}

type KickEvent struct {
	Team   Team `json:"team"`
	Rod    int  `json:"rod"`
	Figure int  `json:"figure,omitempty"`
	// Impulse is only set on contact events.
	Impulse [3]float64 `json:"impulse,omitempty"`
}

// publisher stamps events with a source and never fails the caller; handler
// errors are logged.
type publisher struct {
	bus    bus.EventBus
	source string
	logger log.Log
}

func (p publisher) publish(eventType string, data any) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(bus.NewEvent(eventType, p.source, data)); err != nil && p.logger != nil {
		p.logger.Warn("event handler failed",
			log.String("event", eventType),
			log.Error(err),
		)
	}
}
