package systems

import (
	"time"
)

// System is one gameplay processor run once per tick against a world value.
// W is the simulation context the systems share.
type System[W any] interface {
	Name() string
	ExecutionPhase() ExecutionPhase
	Update(deltaTime float64, world W) error
}

// ExecutionPhase defines when a system runs inside a tick. Phases run in
// ascending order; systems inside a phase run in registration order.
type ExecutionPhase uint8

const (
	PhaseInput ExecutionPhase = iota
	PhasePreUpdate
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
	PhasePreRender
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseLateUpdate:
		return "late-update"
	case PhasePreRender:
		return "pre-render"
	default:
		return "unknown"
	}
}

// StateIdentity represents the current state of a registered system
type StateIdentity uint8

const (
	StateEnabled StateIdentity = iota
	StateDisabled
	StateFailed
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
	LastExecutionTime  time.Time
}

// AverageExecutionTime is TotalExecutionTime over ExecutionCount.
func (m Metrics) AverageExecutionTime() time.Duration {
	if m.ExecutionCount == 0 {
		return 0
	}
	return m.TotalExecutionTime / time.Duration(m.ExecutionCount)
}
