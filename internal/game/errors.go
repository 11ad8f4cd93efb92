package game

import "errors"

var (
	ErrRodBusy     = errors.New("rod is already kicking")
	ErrUnknownTeam = errors.New("unknown team")
	ErrRodIndex    = errors.New("rod index out of range")
	ErrNotReady    = errors.New("match is not ready")
	ErrNoBody      = errors.New("entity has no physics body")
	ErrRunnerDone  = errors.New("runner stopped")
	ErrQueueFull   = errors.New("command queue full")

	ErrUnknownCommand = errors.New("unknown command")
)
