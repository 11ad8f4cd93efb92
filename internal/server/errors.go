package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerNotRunning     = errors.New("server is not running")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrOriginNotAllowed     = errors.New("origin not allowed")
	ErrSimulationBusy       = errors.New("simulation is not accepting input")
)
