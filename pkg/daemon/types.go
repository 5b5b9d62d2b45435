package daemon

import "errors"

// Daemon errors.
var (
	ErrNotStarted     = errors.New("daemon not started")
	ErrAlreadyStarted = errors.New("daemon already started")
	ErrStopped        = errors.New("daemon stopped")
	ErrSendFailed     = errors.New("frame refused by one or more ports")
)

// State is the daemon lifecycle state.
type State uint8

const (
	// StateIdle - daemon created but not initialised.
	StateIdle State = iota

	// StateStarting - Init is loading state and starting plugins.
	StateStarting

	// StateRunning - initialised, the control loop may run.
	StateRunning

	// StateStopping - plugins are being stopped and state saved.
	StateStopping

	// StateStopped - the daemon has shut down.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}
