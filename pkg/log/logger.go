package log

// Logger is the interface applications implement to receive events.
// Pass NoopLogger to disable event logging.
type Logger interface {
	// Log records an event. Implementations must be thread-safe and should
	// return quickly; Log is called from the daemon's control loop.
	Log(event Event)
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
