package log

import (
	"time"

	"github.com/google/uuid"
)

// Recorder stamps events with the session ID and a timestamp before
// passing them on.
type Recorder struct {
	logger  Logger
	session string
	now     func() time.Time
}

// NewRecorder creates a Recorder with a fresh session ID.
// A nil logger discards events.
func NewRecorder(logger Logger) *Recorder {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Recorder{
		logger:  logger,
		session: uuid.NewString(),
		now:     time.Now,
	}
}

// Session returns the session ID.
func (r *Recorder) Session() string {
	return r.session
}

// Log stamps and forwards the event.
func (r *Recorder) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	event.SessionID = r.session
	r.logger.Log(event)
}

var _ Logger = (*Recorder)(nil)
