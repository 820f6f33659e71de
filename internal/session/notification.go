package session

import (
	"time"

	"github.com/rileyhilliard/pulsemon/internal/sample"
)

// Kind tags a Notification.
type Kind int

const (
	// KindInit is sent once when the session starts.
	KindInit Kind = iota
	// KindInfo carries a human-readable status message.
	KindInfo
	// KindError carries a failure that ended the session.
	KindError
	// KindDataArrived means a sample was stored; Sample holds it.
	KindDataArrived
	// KindStopped means ingestion has permanently ended.
	KindStopped
)

// String returns the kind name used in logs and the live feed.
func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindInfo:
		return "info"
	case KindError:
		return "error"
	case KindDataArrived:
		return "data"
	case KindStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Notification is one event from the ingestion worker to display
// collaborators.
type Notification struct {
	Kind    Kind
	Message string
	Sample  sample.Sample // set for KindDataArrived
	Err     error         // set for KindError
	State   State         // session state after the event
	At      time.Time
}

// Sink consumes notifications. Handle must not block for long: it runs on
// the dispatcher goroutine shared by every sink.
type Sink interface {
	Handle(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(n Notification)

// Handle calls f(n).
func (f SinkFunc) Handle(n Notification) {
	f(n)
}

// Dispatch delivers every notification from ch to each sink in order and
// returns when ch is closed.
func Dispatch(ch <-chan Notification, sinks ...Sink) {
	for n := range ch {
		for _, s := range sinks {
			if s != nil {
				s.Handle(n)
			}
		}
	}
}
