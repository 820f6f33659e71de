package monitor

import (
	"time"

	"github.com/rileyhilliard/pulsemon/internal/session"
)

// NotificationMsg carries a session notification into the Bubble Tea loop.
type NotificationMsg struct {
	session.Notification
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// exportDoneMsg reports the outcome of an export started with the e key.
type exportDoneMsg struct {
	path string
	err  error
}
