package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulsemon/internal/session"
)

// sender is the part of *tea.Program the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// Bridge is a session.Sink that forwards notifications to the Bubble Tea
// program via program.Send(). This is goroutine-safe.
type Bridge struct {
	program sender
}

// NewBridge creates a bridge that forwards notifications to program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{program: program}
}

// Handle implements session.Sink.
func (b *Bridge) Handle(n session.Notification) {
	b.program.Send(NotificationMsg{Notification: n})
}
