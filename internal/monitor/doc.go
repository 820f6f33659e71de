// Package monitor implements the real-time TUI dashboard for a pulse sensor
// session.
//
// The dashboard shows the recent readings as a braille trace with the beat
// threshold drawn across it, the derived heart rate, the current reading and
// the session's range, plus a status line carrying the session's last
// message.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: Holds display state (last derived stats, trace window, status)
//   - Update: Processes messages (keystrokes, ticks, session notifications)
//   - View: Renders the current state to a string for display
//
// # Message Flow
//
// The session's ingestion worker runs on its own goroutine. Its
// notifications are fanned out by session.Dispatch; the Bridge sink hands
// each one to the program with program.Send, which is goroutine safe.
//
//  1. NotificationMsg arrives for every session event
//  2. On data, the model re-derives stats and the trace from the store
//  3. tickMsg fires at the refresh interval so BPM decays when data stops
//  4. View() re-renders the dashboard
//
// Notifications never carry state the store doesn't have, so a dropped
// data notification costs nothing: the next tick catches up.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	e           - Export the full sample log
//	p, Space    - Pause / resume the trace
//	?           - Toggle help overlay
package monitor
