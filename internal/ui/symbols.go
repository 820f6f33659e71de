package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Export written, session finished cleanly
	SymbolFail     = "✗" // Error
	SymbolPending  = "○" // Listening, nothing connected yet
	SymbolProgress = "◐" // Sensor connected
	SymbolComplete = "●" // Info line
	SymbolStopped  = "■" // Session stopped
	SymbolBeat     = "♥" // BPM readout
)
