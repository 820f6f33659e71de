// Package ui provides the line-oriented terminal output pulsemon uses when
// it isn't running the full-screen dashboard.
//
// # Components Overview
//
//	EventLog  - One line per session event, stamped to the millisecond
//	Sparkline - Fixed-scale block sparkline of recent readings
//	Header    - Program banner for headless sessions and `pulsemon version`
//
// # Color Scheme
//
// Status colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Exports written, clean shutdown
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Session stopped
//	ColorInfo      (cyan)   - Informational lines, low readings
//	ColorMuted     (gray)   - Timestamps, counters
//	ColorPulse     (pink)   - BPM, readings at or above threshold
//
// Use SetColorMode or DisableColors to honour display.color, --no-color and
// NO_COLOR.
//
// # Usage
//
//	log := ui.NewEventLog(os.Stdout)
//	log.Info(time.Now(), "listening on 127.0.0.1:9999")
//	log.Pulse(time.Now(), ui.PulseLine{BPM: 72, Samples: 1500,
//		Spark: ui.RenderSparkline(values, 40, ui.SparkScale{Max: 1024, Threshold: 512})})
package ui
