package doctor

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalCheck(t *testing.T) {
	tty := (&TerminalCheck{IsTerminal: func() bool { return true }}).Run()
	assert.Equal(t, StatusPass, tty.Status)

	piped := (&TerminalCheck{IsTerminal: func() bool { return false }}).Run()
	assert.Equal(t, StatusWarn, piped.Status)
	assert.Contains(t, piped.Message, "headless")

	unknown := (&TerminalCheck{}).Run()
	assert.Equal(t, StatusWarn, unknown.Status)
}

func TestColorCheck(t *testing.T) {
	tests := []struct {
		name    string
		check   ColorCheck
		status  CheckStatus
		message string
	}{
		{"true color", ColorCheck{Profile: termenv.TrueColor}, StatusPass, "Color support: true color"},
		{"256", ColorCheck{Profile: termenv.ANSI256}, StatusPass, "Color support: 256 colors"},
		{"16", ColorCheck{Profile: termenv.ANSI}, StatusPass, "Color support: 16 colors"},
		{"none", ColorCheck{Profile: termenv.Ascii}, StatusWarn, "No color support detected"},
		{"no color", ColorCheck{Profile: termenv.Ascii, NoColor: true}, StatusPass, "Colors disabled by NO_COLOR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.check.Run()
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestNewTerminalChecks(t *testing.T) {
	checks := NewTerminalChecks(func() bool { return true })
	require.Len(t, checks, 2)
	assert.Equal(t, "terminal", checks[0].Name())
	assert.Equal(t, "color", checks[1].Name())
}
