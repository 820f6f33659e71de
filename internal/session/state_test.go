package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expect   string
		terminal bool
	}{
		{StateIdle, "idle", false},
		{StateListening, "listening", false},
		{StateConnected, "connected", false},
		{StateFinished, "finished", true},
		{StateFailed, "failed", true},
		{State(42), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestParseParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ParsePolicy
		wantErr bool
	}{
		{"", ParseSkip, false},
		{"skip", ParseSkip, false},
		{" Abort ", ParseAbort, false},
		{"retry", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseParsePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "init", KindInit.String())
	assert.Equal(t, "info", KindInfo.String())
	assert.Equal(t, "error", KindError.String())
	assert.Equal(t, "data", KindDataArrived.String())
	assert.Equal(t, "stopped", KindStopped.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestDispatch(t *testing.T) {
	ch := make(chan Notification, 3)
	ch <- Notification{Kind: KindInit}
	ch <- Notification{Kind: KindInfo, Message: "hi"}
	ch <- Notification{Kind: KindStopped}
	close(ch)

	var a, b []Kind
	Dispatch(ch,
		SinkFunc(func(n Notification) { a = append(a, n.Kind) }),
		nil,
		SinkFunc(func(n Notification) { b = append(b, n.Kind) }),
	)

	want := []Kind{KindInit, KindInfo, KindStopped}
	assert.Equal(t, want, a)
	assert.Equal(t, want, b)
}
