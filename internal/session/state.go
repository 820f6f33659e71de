package session

import (
	"fmt"
	"strings"
)

// State is a session's lifecycle stage. Finished and Failed are terminal.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateConnected
	StateFinished
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}

// ParsePolicy decides what a malformed record does to the session.
type ParsePolicy string

const (
	// ParseSkip drops the record, reports it as info, and keeps reading.
	ParseSkip ParsePolicy = "skip"
	// ParseAbort fails the session on the first malformed record.
	ParseAbort ParsePolicy = "abort"
)

// ParseParsePolicy converts a config string to a ParsePolicy.
// Empty selects ParseSkip.
func ParseParsePolicy(s string) (ParsePolicy, error) {
	switch ParsePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ParseSkip:
		return ParseSkip, nil
	case ParseAbort:
		return ParseAbort, nil
	default:
		return "", fmt.Errorf("unknown parse policy %q (want skip or abort)", s)
	}
}
