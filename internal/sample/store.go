package sample

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultThreshold separates "pulse" from "no pulse" readings.
	DefaultThreshold = 512
	// DefaultWindow is the nominal trailing window for BPM.
	DefaultWindow = 60 * time.Second
	// DefaultDisplaySize is the number of samples shown on the graph.
	DefaultDisplaySize = 50
)

// ErrParse is returned (wrapped in a *ParseError) when a record is not a
// well-formed base-10 integer.
var ErrParse = errors.New("malformed sample")

// ParseError carries the raw text of a record that failed to parse.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrParse, e.Raw, e.Err)
}

// Is reports ErrParse so callers can match with errors.Is.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Option configures a Store.
type Option func(*Store)

// WithThreshold sets the detection threshold.
func WithThreshold(threshold int) Option {
	return func(s *Store) {
		s.threshold = threshold
	}
}

// WithWindow sets the nominal BPM window. Non-positive values keep the default.
func WithWindow(window time.Duration) Option {
	return func(s *Store) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithClock replaces the clock used to timestamp appended samples.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Store is an append-only, time-ordered log of samples.
type Store struct {
	mu        sync.RWMutex
	samples   []Sample
	start     int64
	started   bool
	threshold int
	window    time.Duration
	clock     func() time.Time
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		threshold: DefaultThreshold,
		window:    DefaultWindow,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the detection threshold.
func (s *Store) Threshold() int {
	return s.threshold
}

// Window returns the nominal BPM window.
func (s *Store) Window() time.Duration {
	return s.window
}

// Append parses raw as an integer and appends it, timestamped now.
func (s *Store) Append(raw string) (Sample, error) {
	text := strings.TrimSpace(raw)
	value, err := strconv.Atoi(text)
	if err != nil {
		return Sample{}, &ParseError{Raw: raw, Err: err}
	}
	return s.AppendValue(value), nil
}

// AppendValue appends an already-parsed value, timestamped now.
func (s *Store) AppendValue(value int) Sample {
	ts := s.clock().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Wall clocks can step backwards; the log must stay ordered.
	if n := len(s.samples); n > 0 && ts < s.samples[n-1].Timestamp {
		ts = s.samples[n-1].Timestamp
	}
	if !s.started {
		s.start = ts
		s.started = true
	}

	smp := Sample{Value: value, Timestamp: ts}
	s.samples = append(s.samples, smp)
	return smp
}

// Count returns the number of stored samples.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// LastValue returns the most recent value. ok is false when the store is empty.
func (s *Store) LastValue() (value int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return 0, false
	}
	return s.samples[len(s.samples)-1].Value, true
}

// SessionStart returns the timestamp of the first sample.
func (s *Store) SessionStart() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return time.Time{}, false
	}
	return time.UnixMilli(s.start), true
}

// RecentWindow returns a copy of the last min(Count(), maxSize) samples in
// arrival order.
func (s *Store) RecentWindow(maxSize int) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentLocked(maxSize)
}

func (s *Store) recentLocked(maxSize int) []Sample {
	n := len(s.samples)
	if maxSize <= 0 || n == 0 {
		return []Sample{}
	}
	if maxSize > n {
		maxSize = n
	}
	out := make([]Sample, maxSize)
	copy(out, s.samples[n-maxSize:])
	return out
}

// Snapshot returns a copy of every stored sample in arrival order.
func (s *Store) Snapshot() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Stats is a consistent view of the store's derived values at one instant.
type Stats struct {
	Count            int
	LastValue        int
	Min              int
	Max              int
	BPM              int
	SamplesPerSecond int
	SessionStart     time.Time
	HasData          bool
}

// Stats computes every derived value under a single read lock.
func (s *Store) Stats(now time.Time) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Count: len(s.samples)}
	if len(s.samples) == 0 {
		return st
	}

	st.HasData = true
	st.LastValue = s.samples[len(s.samples)-1].Value
	st.Min, st.Max = s.samples[0].Value, s.samples[0].Value
	for _, smp := range s.samples[1:] {
		if smp.Value < st.Min {
			st.Min = smp.Value
		}
		if smp.Value > st.Max {
			st.Max = smp.Value
		}
	}
	st.BPM = s.bpmLocked(now)
	st.SessionStart = time.UnixMilli(s.start)

	// Whole elapsed seconds, zero during the first second.
	if elapsed := (now.UnixMilli() - s.start) / 1000; elapsed > 0 {
		st.SamplesPerSecond = int(int64(len(s.samples)) / elapsed)
	}
	return st
}
