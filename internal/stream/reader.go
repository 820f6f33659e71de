package stream

import (
	"bufio"
	"io"

	"github.com/rileyhilliard/pulsemon/internal/errors"
)

// MaxLineLength bounds a single record. Longer lines end the stream with a
// TRANSPORT error.
const MaxLineLength = 64 * 1024

// Reader splits a byte stream into newline-terminated records.
// It is not safe for concurrent use.
type Reader struct {
	sc  *bufio.Scanner
	err error
}

// NewReader wraps r. Records are split on '\n' with a trailing '\r' removed.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLineLength)
	return &Reader{sc: sc}
}

// Next returns the next record without its terminator. It returns io.EOF
// once the peer has closed cleanly and a TRANSPORT error on read failure.
// Both are terminal: every later call returns the same error.
func (r *Reader) Next() (string, error) {
	if r.err != nil {
		return "", r.err
	}

	if r.sc.Scan() {
		return r.sc.Text(), nil
	}

	if err := r.sc.Err(); err != nil {
		r.err = errors.WrapWithCode(err, errors.ErrTransport,
			"Lost the sensor connection",
			"Check the sensor's network link and restart pulsemon to monitor again.")
	} else {
		r.err = io.EOF
	}
	return "", r.err
}
