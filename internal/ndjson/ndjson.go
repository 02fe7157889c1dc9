// Package ndjson reads newline-delimited JSON streams such as the Lichess
// event and board feeds.
//
// Decode turns a reader into a sequence of decoded values. Blank lines are
// keep-alives and are skipped. A line that fails to decode is reported as a
// *ParseError and reading continues with the next line. The end of the
// stream, clean or not, is reported once as ErrConnectionClosed and the
// sequence ends. The reader never reconnects.
package ndjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

// DefaultMaxLineSize bounds a single event line.
const DefaultMaxLineSize = 1 << 20

// rawPreviewLen caps how much of a bad line is kept in a ParseError.
const rawPreviewLen = 256

var (
	// ErrTransientParse matches every *ParseError. The stream is still usable.
	ErrTransientParse = errors.New("malformed stream line")

	// ErrConnectionClosed marks the end of the stream.
	ErrConnectionClosed = errors.New("stream closed")
)

// ParseError reports a line that could not be decoded.
type ParseError struct {
	Line int    // 1-based line number in the stream
	Raw  string // the offending line, possibly truncated
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, ErrTransientParse, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransientParse) hold for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrTransientParse }

type options struct {
	maxLineSize int
}

// Option configures Decode.
type Option func(*options)

// WithMaxLineSize overrides DefaultMaxLineSize.
func WithMaxLineSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLineSize = n
		}
	}
}

// Decode yields one T per non-blank line of r.
//
// Errors are yielded in place of a value: *ParseError for a bad line, after
// which decoding goes on, and an error wrapping ErrConnectionClosed as the
// final element. Breaking out of the loop stops reading immediately.
func Decode[T any](r io.Reader, opts ...Option) iter.Seq2[T, error] {
	o := options{maxLineSize: DefaultMaxLineSize}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(T, error) bool) {
		var zero T

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), o.maxLineSize)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var v T
			if err := json.Unmarshal(line, &v); err != nil {
				if !yield(zero, &ParseError{Line: lineNo, Raw: preview(line), Err: err}) {
					return
				}
				continue
			}
			if !yield(v, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(zero, fmt.Errorf("%w: %w", ErrConnectionClosed, err))
			return
		}
		yield(zero, ErrConnectionClosed)
	}
}

func preview(line []byte) string {
	if len(line) <= rawPreviewLen {
		return string(line)
	}
	return string(line[:rawPreviewLen]) + "..."
}
