// Package tabio reads and writes the whitespace-delimited two-column
// integer tables the components tools exchange: edge lists on the way in,
// (node, label) pairs on the way out.
package tabio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrOutOfRange marks a line whose fields are numeric but do not fit an
// unsigned 32-bit integer (negative values included). It is the only
// recoverable parse condition: callers skip the line and keep reading.
var ErrOutOfRange = errors.New("value out of uint32 range")

// ParseError is a fatal input error: a line that is not two integer fields,
// or a stream that failed before its logical end.
type ParseError struct {
	Line  int
	Field string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: field %q: %v", e.Line, e.Field, e.Cause)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Reader scans a line-oriented table of uint32 pairs.
type Reader struct {
	s    *bufio.Scanner
	line int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{s: s}
}

// Line returns the number of the last line read.
func (r *Reader) Line() int { return r.line }

// ReadPair reads the next line and parses it as two uint32 fields.
// It returns io.EOF at the logical end of input, ErrOutOfRange for a line
// carrying a negative or too-large value (skip and continue), and a
// *ParseError for anything else, which is fatal.
func (r *Reader) ReadPair() (a, b uint32, err error) {
	for r.s.Scan() {
		r.line++
		text := strings.TrimSpace(r.s.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return 0, 0, &ParseError{Line: r.line, Cause: errors.New("expected two fields")}
		}
		a, err = r.parseField(fields[0])
		if err != nil {
			return 0, 0, err
		}
		b, err = r.parseField(fields[1])
		if err != nil {
			return 0, 0, err
		}
		return a, b, nil
	}
	if err := r.s.Err(); err != nil {
		return 0, 0, &ParseError{Line: r.line, Cause: err}
	}
	return 0, 0, io.EOF
}

func (r *Reader) parseField(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err == nil {
		return uint32(v), nil
	}
	var ne *strconv.NumError
	if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
		return 0, ErrOutOfRange
	}
	// A well-formed negative number is an out-of-range value, not a
	// malformed line.
	if len(s) > 1 && s[0] == '-' && allDigits(s[1:]) {
		return 0, ErrOutOfRange
	}
	return 0, &ParseError{Line: r.line, Field: s, Cause: err}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
