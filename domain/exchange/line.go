package exchange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Direction marks whether a logged value was sent or received
type Direction string

const (
	Out Direction = "OUT"
	In  Direction = "IN"
)

// TimeFormat is the ISO-8601 layout used for line timestamps
const TimeFormat = time.RFC3339Nano

// ErrMalformedLine is returned by ParseLine for text that is not an exchange line
var ErrMalformedLine = errors.New("malformed exchange line")

// Recorder logs outbound requests and inbound responses
type Recorder interface {
	Out(v any)
	In(v any)
}

// Line is one request or response dump
type Line struct {
	Time      time.Time
	Direction Direction
	Message   string
}

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	return d == Out || d == In
}

// String formats the line as "<timestamp> <OUT|IN>: <message>"
func (l Line) String() string {
	return l.Time.UTC().Format(TimeFormat) + " " + string(l.Direction) + ": " + l.Message
}

// ParseLine reverses Line.String
func ParseLine(s string) (Line, error) {
	stamp, rest, ok := strings.Cut(s, " ")
	if !ok {
		return Line{}, fmt.Errorf("%w: %q", ErrMalformedLine, s)
	}

	ts, err := time.Parse(TimeFormat, stamp)
	if err != nil {
		return Line{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedLine, stamp)
	}

	dir, msg, ok := strings.Cut(rest, ":")
	if !ok || !Direction(dir).Valid() {
		return Line{}, fmt.Errorf("%w: bad direction in %q", ErrMalformedLine, s)
	}

	return Line{
		Time:      ts,
		Direction: Direction(dir),
		Message:   strings.TrimPrefix(msg, " "),
	}, nil
}
