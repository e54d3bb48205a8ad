package exchangelog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ylexus/google-issue-193814298/domain/exchange"
)

// Writer implements exchange.Recorder by writing one line per value
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// Option is a functional option for configuring Writer
type Option func(*Writer)

// WithClock sets the time source used for line timestamps (for testing)
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a Writer that writes to out
func NewWriter(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out: out,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Out logs an outbound request
func (w *Writer) Out(v any) {
	w.write(exchange.Out, v)
}

// In logs an inbound response
func (w *Writer) In(v any) {
	w.write(exchange.In, v)
}

func (w *Writer) write(dir exchange.Direction, v any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := exchange.Line{
		Time:      w.now(),
		Direction: dir,
		Message:   fmt.Sprint(v),
	}
	fmt.Fprintln(w.out, line)
}

// Ensure Writer implements exchange.Recorder
var _ exchange.Recorder = (*Writer)(nil)
