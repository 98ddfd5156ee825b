// Package engine turns the host's output into a stream of events: lifecycle
// events for lines the reporter protocol understands and raw lines for
// everything else.
package engine

import (
	"bufio"
	"context"
	"io"

	"github.com/ansel1/nyan/parser"
	"github.com/pkg/errors"
)

// EventType identifies the type of event emitted by the engine
type EventType string

const (
	EventRawLine  EventType = "raw"      // Line that is not a lifecycle event
	EventHost     EventType = "host"     // Parsed host lifecycle event
	EventError    EventType = "error"    // Reading input or writing a copy failed
	EventComplete EventType = "complete" // Input stream finished
)

// maxLineSize bounds a single input line. Failure logs with long stack traces
// arrive as one JSON line, so the default 64KiB scanner limit is too small.
const maxLineSize = 4 * 1024 * 1024

// Event represents a single event emitted by the engine
type Event struct {
	Type      EventType
	RawLine   []byte           // Populated for EventRawLine
	HostEvent parser.HostEvent // Populated for EventHost
	Error     error            // Populated for EventError
}

// copyTarget is a file receiving a copy of some input lines. The first
// failed write is reported and the target is dropped.
type copyTarget struct {
	name     string
	w        io.Writer
	hostOnly bool
}

func (c *copyTarget) write(line []byte) error {
	if _, err := c.w.Write(line); err != nil {
		return errors.Wrapf(err, "writing %s", c.name)
	}
	if _, err := io.WriteString(c.w, "\n"); err != nil {
		return errors.Wrapf(err, "writing %s", c.name)
	}
	return nil
}

// Engine reads host output and emits events in input order. It keeps no run
// state.
type Engine struct {
	copies []*copyTarget
}

// Option configures the engine
type Option func(*Engine)

// WithRawOutput copies every input line to w.
func WithRawOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.copies = append(e.copies, &copyTarget{name: "raw output", w: w})
	}
}

// WithJSONOutput copies the lifecycle event lines to w.
func WithJSONOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.copies = append(e.copies, &copyTarget{name: "event output", w: w, hostOnly: true})
	}
}

// NewEngine creates a new event processing engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// stream is the state of one Stream call.
type stream struct {
	ctx    context.Context
	events chan<- Event
	copies []*copyTarget
}

// emit delivers evt, or returns false once ctx is done.
func (s *stream) emit(evt Event) bool {
	select {
	case s.events <- evt:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// copyLine writes line to the matching copy targets. A target that fails is
// reported as an EventError and receives nothing further.
func (s *stream) copyLine(line []byte, isHost bool) bool {
	kept := s.copies[:0]
	for _, c := range s.copies {
		if c.hostOnly && !isHost {
			kept = append(kept, c)
			continue
		}
		if err := c.write(line); err != nil {
			if !s.emit(Event{Type: EventError, Error: err}) {
				return false
			}
			continue
		}
		kept = append(kept, c)
	}
	s.copies = kept
	return true
}

// Stream reads input and emits events on the returned channel, ending with
// EventComplete. The channel is closed when input is exhausted or ctx is
// canceled. A consumer that stops reading early must cancel ctx, otherwise
// the reading goroutine blocks on the next send.
func (e *Engine) Stream(ctx context.Context, input io.Reader) <-chan Event {
	events := make(chan Event, 100)
	s := &stream{
		ctx:    ctx,
		events: events,
		copies: append([]*copyTarget(nil), e.copies...),
	}

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			// The scanner reuses its buffer.
			line := append([]byte(nil), scanner.Bytes()...)

			hostEvent, err := parser.ParseEvent(line)
			isHost := err == nil
			if !s.copyLine(line, isHost) {
				return
			}

			evt := Event{Type: EventRawLine, RawLine: line}
			if isHost {
				evt = Event{Type: EventHost, HostEvent: hostEvent}
			}
			if !s.emit(evt) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if !s.emit(Event{Type: EventError, Error: errors.Wrap(err, "reading input")}) {
				return
			}
		}
		s.emit(Event{Type: EventComplete})
	}()

	return events
}
