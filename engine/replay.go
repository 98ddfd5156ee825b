package engine

import (
	"bufio"
	"io"
	"time"

	"github.com/ansel1/nyan/parser"
	"github.com/pkg/errors"
)

// timedLine is a recorded input line with the time it was originally emitted.
type timedLine struct {
	line      []byte
	timestamp time.Time
}

// ReplayReader wraps a recorded event stream and re-emits it line by line,
// sleeping between lines for the gap between their event timestamps scaled
// by rate. Lines without a timestamp inherit the previous one.
type ReplayReader struct {
	lines    []timedLine
	rate     float64
	next     int
	pending  []byte
	lastTime time.Time
	sleep    func(time.Duration)
}

// NewReplayReader reads all of r up front. A rate of 1 replays in real time,
// 0.5 at double speed and 0 without any delay.
func NewReplayReader(r io.Reader, rate float64) (*ReplayReader, error) {
	var lines []timedLine
	var last time.Time

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())

		if event, err := parser.ParseEvent(line); err == nil && !event.Time.IsZero() {
			last = event.Time
		}
		lines = append(lines, timedLine{line: line, timestamp: last})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading replay input")
	}

	return &ReplayReader{
		lines: lines,
		rate:  rate,
		sleep: time.Sleep,
	}, nil
}

// Read implements io.Reader.
func (r *ReplayReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.next >= len(r.lines) {
			return 0, io.EOF
		}
		current := r.lines[r.next]
		r.next++

		r.wait(current.timestamp)

		r.pending = append(append(make([]byte, 0, len(current.line)+1), current.line...), '\n')
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *ReplayReader) wait(ts time.Time) {
	if ts.IsZero() {
		return
	}
	if r.rate > 0 && !r.lastTime.IsZero() {
		if delay := ts.Sub(r.lastTime); delay > 0 {
			r.sleep(time.Duration(float64(delay) * r.rate))
		}
	}
	r.lastTime = ts
}
