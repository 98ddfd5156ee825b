package parser

import (
	"encoding/json"
	"time"

	"github.com/ansel1/nyan/results"
	"github.com/pkg/errors"
)

// EventType identifies a host lifecycle callback.
type EventType string

const (
	RunStart     EventType = "run_start"
	BrowserStart EventType = "browser_start"
	BrowserLog   EventType = "browser_log"
	SpecComplete EventType = "spec_complete"
	BrowserError EventType = "browser_error"
	RunComplete  EventType = "run_complete"
)

// HostEvent is one lifecycle callback from the host test runner, encoded as a
// single JSON line.
type HostEvent struct {
	Time     time.Time             `json:"Time"`
	Type     EventType             `json:"Type"`
	Browsers []results.BrowserInfo `json:"Browsers,omitempty"` // run_start, run_complete
	Browser  results.BrowserInfo   `json:"Browser"`            // per-browser events
	Result   results.SpecResult    `json:"Result"`             // spec_complete
	Log      string                `json:"Log,omitempty"`      // browser_log
	LogType  string                `json:"LogType,omitempty"`  // browser_log
	Error    string                `json:"Error,omitempty"`    // browser_error
	Summary  results.RunSummary    `json:"Summary"`            // run_complete
}

// ErrNoType is returned for JSON lines that are not lifecycle events.
var ErrNoType = errors.New("missing event type")

// ParseEvent parses a single line of host reporter output.
func ParseEvent(line []byte) (HostEvent, error) {
	var event HostEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return event, err
	}
	if event.Type == "" {
		return event, ErrNoType
	}
	return event, nil
}
