package reporter

import (
	"github.com/ansel1/nyan/engine"
	"github.com/ansel1/nyan/parser"
)

// Handle dispatches one engine event to the matching lifecycle hook.
func (r *Reporter) Handle(evt engine.Event) error {
	switch evt.Type {
	case engine.EventRawLine:
		return r.OnRawLine(string(evt.RawLine))

	case engine.EventHost:
		return r.handleHostEvent(evt.HostEvent)

	case engine.EventError:
		// Log error but continue processing
		r.logger.Error("reading events", "error", evt.Error)

	case engine.EventComplete:
		return r.Finish()
	}
	return nil
}

func (r *Reporter) handleHostEvent(evt parser.HostEvent) error {
	switch evt.Type {
	case parser.RunStart:
		r.OnRunStart(evt.Browsers)
	case parser.BrowserStart:
		r.OnBrowserStart(evt.Browser)
	case parser.BrowserLog:
		r.OnBrowserLog(evt.Browser, evt.Log, evt.LogType)
	case parser.SpecComplete:
		r.OnSpecComplete(evt.Browser, evt.Result)
	case parser.BrowserError:
		r.OnBrowserError(evt.Browser, evt.Error)
	case parser.RunComplete:
		return r.OnRunComplete(evt.Browsers, evt.Summary)
	default:
		r.logger.Debug("ignoring unknown event", "type", evt.Type)
	}
	return nil
}

// ProcessEvents consumes events from the channel until it is closed.
//
// If the input ends in the middle of a run, the run is finished so the
// report is printed and the cursor restored. On a write error it returns
// without reading the rest of the channel; the caller then cancels the
// context given to engine.Stream so the engine stops.
func (r *Reporter) ProcessEvents(events <-chan engine.Event) error {
	for evt := range events {
		if err := r.Handle(evt); err != nil {
			return err
		}
	}
	return r.Finish()
}
