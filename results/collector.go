package results

import (
	"time"
)

// RunRecord is what remains of a run once it has finished. The failure
// tree, logs and errors of the run are released.
type RunRecord struct {
	ID        int
	StartTime time.Time
	EndTime   time.Time
}

// State holds the active run and a record of the last finished one.
type State struct {
	CurrentRun *Run       // Currently active run (nil if no active run)
	Started    int        // Number of runs started so far
	Finished   int        // Number of runs finished so far
	LastRun    *RunRecord // Most recently finished run (nil if none)
}

// NewState creates a new state.
func NewState() *State {
	return &State{}
}

// Collector tracks run boundaries.
//
// A run starts on run start, or implicitly when any run-scoped event arrives
// while no run is in progress. A run finishes on run complete, or when the
// input ends (see Finish). Only the active run is kept; watch mode hosts
// emit an unbounded number of runs.
//
// The Collector is not safe for concurrent use; the host delivers lifecycle
// events one at a time.
type Collector struct {
	state *State
}

// NewCollector creates a new result collector.
func NewCollector() *Collector {
	return &Collector{
		state: NewState(),
	}
}

// StartRun finishes the current run, if any, and starts a new one.
func (c *Collector) StartRun() *Run {
	if c.state.CurrentRun != nil {
		c.FinishRun()
	}
	c.state.Started++
	run := NewRun(c.state.Started)
	c.state.CurrentRun = run
	return run
}

// CurrentRun returns the active run, starting one if none is in progress.
// The second return value is true when a run was started.
func (c *Collector) CurrentRun() (*Run, bool) {
	if c.state.CurrentRun != nil {
		return c.state.CurrentRun, false
	}
	return c.StartRun(), true
}

// InProgress reports whether a run is active.
func (c *Collector) InProgress() bool {
	return c.state.CurrentRun != nil
}

// FinishRun marks the current run as ended and detaches it. After this the
// collector holds only a RunRecord of it.
// It returns the finished run, or nil if there was none.
func (c *Collector) FinishRun() *Run {
	run := c.state.CurrentRun
	if run == nil {
		return nil
	}
	run.EndTime = time.Now()
	c.state.CurrentRun = nil
	c.state.Finished++
	c.state.LastRun = &RunRecord{
		ID:        run.ID,
		StartTime: run.StartTime,
		EndTime:   run.EndTime,
	}
	return run
}

// State returns the collector state. Callers must not modify it.
func (c *Collector) State() *State {
	return c.state
}
