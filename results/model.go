package results

import (
	"time"
)

// RunStats is the host's running tally for a browser.
//
// The reporter keeps only the most recent snapshot; it is overwritten, not
// accumulated, on every completed spec.
type RunStats struct {
	Success      int  `json:"success"`
	Failed       int  `json:"failed"`
	Skipped      int  `json:"skipped"`
	Error        bool `json:"error,omitempty"`
	Disconnected bool `json:"disconnected,omitempty"`
}

// BrowserInfo describes a browser as reported by the host runner.
type BrowserInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LastResult *RunStats `json:"lastResult,omitempty"`
}

// Stats returns the browser's last result, or zero stats if the host didn't send one.
func (b BrowserInfo) Stats() RunStats {
	if b.LastResult == nil {
		return RunStats{}
	}
	return *b.LastResult
}

// SpecResult is the outcome of a single spec executed by one browser.
type SpecResult struct {
	Success     bool      `json:"success"`
	Skipped     bool      `json:"skipped"`
	Suite       []string  `json:"suite"`       // Enclosing suites, outermost first
	Description string    `json:"description"` // Test name
	Log         []*string `json:"log"`         // Failure messages; nil entries are JSON nulls
}

// Failed reports whether the result is a real failure: not passed and not skipped.
func (r SpecResult) Failed() bool {
	return !r.Success && !r.Skipped
}

// RunSummary is the host's payload for the end of a run.
type RunSummary struct {
	Success      int  `json:"success"`
	Failed       int  `json:"failed"`
	Error        bool `json:"error"`
	Disconnected bool `json:"disconnected"`
	ExitCode     int  `json:"exitCode"`
}

// Suite is a node of the failure tree.
type Suite struct {
	Name   string
	Suites []*Suite
	Tests  []*Test

	suiteIndex map[string]int
	testIndex  map[string]int
}

// Test is a failing test inside a suite.
type Test struct {
	Name     string
	Browsers []*Browser

	browserIndex map[string]int
}

// Browser holds the failure details of one test in one browser.
//
// Errors is nil when the failing result carried no log message.
type Browser struct {
	Name   string
	Errors []string
}

// Tree is the root of the failure tree: an ordered list of top level suites.
type Tree struct {
	Suites []*Suite

	suiteIndex map[string]int
}

// Run represents a single test run, from run start to run complete.
type Run struct {
	ID        int           // Sequential run ID (1, 2, 3...)
	StartTime time.Time     // When the run started
	EndTime   time.Time     // When the run ended
	Browsers  []BrowserInfo // Browsers registered via browser start, in order
	Stats     RunStats      // Latest stats snapshot
	Store     *Store        // Failure tree
	Logs      *LogBuffer    // Browser console output
	Errors    []BrowserError
	RawOutput []string // Non-protocol lines seen during the run
}

// NewRun creates a new run.
func NewRun(id int) *Run {
	return &Run{
		ID:        id,
		StartTime: time.Now(),
		Browsers:  make([]BrowserInfo, 0),
		Store:     NewStore(),
		Logs:      NewLogBuffer(),
		Errors:    make([]BrowserError, 0),
		RawOutput: make([]string, 0),
	}
}
