package reporter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ansel1/nyan/config"
	"github.com/ansel1/nyan/engine"
	"github.com/ansel1/nyan/render"
	"github.com/ansel1/nyan/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
	cursorUp   = "\x1b[4A"
	cursorDown = "\x1b[4B"
)

func strPtr(s string) *string { return &s }

func browser(id, name string, success, failed, skipped int) results.BrowserInfo {
	return results.BrowserInfo{
		ID:         id,
		Name:       name,
		LastResult: &results.RunStats{Success: success, Failed: failed, Skipped: skipped},
	}
}

func failure(suite []string, description, log string) results.SpecResult {
	return results.SpecResult{
		Suite:       suite,
		Description: description,
		Log:         []*string{strPtr(log)},
	}
}

func pass(suite []string, description string) results.SpecResult {
	return results.SpecResult{Success: true, Suite: suite, Description: description}
}

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Animate = false
	return cfg
}

func TestReporter_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil, WithWidth(func() int { return 100 }))

	chrome := results.BrowserInfo{ID: "1", Name: "Chrome 120"}
	r.OnRunStart([]results.BrowserInfo{chrome})
	assert.Equal(t, hideCursor+"\n", buf.String())

	r.OnBrowserStart(chrome)
	r.OnBrowserLog(chrome, "'hello from the browser'", "log")
	r.OnSpecComplete(browser("1", "Chrome 120", 1, 0, 0), pass([]string{"Math"}, "subtracts"))
	r.OnSpecComplete(browser("1", "Chrome 120", 1, 1, 0), failure([]string{"Math"}, "adds", "Expected 2 got 3"))

	frames := buf.String()
	assert.Equal(t, 6, strings.Count(frames, cursorUp), "three cursor-ups per frame")
	assert.Contains(t, frames, render.FaceSuccess)
	assert.Contains(t, frames, render.FaceFailed)

	require.NoError(t, r.OnRunComplete([]results.BrowserInfo{chrome}, results.RunSummary{Success: 1, Failed: 1, ExitCode: 1}))

	report := strings.TrimPrefix(buf.String(), frames)
	assert.True(t, strings.HasPrefix(report, cursorDown))
	assert.True(t, strings.HasSuffix(report, showCursor))
	assert.Contains(t, report, "1 test completed")
	assert.Contains(t, report, "1 test failed")
	assert.Contains(t, report, "Failed Tests:")
	assert.Contains(t, report, "✗ adds")
	assert.Contains(t, report, "Expected 2 got 3")
	assert.Contains(t, report, "LOG MESSAGES FOR: Chrome 120")
	assert.Contains(t, report, "'hello from the browser'")

	assert.True(t, r.HasFailures())
	assert.Equal(t, 1, r.RunsCompleted())
	require.NotNil(t, r.LastRun())
	assert.False(t, r.LastRun().EndTime.IsZero())
}

func TestReporter_StatsAreOverwritten(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())

	r.OnRunStart(nil)
	r.OnSpecComplete(browser("1", "Chrome", 5, 2, 1), pass([]string{"A"}, "a"))
	r.OnSpecComplete(browser("1", "Chrome", 6, 2, 1), pass([]string{"A"}, "b"))

	assert.Equal(t, results.RunStats{Success: 6, Failed: 2, Skipped: 1}, r.run.Stats)
}

func TestReporter_MissingLastResult(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil)

	r.OnRunStart(nil)
	r.OnSpecComplete(results.BrowserInfo{ID: "1", Name: "Chrome"}, results.SpecResult{})

	assert.Equal(t, results.RunStats{}, r.run.Stats)
	assert.Contains(t, buf.String(), render.FaceIdle)
	assert.True(t, r.run.Store.Tree().Empty())
}

func TestReporter_SuppressErrorReport(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.SuppressErrorReport = true
	r := New(&buf, cfg)

	r.OnRunStart(nil)
	r.OnSpecComplete(browser("1", "Chrome", 0, 1, 0), failure([]string{"Math"}, "adds", "boom"))

	assert.True(t, r.run.Store.Tree().Empty())
	assert.Contains(t, buf.String(), render.FaceFailed, "animation still runs")

	require.NoError(t, r.OnRunComplete(nil, results.RunSummary{}))
	assert.NotContains(t, buf.String(), "Failed Tests:")
	assert.NotContains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "1 test failed")
}

func TestReporter_BrowserErrorsTakePrecedence(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())

	chrome := results.BrowserInfo{ID: "1", Name: "Chrome"}
	r.OnRunStart(nil)
	r.OnBrowserLog(chrome, "'should not be printed'", "log")
	r.OnSpecComplete(browser("1", "Chrome", 0, 1, 0), failure([]string{"Math"}, "adds", "boom"))
	r.OnBrowserError(chrome, "ReferenceError: foo is not defined")

	require.NoError(t, r.OnRunComplete(nil, results.RunSummary{Error: true}))

	output := buf.String()
	assert.Contains(t, output, "ERROR in Chrome:")
	assert.Contains(t, output, "ReferenceError: foo is not defined")
	assert.Contains(t, output, "\x1b[38;5;", "error lines are rainbow colored")
	assert.NotContains(t, output, "Failed Tests:")
	assert.NotContains(t, output, "should not be printed")
	assert.True(t, r.HasFailures())
}

func TestReporter_NoAnimation(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())

	r.OnRunStart(nil)
	r.OnSpecComplete(browser("1", "Chrome", 1, 0, 0), pass([]string{"A"}, "a"))
	require.NoError(t, r.OnRunComplete(nil, results.RunSummary{Success: 1}))

	assert.Equal(t, "\n\n  ✔ 1 test completed\n", buf.String())
	assert.False(t, r.HasFailures())
}

func TestReporter_StateResetBetweenRuns(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())

	r.OnRunStart(nil)
	r.OnSpecComplete(browser("1", "Chrome", 0, 1, 0), failure([]string{"First"}, "one", "first failure"))
	r.OnBrowserLog(results.BrowserInfo{ID: "1", Name: "Chrome"}, "'first log'", "log")
	require.NoError(t, r.OnRunComplete(nil, results.RunSummary{}))

	buf.Reset()
	r.OnRunStart(nil)
	r.OnSpecComplete(browser("1", "Chrome", 0, 1, 0), failure([]string{"Second"}, "two", "second failure"))
	require.NoError(t, r.OnRunComplete(nil, results.RunSummary{}))

	output := buf.String()
	assert.Contains(t, output, "second failure")
	assert.NotContains(t, output, "first failure")
	assert.NotContains(t, output, "first log")
	assert.Equal(t, 2, r.RunsCompleted())
	assert.Equal(t, 2, r.LastRun().ID)
}

func TestReporter_WidthReadOncePerRun(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	r := New(&buf, nil, WithWidth(func() int {
		calls++
		return 20
	}))

	r.OnRunStart(nil)
	for i := 0; i < 10; i++ {
		r.OnSpecComplete(browser("1", "Chrome", i, 0, 0), pass([]string{"A"}, "a"))
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, r.run.renderer.TrajectoryWidthMax())
	for _, trajectory := range r.run.renderer.Trajectories() {
		assert.Len(t, trajectory, 4)
	}
}

func TestReporter_ZeroWidthFallsBack(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil, WithWidth(func() int { return 0 }))

	r.OnRunStart(nil)
	assert.Equal(t, render.TrajectoryWidth(DefaultWidth), r.run.renderer.TrajectoryWidthMax())
}

func TestReporter_RawLinesHeldDuringRun(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())

	require.NoError(t, r.OnRawLine("before run"))
	assert.Equal(t, "before run\n", buf.String())

	r.OnRunStart(nil)
	require.NoError(t, r.OnRawLine("webpack compiled"))
	assert.NotContains(t, buf.String(), "webpack compiled")

	require.NoError(t, r.OnRunComplete(nil, results.RunSummary{}))
	assert.Contains(t, buf.String(), "webpack compiled")
}

func TestReporter_FinishAbandonedRun(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil)

	require.NoError(t, r.Finish(), "no run in progress")
	assert.Empty(t, buf.String())

	r.OnRunStart(nil)
	r.OnSpecComplete(browser("1", "Chrome", 1, 0, 0), pass([]string{"A"}, "a"))
	require.NoError(t, r.Finish())

	assert.True(t, strings.HasSuffix(buf.String(), showCursor))
	assert.Nil(t, r.run)
}

func TestReporter_ImplicitRunStart(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())

	r.OnSpecComplete(browser("1", "Chrome", 0, 1, 0), failure([]string{"Math"}, "adds", "boom"))
	require.NotNil(t, r.run)
	assert.Equal(t, 1, r.run.ID)
	assert.Nil(t, r.LastRun())
	assert.False(t, r.run.Store.Tree().Empty())
}

func TestReporter_ProcessEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"Type":"run_start","Browsers":[{"id":"1","name":"Chrome 120"}]}`,
		`{"Type":"browser_start","Browser":{"id":"1","name":"Chrome 120"}}`,
		`webpack compiled successfully`,
		`{"Type":"browser_log","Browser":{"id":"1","name":"Chrome 120"},"Log":"'ready'","LogType":"log"}`,
		`{"Type":"spec_complete","Browser":{"id":"1","name":"Chrome 120","lastResult":{"success":1}},"Result":{"success":true,"suite":["Math"],"description":"subtracts","log":[]}}`,
		`{"Type":"spec_complete","Browser":{"id":"1","name":"Chrome 120","lastResult":{"success":1,"failed":1}},"Result":{"success":false,"suite":["Math","Add"],"description":"adds","log":["Expected 2 got 3\n    at adds.spec.js:4"]}}`,
		`{"Type":"spec_complete","Browser":{"id":"1","name":"Chrome 120","lastResult":{"success":1,"failed":1,"skipped":1}},"Result":{"success":false,"skipped":true,"suite":["Math"],"description":"divides","log":[]}}`,
		`{"Type":"mystery"}`,
		`{"Type":"run_complete","Browsers":[{"id":"1","name":"Chrome 120"}],"Summary":{"success":1,"failed":1,"exitCode":1}}`,
	}, "\n")

	var buf bytes.Buffer
	var logBuf bytes.Buffer
	r := New(&buf, quietConfig(), WithLogger(slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	require.NoError(t, r.ProcessEvents(engine.NewEngine().Stream(context.Background(), strings.NewReader(input))))

	expected := strings.Join([]string{
		"",
		"",
		"webpack compiled successfully",
		"",
		"  ✔ 1 test completed",
		"  ✖ 1 test failed",
		"  ∅ 1 test skipped",
		"",
		"Failed Tests:",
		"─────────────",
		"  Math",
		"    Add",
		"      ✗ adds",
		"        Chrome 120",
		"          Expected 2 got 3",
		"              at adds.spec.js:4",
		"",
		"LOG MESSAGES FOR: Chrome 120",
		"    'ready'",
		"",
	}, "\n")
	assert.Equal(t, expected, buf.String())
	assert.True(t, r.HasFailures())
	assert.Contains(t, logBuf.String(), "ignoring unknown event")
	assert.Contains(t, logBuf.String(), "run complete")
}

func TestReporter_ProcessEvents_Truncated(t *testing.T) {
	input := strings.Join([]string{
		`{"Type":"run_start"}`,
		`{"Type":"spec_complete","Browser":{"id":"1","name":"Chrome","lastResult":{"success":1}},"Result":{"success":true,"suite":["A"],"description":"a"}}`,
	}, "\n")

	var buf bytes.Buffer
	r := New(&buf, nil)

	require.NoError(t, r.ProcessEvents(engine.NewEngine().Stream(context.Background(), strings.NewReader(input))))

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, hideCursor))
	assert.True(t, strings.HasSuffix(output, showCursor))
	assert.Equal(t, 1, strings.Count(output, showCursor))
	assert.Contains(t, output, "1 test completed")
}

func TestReporter_FinishedRunIsReleased(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, quietConfig())
	chrome := results.BrowserInfo{ID: "1", Name: "Chrome"}

	var previous *results.Run
	for i := 0; i < 3; i++ {
		r.OnRunStart(nil)
		r.OnBrowserLog(chrome, "'log'", "log")
		r.OnSpecComplete(browser("1", "Chrome", 0, 1, 0), failure([]string{"Math"}, "adds", "boom"))

		if previous != nil {
			assert.NotSame(t, previous.Store, r.run.Store)
			assert.NotSame(t, previous.Logs, r.run.Logs)
		}
		previous = r.run.Run
		require.NoError(t, r.OnRunComplete(nil, results.RunSummary{}))
		assert.Nil(t, r.run)
	}

	state := r.collector.State()
	assert.Nil(t, state.CurrentRun)
	assert.Equal(t, 3, state.Finished)
	assert.Equal(t, 3, state.LastRun.ID)
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestReporter_ProcessEventsWriteError(t *testing.T) {
	input := strings.Repeat("raw line outside a run\n", 500)

	ctx, cancel := context.WithCancel(context.Background())
	events := engine.NewEngine().Stream(ctx, strings.NewReader(input))

	r := New(errWriter{}, quietConfig())
	err := r.ProcessEvents(events)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing raw output: broken pipe")

	cancel()
	for range events {
	}
}
