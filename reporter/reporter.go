// Package reporter implements the host runner's lifecycle hooks: it feeds
// spec results to the failure store, drives the animation and prints the
// final report.
package reporter

import (
	"io"
	"log/slog"

	"github.com/ansel1/nyan/config"
	"github.com/ansel1/nyan/output"
	"github.com/ansel1/nyan/render"
	"github.com/ansel1/nyan/results"
	"github.com/pkg/errors"
)

// DefaultWidth is the terminal width assumed when none can be detected.
const DefaultWidth = 80

// Reporter is the run controller.
//
// All per-run state lives in a run created by OnRunStart and dropped by
// OnRunComplete. The host delivers events one at a time; Reporter is not
// safe for concurrent use.
type Reporter struct {
	out        io.Writer
	cfg        config.Config
	width      func() int
	logger     *slog.Logger
	printOpts  []output.Option
	collector  *results.Collector
	run        *run
	hasFailure bool
}

// run is the state of the run in progress.
type run struct {
	*results.Run
	rainbow  *render.Rainbow
	renderer *render.Renderer
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithWidth sets the function used to read the terminal width at the start
// of each run.
func WithWidth(width func() int) Option {
	return func(r *Reporter) {
		r.width = width
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithPrinterOptions passes options to the final report printer.
func WithPrinterOptions(opts ...output.Option) Option {
	return func(r *Reporter) {
		r.printOpts = append(r.printOpts, opts...)
	}
}

// New creates a reporter writing to out. A nil cfg means config.Default().
func New(out io.Writer, cfg *config.Config, opts ...Option) *Reporter {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Reporter{
		out:       out,
		cfg:       *cfg,
		width:     func() int { return DefaultWidth },
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		collector: results.NewCollector(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg.MaxLogLineWidth > 0 {
		r.printOpts = append(r.printOpts, output.WithMaxLogWidth(r.cfg.MaxLogLineWidth))
	}
	return r
}

// OnRunStart resets all per-run state, hides the cursor and writes a blank
// line above the animation region.
func (r *Reporter) OnRunStart(browsers []results.BrowserInfo) {
	if r.run != nil {
		r.logger.Warn("run started before previous run completed", "run", r.run.ID)
	}
	r.startRun()
	r.logger.Info("run started", "run", r.run.ID, "browsers", len(browsers))
}

func (r *Reporter) startRun() {
	width := r.width()
	if width <= 0 {
		width = DefaultWidth
	}

	rainbow := render.NewRainbow()
	r.run = &run{
		Run:      r.collector.StartRun(),
		rainbow:  rainbow,
		renderer: render.NewRenderer(r.out, width, rainbow),
	}

	if r.cfg.Animate {
		r.run.renderer.HideCursor()
	}
	_, _ = io.WriteString(r.out, "\n")
}

// current returns the run in progress, starting one if an event arrives
// outside of a run.
func (r *Reporter) current() *run {
	if r.run == nil {
		r.logger.Debug("event outside of a run, starting one implicitly")
		r.startRun()
	}
	return r.run
}

// OnBrowserStart registers a browser as active.
func (r *Reporter) OnBrowserStart(browser results.BrowserInfo) {
	run := r.current()
	run.Browsers = append(run.Browsers, browser)
	r.logger.Debug("browser started", "browser", browser.Name, "active", len(run.Browsers))
}

// OnBrowserLog records a console message from browser.
func (r *Reporter) OnBrowserLog(browser results.BrowserInfo, log, logType string) {
	r.current().Logs.Append(browser, log)
	r.logger.Debug("browser log", "browser", browser.Name, "type", logType)
}

// OnSpecComplete takes the browser's latest stats, stores the result unless
// error reporting is suppressed, and draws one frame.
func (r *Reporter) OnSpecComplete(browser results.BrowserInfo, result results.SpecResult) {
	run := r.current()
	run.Stats = browser.Stats()

	if !r.cfg.SuppressErrorReport {
		run.Store.Save(browser, result)
	}

	if r.cfg.Animate {
		run.renderer.Draw(run.Stats)
	}
}

// OnBrowserError records an error the browser reported outside of any spec.
func (r *Reporter) OnBrowserError(browser results.BrowserInfo, err string) {
	run := r.current()
	run.Errors = append(run.Errors, results.BrowserError{Browser: browser, Error: err})
	r.logger.Warn("browser error", "browser", browser.Name, "error", err)
}

// OnRawLine handles output that is not part of the reporter protocol. During
// a run it is held back until the report so it can't disturb the animation.
func (r *Reporter) OnRawLine(line string) error {
	if r.run != nil {
		r.run.RawOutput = append(r.run.RawOutput, line)
		return nil
	}
	if _, err := io.WriteString(r.out, line+"\n"); err != nil {
		return errors.Wrap(err, "writing raw output")
	}
	return nil
}

// OnRunComplete prints the final report and ends the run.
//
// If any browser reported an error, only those errors are printed. Otherwise
// the failure tree and the browser logs are printed.
func (r *Reporter) OnRunComplete(browsers []results.BrowserInfo, summary results.RunSummary) error {
	run := r.current()
	defer func() {
		if r.cfg.Animate {
			run.renderer.ShowCursor()
		}
		r.collector.FinishRun()
		r.run = nil
	}()

	if r.cfg.Animate {
		run.renderer.CursorDown(render.NumberOfLines)
	}

	if run.Stats.Failed > 0 || len(run.Errors) > 0 || summary.Failed > 0 || summary.Error || summary.ExitCode != 0 {
		r.hasFailure = true
	}

	r.logger.Info("run complete",
		"run", run.ID,
		"browsers", len(browsers),
		"success", run.Stats.Success,
		"failed", run.Stats.Failed,
		"skipped", run.Stats.Skipped,
		"browserErrors", len(run.Errors),
	)

	printer := output.NewPrinter(r.out, r.printOpts...)
	if err := printer.PrintRawOutput(run.RawOutput); err != nil {
		return err
	}

	if len(run.Errors) > 0 {
		return printer.PrintBrowserErrors(run.Errors, run.rainbow.Rainbowify)
	}

	if err := printer.PrintTestFailures(run.Store.Tree(), run.Stats, r.cfg.SuppressErrorReport); err != nil {
		return err
	}
	return printer.PrintBrowserLogs(run.Logs)
}

// Finish completes a run the host abandoned, so the report is printed and
// the cursor is restored. It does nothing between runs.
func (r *Reporter) Finish() error {
	if r.run == nil {
		return nil
	}
	r.logger.Warn("input ended before run complete", "run", r.run.ID)
	return r.OnRunComplete(r.run.Browsers, results.RunSummary{})
}

// HasFailures reports whether any completed run had failed specs or browser
// errors.
func (r *Reporter) HasFailures() bool {
	return r.hasFailure
}

// LastRun returns the record of the most recently finished run, or nil if
// no run has finished yet. Finished runs keep no failures, logs or errors.
func (r *Reporter) LastRun() *results.RunRecord {
	return r.collector.State().LastRun
}

// RunsCompleted returns the number of runs finished so far.
func (r *Reporter) RunsCompleted() int {
	return r.collector.State().Finished
}
