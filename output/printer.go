package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ansel1/nyan/render"
	"github.com/ansel1/nyan/results"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
)

// Symbol constants for the final report
const (
	SymbolPass = "✔"
	SymbolFail = "✖"
	SymbolSkip = "∅"
	SymbolTest = "✗"
)

// Indent is one nesting level in the failure tree.
const Indent = "  "

// Printer writes the end-of-run report: counts, the failure tree, browser
// console logs and browser errors.
type Printer struct {
	writer      io.Writer
	maxLogWidth int // Clip log messages to this many columns; 0 disables clipping
	useColors   bool

	passStyle    lipgloss.Style
	failStyle    lipgloss.Style
	skipStyle    lipgloss.Style
	headerStyle  lipgloss.Style
	browserStyle lipgloss.Style
	stackStyle   lipgloss.Style
}

// Option configures a Printer.
type Option func(*Printer)

// WithColors forces colors on or off.
func WithColors(enabled bool) Option {
	return func(p *Printer) {
		p.useColors = enabled
	}
}

// WithMaxLogWidth clips each browser log message to width display columns.
func WithMaxLogWidth(width int) Option {
	return func(p *Printer) {
		p.maxLogWidth = width
	}
}

// NewPrinter creates a printer writing to w.
//
// Colors are enabled when w is a terminal.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	useColors := false
	if f, ok := w.(*os.File); ok {
		useColors = isatty.IsTerminal(f.Fd())
	}

	p := &Printer{
		writer:       w,
		useColors:    useColors,
		passStyle:    lipgloss.NewStyle().Foreground(render.ColorPass.TerminalColor()),
		failStyle:    lipgloss.NewStyle().Foreground(render.ColorFail.TerminalColor()),
		skipStyle:    lipgloss.NewStyle().Foreground(render.ColorSkip.TerminalColor()),
		headerStyle:  lipgloss.NewStyle().Bold(true),
		browserStyle: lipgloss.NewStyle().Foreground(render.ColorBrowser.TerminalColor()),
		stackStyle:   lipgloss.NewStyle().Foreground(render.ColorStack.TerminalColor()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.useColors {
		return s
	}
	return style.Render(s)
}

func (p *Printer) flush(sb *strings.Builder, what string) error {
	if _, err := io.WriteString(p.writer, sb.String()); err != nil {
		return errors.Wrapf(err, "writing %s", what)
	}
	return nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func sectionHeader(header string) string {
	return header + "\n" + strings.Repeat("─", runewidth.StringWidth(header)) + "\n"
}

// PrintTestFailures prints the run counts followed by the failure tree.
// The tree is left out when suppressed or empty.
func (p *Printer) PrintTestFailures(tree *results.Tree, stats results.RunStats, suppressErrorReport bool) error {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(Indent + p.render(p.passStyle, SymbolPass+" "+pluralize(stats.Success, "test")+" completed") + "\n")
	if stats.Failed > 0 {
		sb.WriteString(Indent + p.render(p.failStyle, SymbolFail+" "+pluralize(stats.Failed, "test")+" failed") + "\n")
	}
	if stats.Skipped > 0 {
		sb.WriteString(Indent + p.render(p.skipStyle, SymbolSkip+" "+pluralize(stats.Skipped, "test")+" skipped") + "\n")
	}

	if !suppressErrorReport && tree != nil && !tree.Empty() {
		sb.WriteString("\n")
		sb.WriteString(p.render(p.headerStyle, sectionHeader("Failed Tests:")))
		tree.Walk(func(suite *results.Suite, depth int) {
			p.writeSuite(&sb, suite, depth)
		})
	}

	return p.flush(&sb, "test failures")
}

func (p *Printer) writeSuite(sb *strings.Builder, suite *results.Suite, depth int) {
	indent := strings.Repeat(Indent, depth+1)
	sb.WriteString(indent + p.render(p.headerStyle, suite.Name) + "\n")

	for _, test := range suite.Tests {
		sb.WriteString(indent + Indent + p.render(p.failStyle, SymbolTest+" "+test.Name) + "\n")

		for _, browser := range test.Browsers {
			sb.WriteString(indent + Indent + Indent + p.render(p.browserStyle, browser.Name) + "\n")

			for i, line := range browser.Errors {
				style := p.stackStyle
				if i == 0 {
					style = p.failStyle
				}
				sb.WriteString(indent + Indent + Indent + Indent + p.render(style, line) + "\n")
			}
		}
	}
}

// PrintBrowserLogs prints the console output captured from each browser.
func (p *Printer) PrintBrowserLogs(logs *results.LogBuffer) error {
	if logs == nil || logs.Len() == 0 {
		return nil
	}

	var sb strings.Builder
	for _, log := range logs.Logs() {
		sb.WriteString("\n")
		sb.WriteString(p.render(p.headerStyle, "LOG MESSAGES FOR: ") + p.render(p.browserStyle, log.Name) + "\n")
		for _, msg := range log.Messages {
			if p.maxLogWidth > 0 {
				msg = runewidth.Truncate(msg, p.maxLogWidth, "…")
			}
			sb.WriteString(Indent + Indent + msg + "\n")
		}
	}

	return p.flush(&sb, "browser logs")
}

// PrintBrowserErrors prints errors reported by browsers outside of any spec,
// coloring each line with rainbowify.
func (p *Printer) PrintBrowserErrors(errs []results.BrowserError, rainbowify func(string) string) error {
	if len(errs) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString("\n")
		sb.WriteString(p.render(p.failStyle, "ERROR in "+e.Browser.Name+":") + "\n")
		for _, line := range strings.Split(e.Error, "\n") {
			if rainbowify != nil {
				line = rainbowify(line)
			}
			sb.WriteString(line + "\n")
		}
	}

	return p.flush(&sb, "browser errors")
}

// PrintRawOutput prints lines that were not part of the reporter protocol.
func (p *Printer) PrintRawOutput(lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for _, line := range lines {
		sb.WriteString(line + "\n")
	}
	return p.flush(&sb, "raw output")
}
