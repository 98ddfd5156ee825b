// Package render draws the Nyan Cat progress animation.
//
// A frame occupies NumberOfLines terminal rows. Every sub-draw leaves the
// cursor where it started, so successive frames overwrite the same region in
// place. Output is written one segment per Write call, in a fixed order; the
// cursor model depends on it.
package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/ansel1/nyan/results"
	"github.com/charmbracelet/x/ansi"
)

const (
	NumberOfLines   = 4  // Rows in the animation region
	NyanCatWidth    = 11 // Columns taken by the cat
	ScoreboardWidth = 5  // Columns reserved for the scoreboard
)

// Faces shown by the cat, depending on the latest stats.
const (
	FaceFailed  = "( x .x)"
	FaceSkipped = "( o .o)"
	FaceSuccess = "( ^ .^)"
	FaceIdle    = "( - .-)"
)

// TrajectoryWidth returns the maximum rainbow length for a terminal
// shellWidth columns wide: three quarters of it, minus the cat. It is never
// less than 1.
func TrajectoryWidth(shellWidth int) int {
	width := shellWidth*3/4 - NyanCatWidth
	if width < 1 {
		return 1
	}
	return width
}

// Renderer owns the animation state and writes frames to an io.Writer.
//
// Write errors are ignored: a broken frame is preferable to aborting the run
// with the cursor hidden mid-region.
type Renderer struct {
	out          io.Writer
	rainbow      *Rainbow
	trajectories [NumberOfLines][]string
	widthMax     int
	tick         bool
}

// NewRenderer creates a renderer sized for a terminal shellWidth columns wide.
// rainbow colors the trail segments.
func NewRenderer(out io.Writer, shellWidth int, rainbow *Rainbow) *Renderer {
	r := &Renderer{
		out:      out,
		rainbow:  rainbow,
		widthMax: TrajectoryWidth(shellWidth),
	}
	for i := range r.trajectories {
		r.trajectories[i] = make([]string, 0, r.widthMax)
	}
	return r
}

// Draw renders one frame for stats and advances the animation.
func (r *Renderer) Draw(stats results.RunStats) {
	r.AppendRainbow()
	r.DrawScoreboard(stats)
	r.DrawRainbow()
	r.DrawNyanCat(stats)
	r.tick = !r.tick
}

// AppendRainbow pushes one colored segment onto every trajectory, evicting
// the oldest segment of any trajectory already at full width.
func (r *Renderer) AppendRainbow() {
	segment := "-"
	if r.tick {
		segment = "_"
	}
	rainbowified := r.rainbow.Rainbowify(segment)

	for i, trajectory := range r.trajectories {
		if len(trajectory) >= r.widthMax {
			trajectory = trajectory[len(trajectory)-r.widthMax+1:]
		}
		r.trajectories[i] = append(trajectory, rainbowified)
	}
}

// DrawScoreboard writes the pass, fail and skip counts.
func (r *Renderer) DrawScoreboard(stats results.RunStats) {
	draw := func(color Color, n int) {
		r.write(" ")
		r.write(Colorize(color, strconv.Itoa(n)))
		r.write("\n")
	}

	draw(ColorPass, stats.Success)
	draw(ColorFail, stats.Failed)
	draw(ColorSkip, stats.Skipped)
	r.write("\n")

	r.CursorUp(NumberOfLines)
}

// DrawRainbow writes every trajectory to the right of the scoreboard.
func (r *Renderer) DrawRainbow() {
	for _, trajectory := range r.trajectories {
		r.write(ansi.CursorForward(ScoreboardWidth))
		r.write(strings.Join(trajectory, ""))
		r.write("\n")
	}

	r.CursorUp(NumberOfLines)
}

// DrawNyanCat writes the cat at the head of the rainbow.
func (r *Renderer) DrawNyanCat(stats results.RunStats) {
	startWidth := ScoreboardWidth + len(r.trajectories[0])
	offset := ansi.CursorForward(startWidth)

	r.write(offset)
	r.write("_,------,")
	r.write("\n")

	r.write(offset)
	padding := "   "
	if r.tick {
		padding = "  "
	}
	r.write("_|" + padding + "/\\_/\\ ")
	r.write("\n")

	r.write(offset)
	padding, tail := "__", "^"
	if r.tick {
		padding, tail = "_", "~"
	}
	r.write(tail + "|" + padding + Face(stats) + " ")
	r.write("\n")

	r.write(offset)
	padding = "  "
	if r.tick {
		padding = " "
	}
	r.write(padding + "\"\"  \"\" ")
	r.write("\n")

	r.CursorUp(NumberOfLines)
}

// Face picks the cat's expression. Failures win over skips, skips over passes.
func Face(stats results.RunStats) string {
	switch {
	case stats.Failed > 0:
		return FaceFailed
	case stats.Skipped > 0:
		return FaceSkipped
	case stats.Success > 0:
		return FaceSuccess
	default:
		return FaceIdle
	}
}

// CursorUp moves the cursor up n lines.
func (r *Renderer) CursorUp(n int) {
	r.write(ansi.CursorUp(n))
}

// CursorDown moves the cursor down n lines.
func (r *Renderer) CursorDown(n int) {
	r.write(ansi.CursorDown(n))
}

// HideCursor hides the terminal cursor.
func (r *Renderer) HideCursor() {
	r.write(ansi.HideCursor)
}

// ShowCursor makes the terminal cursor visible again.
func (r *Renderer) ShowCursor() {
	r.write(ansi.ShowCursor)
}

// Tick returns the current animation phase.
func (r *Renderer) Tick() bool {
	return r.tick
}

// TrajectoryWidthMax returns the maximum length of a trajectory.
func (r *Renderer) TrajectoryWidthMax() int {
	return r.widthMax
}

// Trajectories returns a copy of the rainbow rows.
func (r *Renderer) Trajectories() [][]string {
	rows := make([][]string, 0, NumberOfLines)
	for _, trajectory := range r.trajectories {
		row := make([]string, len(trajectory))
		copy(row, trajectory)
		rows = append(rows, row)
	}
	return rows
}

func (r *Renderer) write(s string) {
	_, _ = io.WriteString(r.out, s)
}
