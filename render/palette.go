package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Color is an SGR foreground color code, e.g. 32 for green.
type Color int

// Palette colors used by the reporter.
const (
	ColorPass    Color = 32
	ColorFail    Color = 31
	ColorSkip    Color = 36
	ColorBrowser Color = 33
	ColorStack   Color = 90
)

// Colorize wraps s in the SGR sequence for c followed by a reset.
func Colorize(c Color, s string) string {
	return "\x1b[" + strconv.Itoa(int(c)) + "m" + s + "\x1b[0m"
}

// TerminalColor returns c as one of the 16 basic terminal colors, so styled
// output matches the scoreboard. Codes outside the foreground ranges have no
// color.
func (c Color) TerminalColor() lipgloss.TerminalColor {
	switch {
	case c >= 30 && c <= 37:
		return lipgloss.Color(strconv.Itoa(int(c - 30)))
	case c >= 90 && c <= 97:
		return lipgloss.Color(strconv.Itoa(int(c-90) + 8))
	}
	return lipgloss.NoColor{}
}
