package render

import (
	"math"
	"strconv"
)

// Rainbow colors text segments with a cycling sequence of xterm-256 hues.
type Rainbow struct {
	colors []int
	index  int
}

// NewRainbow creates a cycler positioned at the first hue.
func NewRainbow() *Rainbow {
	return &Rainbow{colors: rainbowColors()}
}

// rainbowColors samples three phase-shifted sine waves over the 6x6x6 color
// cube, giving 42 hues.
func rainbowColors() []int {
	colors := make([]int, 0, 6*7)
	pi3 := math.Floor(math.Pi / 3)
	for i := 0; i < 6*7; i++ {
		n := float64(i) * (1.0 / 6)
		r := math.Floor(3*math.Sin(n) + 3)
		g := math.Floor(3*math.Sin(n+2*pi3) + 3)
		b := math.Floor(3*math.Sin(n+4*pi3) + 3)
		colors = append(colors, int(36*r+6*g+b+16))
	}
	return colors
}

// Rainbowify wraps text in the current hue and advances to the next one.
func (r *Rainbow) Rainbowify(text string) string {
	color := r.colors[r.index%len(r.colors)]
	r.index++
	return "\x1b[38;5;" + strconv.Itoa(color) + "m" + text + "\x1b[0m"
}

// Len returns the number of hues in the cycle.
func (r *Rainbow) Len() int {
	return len(r.colors)
}
