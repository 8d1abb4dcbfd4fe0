// Package fog derives per-cell visibility from the canonical session state.
// Nothing is retained between calls; the mask is recomputed on every change.
package fog

import "github.com/DoyleJ11/mindmaze-client/internal/engine"

const (
	BaseRadius       = 1
	FlashlightRadius = 2
)

type Effects struct {
	Flashlight bool
}

// Mask is the set of visible cells of a width×height grid.
type Mask struct {
	width, height int
	cells         []bool
	count         int
}

func (m Mask) Width() int  { return m.width }
func (m Mask) Height() int { return m.height }

// Len is the number of visible cells.
func (m Mask) Len() int { return m.count }

// Visible reports whether (x, y) is visible. Cells outside the grid never are.
func (m Mask) Visible(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

func (m Mask) Contains(p engine.Position) bool { return m.Visible(p.X, p.Y) }

// Cells lists visible cells in row-major order.
func (m Mask) Cells() []engine.Position {
	out := make([]engine.Position, 0, m.count)
	for i, v := range m.cells {
		if v {
			out = append(out, engine.Position{X: i % m.width, Y: i / m.width})
		}
	}
	return out
}

// Visible computes the visible cells. Precedence, highest first: the whole
// map when mapVisible, Chebyshev radius 2 around the player with a
// flashlight, radius 1 otherwise.
func Visible(grid [][]int, player engine.Position, effects Effects, mapVisible bool) Mask {
	m := Mask{height: len(grid)}
	if m.height > 0 {
		m.width = len(grid[0])
	}
	m.cells = make([]bool, m.width*m.height)

	if mapVisible {
		for i := range m.cells {
			m.cells[i] = true
		}
		m.count = len(m.cells)
		return m
	}

	r := BaseRadius
	if effects.Flashlight {
		r = FlashlightRadius
	}
	for y := max(0, player.Y-r); y <= min(m.height-1, player.Y+r); y++ {
		for x := max(0, player.X-r); x <= min(m.width-1, player.X+r); x++ {
			m.cells[y*m.width+x] = true
			m.count++
		}
	}
	return m
}

// ForState is Visible applied to the fields of a canonical state.
func ForState(s engine.State) Mask {
	return Visible(s.Maze, s.Player, Effects{Flashlight: s.FlashlightActive}, s.MapVisible)
}

// Chebyshev is max(|dx|, |dy|).
func Chebyshev(a, b engine.Position) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
