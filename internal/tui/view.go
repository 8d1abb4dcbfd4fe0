package tui

import (
	"fmt"
	"strings"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/fog"
	"github.com/DoyleJ11/mindmaze-client/internal/session"
	"github.com/gdamore/tcell/v2"
)

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorSlateGray)
	styleExit   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleTrap   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleKey    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHit    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	styleEnemy  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Glyphs for cells outside the fog, by cell code.
var cellGlyphs = map[int]struct {
	r     rune
	style tcell.Style
}{
	engine.CellPath:  {'·', styleDim},
	engine.CellWall:  {'█', styleWall},
	engine.CellExit:  {'E', styleExit},
	engine.CellStart: {'S', styleDim},
	engine.CellTrap:  {'^', styleTrap},
	engine.CellKey:   {'k', styleKey},
}

const fogGlyph = '░'

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// draw renders one frame. muted is shown in the status line.
func draw(s tcell.Screen, snap session.Snapshot, muted bool) {
	s.Clear()
	st := snap.State

	x := drawText(s, 0, 0, styleTitle, "MindMaze")
	x = drawText(s, x+2, 0, styleText, strings.ToUpper(string(st.Phase)))
	if muted {
		drawText(s, x+2, 0, styleDim, "[muted]")
	}

	y := 2
	switch st.Phase {
	case engine.PhaseMenu:
		y = drawMenu(s, y, snap)
	default:
		drawStatus(s, 1, st)
		y = drawMaze(s, y, st)
		y = drawPhaseFooter(s, y+1, st)
	}

	if snap.Err != nil {
		drawText(s, 0, y+1, styleError, "! "+snap.Err.Error())
	}
	s.Show()
}

func drawStatus(s tcell.Screen, y int, st engine.State) {
	parts := []string{
		fmt.Sprintf("%s L%d", st.Difficulty, st.Level),
		fmt.Sprintf("HP %d", st.Health),
		fmt.Sprintf("EN %d", st.Energy),
		fmt.Sprintf("T %ds", st.TimeLeft),
		fmt.Sprintf("Score %d", st.Score),
		fmt.Sprintf("Lives %d", st.Lives),
	}
	if st.KeysRequired > 0 {
		parts = append(parts, fmt.Sprintf("Keys %d/%d", st.KeysCollected, st.KeysRequired))
	}
	var effects []string
	if st.MapVisible {
		effects = append(effects, fmt.Sprintf("map %ds", st.MapTimer))
	}
	if st.FlashlightActive {
		effects = append(effects, "flashlight")
	}
	if st.CompassActive {
		effects = append(effects, "compass")
	}
	if st.IsTimeFrozen {
		effects = append(effects, "time frozen")
	}
	if len(effects) > 0 {
		parts = append(parts, "("+strings.Join(effects, ", ")+")")
	}
	drawText(s, 0, y, styleText, strings.Join(parts, "  "))
}

// drawMaze paints the grid under the fog and returns the next free row.
func drawMaze(s tcell.Screen, top int, st engine.State) int {
	mask := fog.ForState(st)
	for y, row := range st.Maze {
		for x, cell := range row {
			if !mask.Visible(x, y) {
				s.SetContent(x, top+y, fogGlyph, nil, styleDim)
				continue
			}
			g, ok := cellGlyphs[cell]
			if !ok {
				g = cellGlyphs[engine.CellWall]
			}
			s.SetContent(x, top+y, g.r, nil, g.style)
		}
	}
	for _, e := range st.Enemies {
		if mask.Contains(e.Position) {
			s.SetContent(e.Position.X, top+e.Position.Y, 'X', nil, styleEnemy)
		}
	}
	if st.Height() > 0 {
		ps := stylePlayer
		if st.PlayerHit {
			ps = styleHit
		}
		s.SetContent(st.Player.X, top+st.Player.Y, '@', nil, ps)
	}
	return top + st.Height()
}

func drawPhaseFooter(s tcell.Screen, y int, st engine.State) int {
	switch {
	case st.PuzzleActive():
		if st.Puzzle != nil {
			drawText(s, 0, y, styleKey, "Puzzle: "+strings.Join(st.Puzzle.Sequence, " "))
			y++
			drawText(s, 0, y, styleText, "So far: "+strings.Join(st.Puzzle.Progress, " "))
			y++
		}
		drawText(s, 0, y, styleDim, "[y] solved  [x] give up  [h] hide")
	case st.Phase == engine.PhaseVictory:
		drawText(s, 0, y, styleExit, fmt.Sprintf("Level cleared with %ds left, score %d.", st.TimeLeft, st.Score))
		y++
		drawText(s, 0, y, styleDim, "[n] next level  [r] menu  [m] mute  [q] quit")
	case st.Phase == engine.PhaseGameOver:
		drawText(s, 0, y, styleError, "Game over.")
		y++
		drawText(s, 0, y, styleDim, "[r] menu  [q] quit")
	default:
		drawText(s, 0, y, styleDim, "arrows/WASD move  [r] menu  [m] mute  [q] quit")
	}
	return y + 1
}

func drawMenu(s tcell.Screen, y int, snap session.Snapshot) int {
	st := snap.State
	drawText(s, 0, y, styleText, "Difficulty: [e]asy  n[o]rmal  [i]mpossible")
	y++
	chosen := "none"
	if st.Difficulty != engine.DifficultyNone {
		chosen = string(st.Difficulty)
	}
	drawText(s, 0, y, styleKey, "Selected: "+chosen)
	y += 2

	for _, d := range engine.Difficulties {
		x := drawText(s, 0, y, styleText, fmt.Sprintf("%-11s", d))
		for level := engine.MinLevel; level <= engine.MaxLevel; level++ {
			label := fmt.Sprintf("%d ", level)
			style := styleText
			if !snap.Progress.IsUnlocked(d, level) {
				label, style = "- ", styleDim
			}
			x = drawText(s, x, y, style, label)
		}
		if best := snap.Progress.BestScore(d, 1); best > 0 {
			drawText(s, x+1, y, styleDim, fmt.Sprintf("best L1 %d", best))
		}
		y++
	}
	y++
	drawText(s, 0, y, styleDim, "[enter] level 1  [1-6] unlocked level  [m] mute  [q] quit")
	return y + 1
}
