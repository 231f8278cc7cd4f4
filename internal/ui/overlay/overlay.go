// Package overlay draws one rendered view on top of another without
// clearing the screen underneath, keeping ANSI styling on both layers.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where the foreground is anchored.
type Position int

const (
	Center Position = iota
	Top
	Bottom
)

// Place renders fg over bg on a screen of width x height cells. padY keeps
// Top and Bottom placements away from the screen edge.
func Place(fg, bg string, width, height int, pos Position, padY int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	fgLines := strings.Split(fg, "\n")
	x, y := origin(width, height, lipgloss.Width(fg), len(fgLines), pos, padY)

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}

	var right string
	if end := x + ansi.StringWidth(fg); end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}

func origin(width, height, fgWidth, fgHeight int, pos Position, padY int) (x, y int) {
	x = (width - fgWidth) / 2
	switch pos {
	case Top:
		y = padY
	case Bottom:
		y = height - fgHeight - padY
	default:
		y = (height - fgHeight) / 2
	}
	return max(x, 0), max(y, 0)
}
