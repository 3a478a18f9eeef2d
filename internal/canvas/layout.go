// Package canvas lays entries out as boxes on a character grid, computes
// the connector curves between their handles and renders both to text or
// PNG.
package canvas

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"threef/internal/connect"
	"threef/internal/workspace"
)

const (
	headerRows  = 2
	columnGap   = 3
	rowGap      = 1
	minBoxWidth = 8
	minBoxRows  = 3
)

// Box is an entry placed on the grid.
type Box struct {
	EntryID  string
	Category workspace.Category
	X        int
	Y        int
	Width    int
	Height   int
	Lines    []string
}

func (b Box) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// HandlePoint is the border cell a handle sits on.
func (b Box) HandlePoint(side workspace.Side) connect.Point {
	y := b.Y + b.Height/2
	if side == workspace.Right {
		return connect.Point{X: b.X + b.Width - 1, Y: y}
	}
	return connect.Point{X: b.X, Y: y}
}

// Layout is the placement of every live entry for one screen size.
type Layout struct {
	Width   int
	Height  int
	Columns [3]int
	Boxes   []Box
}

// Arrange stacks the entries of each category in its own column.
func Arrange(entries []workspace.Entry, width, height int) *Layout {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	l := &Layout{Width: width, Height: height}
	colWidth := width / len(workspace.Categories)
	boxWidth := colWidth - 2*columnGap
	if boxWidth < minBoxWidth {
		boxWidth = minBoxWidth
	}
	for i := range l.Columns {
		l.Columns[i] = i*colWidth + columnGap
	}

	perColumn := make(map[workspace.Category][]workspace.Entry, len(workspace.Categories))
	for _, e := range entries {
		perColumn[e.Category] = append(perColumn[e.Category], e)
	}

	avail := height - headerRows
	maxRows := (avail - rowGap*(workspace.MaxPerCategory-1)) / workspace.MaxPerCategory
	if maxRows < minBoxRows {
		maxRows = minBoxRows
	}

	for _, cat := range workspace.Categories {
		y := headerRows
		x := l.Columns[cat.Column()]
		for _, e := range perColumn[cat] {
			lines := wrapContent(e.Content, boxWidth-2, maxRows-2)
			box := Box{
				EntryID:  e.ID,
				Category: cat,
				X:        x,
				Y:        y,
				Width:    boxWidth,
				Height:   len(lines) + 2,
				Lines:    lines,
			}
			l.Boxes = append(l.Boxes, box)
			y += box.Height + rowGap
		}
	}
	return l
}

func wrapContent(content string, width, maxLines int) []string {
	if width < 1 {
		width = 1
	}
	if maxLines < 1 {
		maxLines = 1
	}
	if strings.TrimSpace(content) == "" {
		return []string{""}
	}
	var lines []string
	for _, line := range strings.Split(wordwrap.String(content, width), "\n") {
		for len([]rune(line)) > width {
			r := []rune(line)
			lines = append(lines, string(r[:width]))
			line = string(r[width:])
		}
		lines = append(lines, line)
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		if len(last) >= width {
			last = last[:width-1]
		}
		lines[maxLines-1] = string(last) + "…"
	}
	return lines
}

// Box returns the box of an entry.
func (l *Layout) Box(entryID string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.EntryID == entryID {
			return b, true
		}
	}
	return Box{}, false
}

// BoxAt returns the box under a cell.
func (l *Layout) BoxAt(x, y int) (Box, bool) {
	for _, b := range l.Boxes {
		if b.Contains(x, y) {
			return b, true
		}
	}
	return Box{}, false
}

// HandlePoint resolves the screen cell of a handle.
func (l *Layout) HandlePoint(h workspace.Handle) (connect.Point, bool) {
	b, ok := l.Box(h.EntryID)
	if !ok || !b.Category.HasSide(h.Side) {
		return connect.Point{}, false
	}
	return b.HandlePoint(h.Side), true
}

// HandleAt returns the handle whose cell is at (x, y). The cell right
// outside the border also counts so a handle is easy to hit.
func (l *Layout) HandleAt(x, y int) (workspace.Handle, bool) {
	for _, b := range l.Boxes {
		for _, side := range b.Category.Sides() {
			p := b.HandlePoint(side)
			if p.Y != y {
				continue
			}
			if p.X == x || (side == workspace.Right && p.X+1 == x) || (side == workspace.Left && p.X-1 == x) {
				return workspace.Handle{EntryID: b.EntryID, Side: side}, true
			}
		}
	}
	return workspace.Handle{}, false
}
