package canvas

import (
	"strings"

	"threef/internal/connect"
	"threef/internal/workspace"
)

// Kind tags what a grid cell shows so the view can style it.
type Kind int

const (
	KindBlank Kind = iota
	KindText
	KindHeader
	KindForm
	KindFunction
	KindFeeling
	KindFocused
	KindHandle
	KindPath
	KindPending
	KindPreview
)

func borderKind(cat workspace.Category) Kind {
	switch cat {
	case workspace.Form:
		return KindForm
	case workspace.Function:
		return KindFunction
	case workspace.Feeling:
		return KindFeeling
	}
	return KindText
}

// Scene is everything drawn in one frame.
type Scene struct {
	Layout  *Layout
	Paths   []Path
	Preview *Path
	Focused string
	Pending *connect.Connection
}

// Grid is a rendered frame.
type Grid struct {
	Width  int
	Height int
	cells  [][]rune
	kinds  [][]Kind
}

func newGrid(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{Width: width, Height: height}
	g.cells = make([][]rune, height)
	g.kinds = make([][]Kind, height)
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
		g.kinds[i] = make([]Kind, width)
		for j := range g.cells[i] {
			g.cells[i][j] = ' '
		}
	}
	return g
}

func (g *Grid) set(x, y int, r rune, k Kind) {
	if y < 0 || y >= g.Height || x < 0 || x >= g.Width {
		return
	}
	g.cells[y][x] = r
	g.kinds[y][x] = k
}

// At returns the rune at a cell, or a space outside the grid.
func (g *Grid) At(x, y int) rune {
	if y < 0 || y >= g.Height || x < 0 || x >= g.Width {
		return ' '
	}
	return g.cells[y][x]
}

// Render draws connections first so boxes sit on top of them, then the
// boxes with their handles, then the drag preview.
func Render(s Scene) *Grid {
	l := s.Layout
	g := newGrid(l.Width, l.Height)

	for i, cat := range workspace.Categories {
		label := strings.ToUpper(cat.Label())
		g.text(l.Columns[i], 0, label, KindHeader)
	}

	for _, p := range s.Paths {
		kind := KindPath
		if s.Pending != nil && *s.Pending == p.Connection {
			kind = KindPending
		}
		g.path(l, p, kind)
	}

	for _, b := range l.Boxes {
		g.box(b, b.EntryID == s.Focused)
	}

	if s.Preview != nil {
		for _, c := range s.Preview.Cells {
			g.set(c.X, c.Y, c.Glyph, KindPreview)
		}
	}
	return g
}

func (g *Grid) text(x, y int, s string, k Kind) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r, k)
	}
}

func (g *Grid) path(l *Layout, p Path, kind Kind) {
	arrow := -1
	for i, c := range p.Cells {
		if _, inside := l.BoxAt(c.X, c.Y); inside {
			continue
		}
		g.set(c.X, c.Y, c.Glyph, kind)
		arrow = i
	}
	if kind == KindPending {
		for _, c := range p.Cells {
			if _, inside := l.BoxAt(c.X, c.Y); !inside {
				g.set(c.X, c.Y, '×', kind)
			}
		}
		return
	}
	if arrow >= 0 {
		c := p.Cells[arrow]
		g.set(c.X, c.Y, '▸', kind)
	}
}

func (g *Grid) box(b Box, focused bool) {
	var corner, horizontal, vertical rune
	kind := borderKind(b.Category)
	if focused {
		corner, horizontal, vertical = '#', '#', '#'
		kind = KindFocused
	} else {
		corner, horizontal, vertical = '+', '-', '|'
	}

	for y := b.Y; y < b.Y+b.Height; y++ {
		for x := b.X; x < b.X+b.Width; x++ {
			switch {
			case (y == b.Y || y == b.Y+b.Height-1) && (x == b.X || x == b.X+b.Width-1):
				g.set(x, y, corner, kind)
			case y == b.Y || y == b.Y+b.Height-1:
				g.set(x, y, horizontal, kind)
			case x == b.X || x == b.X+b.Width-1:
				g.set(x, y, vertical, kind)
			default:
				g.set(x, y, ' ', KindText)
			}
		}
	}

	for i, line := range b.Lines {
		y := b.Y + 1 + i
		if y >= b.Y+b.Height-1 {
			break
		}
		runes := []rune(line)
		if limit := b.Width - 2; len(runes) > limit {
			runes = runes[:limit]
		}
		for j, r := range runes {
			g.set(b.X+1+j, y, r, KindText)
		}
	}

	for _, side := range b.Category.Sides() {
		p := b.HandlePoint(side)
		glyph := '◀'
		if side == workspace.Right {
			glyph = '▶'
		}
		g.set(p.X, p.Y, glyph, KindHandle)
	}
}

// Lines returns the frame as plain text, one string per row.
func (g *Grid) Lines() []string {
	out := make([]string, g.Height)
	for i, row := range g.cells {
		out[i] = string(row)
	}
	return out
}

// Styled returns the frame with runs of equally tagged cells passed through
// paint.
func (g *Grid) Styled(paint func(Kind, string) string) []string {
	out := make([]string, g.Height)
	for i, row := range g.cells {
		var line strings.Builder
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && g.kinds[i][j] == g.kinds[i][start] {
				continue
			}
			line.WriteString(paint(g.kinds[i][start], string(row[start:j])))
			start = j
		}
		out[i] = line.String()
	}
	return out
}
