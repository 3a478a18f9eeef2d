package canvas

import (
	"fmt"
	"math"
	"strconv"

	"threef/internal/connect"
)

// Vec is a point in continuous grid space.
type Vec struct {
	X, Y float64
}

func vec(p connect.Point) Vec {
	return Vec{X: float64(p.X), Y: float64(p.Y)}
}

// Bezier is a cubic Bezier curve.
type Bezier struct {
	P0, P1, P2, P3 Vec
}

// Curve builds the connector between two handle centers. Both control
// points are pulled horizontally by half the horizontal distance, giving a
// flattened S between rows and a straight line at equal height.
func Curve(from, to connect.Point) Bezier {
	d := math.Abs(float64(to.X-from.X)) / 2
	return Bezier{
		P0: vec(from),
		P1: Vec{X: float64(from.X) + d, Y: float64(from.Y)},
		P2: Vec{X: float64(to.X) - d, Y: float64(to.Y)},
		P3: vec(to),
	}
}

func (b Bezier) At(t float64) Vec {
	u := 1 - t
	return Vec{
		X: u*u*u*b.P0.X + 3*u*u*t*b.P1.X + 3*u*t*t*b.P2.X + t*t*t*b.P3.X,
		Y: u*u*u*b.P0.Y + 3*u*u*t*b.P1.Y + 3*u*t*t*b.P2.Y + t*t*t*b.P3.Y,
	}
}

// Tangent is the first derivative at t.
func (b Bezier) Tangent(t float64) Vec {
	u := 1 - t
	return Vec{
		X: 3*u*u*(b.P1.X-b.P0.X) + 6*u*t*(b.P2.X-b.P1.X) + 3*t*t*(b.P3.X-b.P2.X),
		Y: 3*u*u*(b.P1.Y-b.P0.Y) + 6*u*t*(b.P2.Y-b.P1.Y) + 3*t*t*(b.P3.Y-b.P2.Y),
	}
}

// PathData renders the curve as SVG path data, in cell units.
func (b Bezier) PathData() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(b.P0.X), num(b.P0.Y),
		num(b.P1.X), num(b.P1.Y),
		num(b.P2.X), num(b.P2.Y),
		num(b.P3.X), num(b.P3.Y))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Cell is one grid cell covered by a curve.
type Cell struct {
	X, Y  int
	Glyph rune
}

// Cells samples the curve and returns the cells it crosses in order, with a
// glyph picked from the local direction.
func (b Bezier) Cells() []Cell {
	span := math.Max(math.Abs(b.P3.X-b.P0.X), math.Abs(b.P3.Y-b.P0.Y))
	steps := int(span*4) + 1
	var cells []Cell
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := b.At(t)
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		if n := len(cells); n > 0 && cells[n-1].X == x && cells[n-1].Y == y {
			continue
		}
		cells = append(cells, Cell{X: x, Y: y, Glyph: glyphFor(b.Tangent(t))})
	}
	return cells
}

// glyphFor maps a direction to a line glyph. Terminal cells are about twice
// as tall as they are wide, so vertical motion is weighted accordingly.
func glyphFor(d Vec) rune {
	dx, dy := math.Abs(d.X), math.Abs(d.Y)*2
	switch {
	case dx == 0 && dy == 0:
		return '─'
	case dy <= dx*0.5:
		return '─'
	case dx <= dy*0.5:
		return '│'
	case (d.X > 0) == (d.Y > 0):
		return '╲'
	default:
		return '╱'
	}
}
