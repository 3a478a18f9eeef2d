package canvas

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"threef/internal/workspace"
)

// ExportVisualTXT writes a frame exactly as it appears, without cursor or
// overlays.
func ExportVisualTXT(filename string, g *Grid) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer file.Close()

	for _, line := range g.Lines() {
		if _, err := fmt.Fprintln(file, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
	}
	return nil
}

// Pixels per character cell in PNG output.
const (
	charWidth  = 8.0
	charHeight = 16.0
)

// ExportPNG draws the boxes and connector curves of a layout into a PNG.
func ExportPNG(filename string, l *Layout, paths []Path) error {
	if len(l.Boxes) == 0 {
		return fmt.Errorf("nothing to export")
	}

	maxX, maxY := l.extent()
	padding := 2
	imageWidth := int(float64(maxX+padding) * charWidth)
	imageHeight := int(float64(maxY+padding) * charHeight)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	dc.SetColor(color.Black)
	for i, cat := range workspace.Categories {
		dc.DrawString(strings.ToUpper(cat.Label()), float64(l.Columns[i])*charWidth, charHeight)
	}

	for _, p := range paths {
		drawCurvePNG(dc, p.Curve)
	}
	for _, b := range l.Boxes {
		drawBoxPNG(dc, b)
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// ExportSVG writes the same drawing as ExportPNG as an SVG document. Curves
// keep their cell coordinates and are scaled by the enclosing group.
func ExportSVG(filename string, l *Layout, paths []Path) error {
	if len(l.Boxes) == 0 {
		return fmt.Errorf("nothing to export")
	}
	maxX, maxY := l.extent()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)

	width, height := float64(maxX+2)*charWidth, float64(maxY+2)*charHeight
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" font-family="monospace" font-size="12">`+"\n",
		num(width), num(height))
	fmt.Fprintf(w, `<rect width="100%%" height="100%%" fill="white"/>`+"\n")
	for i, cat := range workspace.Categories {
		fmt.Fprintf(w, `<text x="%s" y="%s">%s</text>`+"\n",
			num(float64(l.Columns[i])*charWidth), num(charHeight), escape(strings.ToUpper(cat.Label())))
	}

	fmt.Fprintf(w, `<g transform="translate(%s %s) scale(%s %s)" fill="none" stroke="#436b77">`+"\n",
		num(charWidth/2), num(charHeight/2), num(charWidth), num(charHeight))
	for _, p := range paths {
		fmt.Fprintf(w, `<path d="%s" stroke-width="1.5" vector-effect="non-scaling-stroke"/>`+"\n", p.Curve.PathData())
	}
	fmt.Fprintln(w, `</g>`)

	for _, b := range l.Boxes {
		x, y := float64(b.X)*charWidth, float64(b.Y)*charHeight
		fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s" fill="white" stroke="black"/>`+"\n",
			num(x), num(y), num(float64(b.Width)*charWidth), num(float64(b.Height)*charHeight))
		for i, line := range b.Lines {
			fmt.Fprintf(w, `<text x="%s" y="%s" xml:space="preserve">%s</text>`+"\n",
				num(x+charWidth), num(y+charHeight*float64(i+1)+charHeight*0.75), escape(line))
		}
		for _, side := range b.Category.Sides() {
			hx, hy := px(vec(b.HandlePoint(side)))
			fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="3"/>`+"\n", num(hx), num(hy))
		}
	}
	fmt.Fprintln(w, `</svg>`)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

func px(v Vec) (float64, float64) {
	return (v.X + 0.5) * charWidth, (v.Y + 0.5) * charHeight
}

func drawCurvePNG(dc *gg.Context, b Bezier) {
	dc.SetLineWidth(1.5)
	dc.SetColor(color.RGBA{R: 0x43, G: 0x6b, B: 0x77, A: 0xff})
	x0, y0 := px(b.P0)
	x1, y1 := px(b.P1)
	x2, y2 := px(b.P2)
	x3, y3 := px(b.P3)
	dc.MoveTo(x0, y0)
	dc.CubicTo(x1, y1, x2, y2, x3, y3)
	dc.Stroke()

	// Arrowhead along the end tangent.
	t := b.Tangent(1)
	dx, dy := t.X*charWidth, t.Y*charHeight
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	size, spread := 7.0, 0.5
	dc.MoveTo(x3, y3)
	dc.LineTo(x3-size*dx+size*dy*spread, y3-size*dy-size*dx*spread)
	dc.LineTo(x3-size*dx-size*dy*spread, y3-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func drawBoxPNG(dc *gg.Context, b Box) {
	x := float64(b.X) * charWidth
	y := float64(b.Y) * charHeight
	w := float64(b.Width) * charWidth
	h := float64(b.Height) * charHeight

	dc.SetColor(color.White)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetLineWidth(1.0)
	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	for i, line := range b.Lines {
		dc.DrawString(line, x+charWidth, y+charHeight*float64(i+1)+charHeight*0.75)
	}

	for _, side := range b.Category.Sides() {
		hx, hy := px(vec(b.HandlePoint(side)))
		dc.DrawCircle(hx, hy, 3)
		dc.Fill()
	}
}

// extent is the bottom-right corner of the furthest box, in cells.
func (l *Layout) extent() (int, int) {
	maxX, maxY := 0, 0
	for _, b := range l.Boxes {
		if b.X+b.Width > maxX {
			maxX = b.X + b.Width
		}
		if b.Y+b.Height > maxY {
			maxY = b.Y + b.Height
		}
	}
	return maxX, maxY
}
