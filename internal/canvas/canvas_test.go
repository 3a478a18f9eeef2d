package canvas

import (
	"encoding/xml"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threef/internal/connect"
	"threef/internal/workspace"
)

type scene struct {
	reg   *workspace.Registry
	store *connect.Store
	form  workspace.Entry
	fn    workspace.Entry
	feel  workspace.Entry
}

func newScene(t *testing.T) *scene {
	t.Helper()
	n := 0
	reg := workspace.NewRegistryWithIDs(func() string {
		n++
		return fmt.Sprintf("e%d", n)
	})
	return &scene{
		reg:   reg,
		store: connect.NewStore(reg, nil),
		form:  reg.Entries(workspace.Form)[0],
		fn:    reg.Entries(workspace.Function)[0],
		feel:  reg.Entries(workspace.Feeling)[0],
	}
}

func right(e workspace.Entry) workspace.Handle {
	return workspace.Handle{EntryID: e.ID, Side: workspace.Right}
}

func left(e workspace.Entry) workspace.Handle {
	return workspace.Handle{EntryID: e.ID, Side: workspace.Left}
}

func TestCurveControlPoints(t *testing.T) {
	b := Curve(connect.Point{X: 10, Y: 2}, connect.Point{X: 30, Y: 8})

	want := Bezier{
		P0: Vec{10, 2},
		P1: Vec{20, 2},
		P2: Vec{20, 8},
		P3: Vec{30, 8},
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("curve mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "M 10 2 C 20 2, 20 8, 30 8", b.PathData())
	assert.Equal(t, Vec{10, 2}, b.At(0))
	assert.Equal(t, Vec{30, 8}, b.At(1))
	assert.Equal(t, Vec{20, 5}, b.At(0.5))
}

func TestCurveAtEqualHeightIsStraight(t *testing.T) {
	b := Curve(connect.Point{X: 4, Y: 5}, connect.Point{X: 12, Y: 5})
	require.Equal(t, b.P0.Y, b.P3.Y)

	for _, c := range b.Cells() {
		assert.Equal(t, 5, c.Y)
		assert.Equal(t, '─', c.Glyph)
	}
}

func TestCellsAreContiguousAndUnique(t *testing.T) {
	b := Curve(connect.Point{X: 0, Y: 0}, connect.Point{X: 20, Y: 9})
	cells := b.Cells()
	require.NotEmpty(t, cells)

	assert.Equal(t, 0, cells[0].X)
	assert.Equal(t, 20, cells[len(cells)-1].X)
	seen := map[[2]int]bool{}
	for i, c := range cells {
		key := [2]int{c.X, c.Y}
		assert.False(t, seen[key], "duplicate cell %v", key)
		seen[key] = true
		if i > 0 {
			prev := cells[i-1]
			assert.LessOrEqual(t, abs(c.X-prev.X), 1)
			assert.LessOrEqual(t, abs(c.Y-prev.Y), 1)
		}
	}
}

func TestArrangePlacesColumns(t *testing.T) {
	s := newScene(t)
	_, err := s.reg.Add(workspace.Feeling)
	require.NoError(t, err)

	l := Arrange(s.reg.All(), 90, 30)

	require.Len(t, l.Boxes, 4)
	formBox, ok := l.Box(s.form.ID)
	require.True(t, ok)
	fnBox, _ := l.Box(s.fn.ID)
	assert.Less(t, formBox.X+formBox.Width, fnBox.X)
	assert.Equal(t, headerRows, formBox.Y)

	feel := s.reg.Entries(workspace.Feeling)
	first, _ := l.Box(feel[0].ID)
	second, _ := l.Box(feel[1].ID)
	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Y+first.Height+rowGap, second.Y)
}

func TestArrangeWrapsContent(t *testing.T) {
	s := newScene(t)
	_, _ = s.reg.SetContent(s.form.ID, "a long sentence about the standing desk in the corner")

	l := Arrange(s.reg.All(), 60, 30)
	b, ok := l.Box(s.form.ID)
	require.True(t, ok)

	assert.Greater(t, len(b.Lines), 1)
	for _, line := range b.Lines {
		assert.LessOrEqual(t, len([]rune(line)), b.Width-2)
	}
}

func TestHandleLookup(t *testing.T) {
	s := newScene(t)
	l := Arrange(s.reg.All(), 90, 30)
	fnBox, _ := l.Box(s.fn.ID)

	p, ok := l.HandlePoint(left(s.fn))
	require.True(t, ok)
	assert.Equal(t, connect.Point{X: fnBox.X, Y: fnBox.Y + fnBox.Height/2}, p)

	h, ok := l.HandleAt(p.X-1, p.Y)
	require.True(t, ok)
	assert.Equal(t, left(s.fn), h)

	_, ok = l.HandlePoint(left(s.form))
	assert.False(t, ok, "form entries have no left handle")

	_, ok = l.HandleAt(fnBox.X+2, fnBox.Y)
	assert.False(t, ok)
}

func TestRenderAllSkipsRemovedEntries(t *testing.T) {
	s := newScene(t)
	extra, err := s.reg.Add(workspace.Function)
	require.NoError(t, err)
	_, ok := s.store.Add(right(s.form), left(s.fn))
	require.True(t, ok)
	_, ok = s.store.Add(right(s.form), left(extra))
	require.True(t, ok)

	s.reg.Reset()
	r := NewRenderer(nil)
	l := Arrange(s.reg.All(), 90, 30)
	paths := r.RenderAll(s.store, s.reg, l)

	require.Len(t, paths, 1)
	for _, p := range paths {
		assert.NotEqual(t, extra.ID, p.Connection.To.EntryID)
	}
	assert.Equal(t, 1, s.store.Len())
	assert.Equal(t, 1, r.frames)
}

func TestRenderDrawsBoxesHandlesAndPaths(t *testing.T) {
	s := newScene(t)
	_, _ = s.reg.SetContent(s.form.ID, "desk")
	_, ok := s.store.Add(right(s.form), left(s.fn))
	require.True(t, ok)

	r := NewRenderer(nil)
	l := Arrange(s.reg.All(), 90, 20)
	g := Render(Scene{Layout: l, Paths: r.RenderAll(s.store, s.reg, l), Focused: s.fn.ID})
	text := strings.Join(g.Lines(), "\n")

	assert.Contains(t, text, "FORM")
	assert.Contains(t, text, "FUNCTION")
	assert.Contains(t, text, "FEELING")
	assert.Contains(t, text, "desk")
	assert.Contains(t, text, "▸")

	formBox, _ := l.Box(s.form.ID)
	fnBox, _ := l.Box(s.fn.ID)
	rh := formBox.HandlePoint(workspace.Right)
	assert.Equal(t, '▶', g.At(rh.X, rh.Y))
	assert.Equal(t, '#', g.At(fnBox.X, fnBox.Y))
	assert.Equal(t, '+', g.At(formBox.X, formBox.Y))
}

func TestRenderMarksPendingRemoval(t *testing.T) {
	s := newScene(t)
	c, _ := s.store.Add(right(s.form), left(s.fn))

	l := Arrange(s.reg.All(), 90, 20)
	paths := NewRenderer(nil).RenderAll(s.store, s.reg, l)
	g := Render(Scene{Layout: l, Paths: paths, Pending: &c})

	assert.Contains(t, strings.Join(g.Lines(), ""), "×")
}

func TestPathAtFindsConnection(t *testing.T) {
	s := newScene(t)
	c, _ := s.store.Add(right(s.form), left(s.fn))
	l := Arrange(s.reg.All(), 90, 20)
	paths := NewRenderer(nil).RenderAll(s.store, s.reg, l)
	require.Len(t, paths, 1)

	mid := paths[0].Cells[len(paths[0].Cells)/2]
	got, ok := PathAt(paths, mid.X, mid.Y)
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, ok = PathAt(paths, 0, l.Height-1)
	assert.False(t, ok)
}

func TestPreviewStartsAtSource(t *testing.T) {
	s := newScene(t)
	l := Arrange(s.reg.All(), 90, 20)
	r := NewRenderer(nil)

	p, ok := r.Preview(l, right(s.form), connect.Point{}, false)
	require.True(t, ok)
	assert.Equal(t, p.Curve.P0, p.Curve.P3)

	p, ok = r.Preview(l, right(s.form), connect.Point{X: 50, Y: 10}, true)
	require.True(t, ok)
	assert.Equal(t, Vec{50, 10}, p.Curve.P3)
}

func TestStyledPaintsRuns(t *testing.T) {
	s := newScene(t)
	l := Arrange(s.reg.All(), 60, 12)
	g := Render(Scene{Layout: l})

	plain := g.Styled(func(_ Kind, s string) string { return s })
	assert.Equal(t, g.Lines(), plain)

	tagged := g.Styled(func(k Kind, s string) string {
		if k == KindHeader {
			return "<" + s + ">"
		}
		return s
	})
	assert.Contains(t, tagged[0], "<FORM>")
}

func TestExports(t *testing.T) {
	s := newScene(t)
	_, _ = s.reg.SetContent(s.form.ID, "desk")
	_, _ = s.store.Add(right(s.form), left(s.fn))
	l := Arrange(s.reg.All(), 90, 20)
	paths := NewRenderer(nil).RenderAll(s.store, s.reg, l)
	dir := t.TempDir()

	txt := filepath.Join(dir, "board.txt")
	require.NoError(t, ExportVisualTXT(txt, Render(Scene{Layout: l, Paths: paths})))
	data, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "desk")

	img := filepath.Join(dir, "board.png")
	require.NoError(t, ExportPNG(img, l, paths))
	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
}

func TestExportSVGDrawsCurvesAsPaths(t *testing.T) {
	s := newScene(t)
	_, _ = s.reg.SetContent(s.form.ID, "desk & <chair>")
	_, _ = s.store.Add(right(s.form), left(s.fn))
	l := Arrange(s.reg.All(), 90, 20)
	paths := NewRenderer(nil).RenderAll(s.store, s.reg, l)
	require.Len(t, paths, 1)

	out := filepath.Join(t.TempDir(), "board.svg")
	require.NoError(t, ExportSVG(out, l, paths))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, `d="`+paths[0].Curve.PathData()+`"`)
	assert.Contains(t, doc, "desk &amp; &lt;chair&gt;")
	assert.Equal(t, 4, strings.Count(doc, "<circle"))

	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}

	assert.Error(t, ExportSVG(filepath.Join(t.TempDir(), "x.svg"), &Layout{}, nil))
}

func TestExportPNGNeedsBoxes(t *testing.T) {
	err := ExportPNG(filepath.Join(t.TempDir(), "x.png"), &Layout{Width: 10, Height: 10}, nil)
	assert.Error(t, err)
}
