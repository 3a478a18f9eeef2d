package canvas

import (
	"go.uber.org/zap"

	"threef/internal/connect"
	"threef/internal/workspace"
)

// Path is the drawable geometry of one connection.
type Path struct {
	Connection connect.Connection
	Curve      Bezier
	Cells      []Cell
}

// Connections is what the renderer needs from the connection store.
type Connections interface {
	PruneDead(live connect.Liveness) int
	Snapshot() []connect.Connection
}

// Renderer recomputes connector geometry whenever the layout may have moved.
type Renderer struct {
	log    *zap.Logger
	frames int
}

func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// Render computes the path of one connection. ok is false when either
// handle is not on the layout.
func (r *Renderer) Render(l *Layout, c connect.Connection) (Path, bool) {
	from, ok := l.HandlePoint(c.From)
	if !ok {
		return Path{}, false
	}
	to, ok := l.HandlePoint(c.To)
	if !ok {
		return Path{}, false
	}
	curve := Curve(from, to)
	return Path{Connection: c, Curve: curve, Cells: curve.Cells()}, true
}

// RenderAll prunes dead connections, then renders a snapshot of the rest.
// Adds and removals made while the frame is in use do not affect it.
func (r *Renderer) RenderAll(store Connections, live connect.Liveness, l *Layout) []Path {
	if n := store.PruneDead(live); n > 0 {
		r.log.Debug("render pass pruned connections", zap.Int("count", n))
	}
	snapshot := store.Snapshot()
	paths := make([]Path, 0, len(snapshot))
	for _, c := range snapshot {
		p, ok := r.Render(l, c)
		if !ok {
			continue
		}
		paths = append(paths, p)
	}
	r.frames++
	r.log.Debug("render pass", zap.Int("frame", r.frames), zap.Int("paths", len(paths)))
	return paths
}

// Preview renders the temporary path of an in-progress drag.
func (r *Renderer) Preview(l *Layout, source workspace.Handle, pointer connect.Point, moved bool) (Path, bool) {
	from, ok := l.HandlePoint(source)
	if !ok {
		return Path{}, false
	}
	if !moved {
		pointer = from
	}
	curve := Curve(from, pointer)
	return Path{Curve: curve, Cells: curve.Cells()}, true
}

// PathAt returns the connection drawn nearest to (x, y), within one cell.
func PathAt(paths []Path, x, y int) (connect.Connection, bool) {
	best, bestDist := -1, 2
	for i, p := range paths {
		for _, c := range p.Cells {
			d := abs(c.X-x) + abs(c.Y-y)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	if best < 0 {
		return connect.Connection{}, false
	}
	return paths[best].Connection, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
