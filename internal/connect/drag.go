package connect

import (
	"errors"

	"threef/internal/workspace"
)

// ErrDragActive is returned by Begin while another drag is in progress.
var ErrDragActive = errors.New("drag already in progress")

// Point is a cell position on screen.
type Point struct {
	X, Y int
}

// Drag tracks the single in-progress connection gesture.
type Drag struct {
	store   *Store
	active  bool
	moved   bool
	source  workspace.Handle
	pointer Point
}

func NewDrag(store *Store) *Drag {
	return &Drag{store: store}
}

// Begin starts a session from h. A second Begin before the first session
// is torn down is rejected and the running session is left untouched.
func (d *Drag) Begin(h workspace.Handle) error {
	if d.active {
		return ErrDragActive
	}
	d.active = true
	d.moved = false
	d.source = h
	d.pointer = Point{}
	return nil
}

// Update moves the free end of the temporary path.
func (d *Drag) Update(p Point) {
	if !d.active {
		return
	}
	d.pointer = p
	d.moved = true
}

// End finishes the gesture. A connection is created when candidate is set
// and the store accepts the pair. The session ends either way.
func (d *Drag) End(p Point, candidate *workspace.Handle) (Connection, bool) {
	if !d.active {
		return Connection{}, false
	}
	d.Update(p)
	source := d.source
	d.teardown()
	if candidate == nil {
		return Connection{}, false
	}
	return d.store.Add(source, *candidate)
}

func (d *Drag) Cancel() {
	d.teardown()
}

func (d *Drag) teardown() {
	d.active = false
	d.moved = false
	d.source = workspace.Handle{}
	d.pointer = Point{}
}

func (d *Drag) Active() bool {
	return d.active
}

func (d *Drag) Source() (workspace.Handle, bool) {
	return d.source, d.active
}

// Pointer returns the last pointer position. ok is false until the
// pointer has moved since Begin.
func (d *Drag) Pointer() (Point, bool) {
	return d.pointer, d.active && d.moved
}
