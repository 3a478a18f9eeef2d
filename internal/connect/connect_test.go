package connect

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threef/internal/workspace"
)

type fixture struct {
	reg            *workspace.Registry
	form, fn, feel string
	store          *Store
	formR, fnL     workspace.Handle
	fnR, feelL     workspace.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	n := 0
	reg := workspace.NewRegistryWithIDs(func() string {
		n++
		return fmt.Sprintf("e%d", n)
	})
	f := &fixture{
		reg:  reg,
		form: reg.Entries(workspace.Form)[0].ID,
		fn:   reg.Entries(workspace.Function)[0].ID,
		feel: reg.Entries(workspace.Feeling)[0].ID,
	}
	f.store = NewStore(reg, nil)
	f.formR = workspace.Handle{EntryID: f.form, Side: workspace.Right}
	f.fnL = workspace.Handle{EntryID: f.fn, Side: workspace.Left}
	f.fnR = workspace.Handle{EntryID: f.fn, Side: workspace.Right}
	f.feelL = workspace.Handle{EntryID: f.feel, Side: workspace.Left}
	return f
}

func TestIsValidExhaustive(t *testing.T) {
	f := newFixture(t)
	ids := map[string]workspace.Category{
		f.form: workspace.Form,
		f.fn:   workspace.Function,
		f.feel: workspace.Feeling,
	}
	sides := []workspace.Side{workspace.Left, workspace.Right}

	for fromID, fromCat := range ids {
		for toID, toCat := range ids {
			for _, fs := range sides {
				for _, ts := range sides {
					from := workspace.Handle{EntryID: fromID, Side: fs}
					to := workspace.Handle{EntryID: toID, Side: ts}
					want := fromID != toID &&
						fs == workspace.Right && ts == workspace.Left &&
						((fromCat == workspace.Form && toCat == workspace.Function) ||
							(fromCat == workspace.Function && toCat == workspace.Feeling))
					assert.Equal(t, want, IsValid(f.reg, from, to), "%s -> %s", from, to)
				}
			}
		}
	}
}

func TestIsValidRejectsFormToFeeling(t *testing.T) {
	f := newFixture(t)
	assert.False(t, IsValid(f.reg, f.formR, f.feelL))
}

func TestIsValidRejectsUnknownEntry(t *testing.T) {
	f := newFixture(t)
	ghost := workspace.Handle{EntryID: "ghost", Side: workspace.Left}
	assert.False(t, IsValid(f.reg, f.formR, ghost))
}

func TestAddIsIdempotent(t *testing.T) {
	f := newFixture(t)

	_, ok := f.store.Add(f.formR, f.fnL)
	require.True(t, ok)
	_, ok = f.store.Add(f.formR, f.fnL)
	assert.False(t, ok)

	assert.Equal(t, 1, f.store.Len())
}

func TestAddAllowsFanOut(t *testing.T) {
	f := newFixture(t)
	second, err := f.reg.Add(workspace.Function)
	require.NoError(t, err)

	_, ok := f.store.Add(f.formR, f.fnL)
	require.True(t, ok)
	_, ok = f.store.Add(f.formR, workspace.Handle{EntryID: second.ID, Side: workspace.Left})
	require.True(t, ok)
	_, ok = f.store.Add(f.fnR, f.feelL)
	require.True(t, ok)

	assert.Equal(t, 3, f.store.Len())
}

func TestRemovalNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	c, ok := f.store.Add(f.formR, f.fnL)
	require.True(t, ok)

	require.True(t, f.store.RequestRemoval(c))
	assert.Equal(t, 1, f.store.Len())

	f.store.CancelRemoval()
	_, ok = f.store.ConfirmRemoval()
	assert.False(t, ok)
	assert.Equal(t, 1, f.store.Len())

	require.True(t, f.store.RequestRemoval(c))
	removed, ok := f.store.ConfirmRemoval()
	require.True(t, ok)
	assert.Equal(t, c, removed)
	assert.Equal(t, 0, f.store.Len())
}

func TestRequestRemovalOfUnknownConnection(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.store.RequestRemoval(Connection{From: f.formR, To: f.fnL}))
	_, pending := f.store.Pending()
	assert.False(t, pending)
}

func TestPruneDeadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	extra, err := f.reg.Add(workspace.Function)
	require.NoError(t, err)
	extraL := workspace.Handle{EntryID: extra.ID, Side: workspace.Left}
	extraR := workspace.Handle{EntryID: extra.ID, Side: workspace.Right}

	_, _ = f.store.Add(f.formR, f.fnL)
	dead, _ := f.store.Add(f.formR, extraL)
	_, _ = f.store.Add(extraR, f.feelL)
	require.True(t, f.store.RequestRemoval(dead))

	f.reg.Reset()

	assert.Equal(t, 2, f.store.PruneDead(f.reg))
	assert.Equal(t, 0, f.store.PruneDead(f.reg))
	want := []Connection{{From: f.formR, To: f.fnL}}
	if diff := cmp.Diff(want, f.store.Snapshot()); diff != "" {
		t.Errorf("connections after prune (-want +got):\n%s", diff)
	}
	_, pending := f.store.Pending()
	assert.False(t, pending)
}

func TestSnapshotIsDefensive(t *testing.T) {
	f := newFixture(t)
	_, _ = f.store.Add(f.formR, f.fnL)

	snap := f.store.Snapshot()
	f.store.Clear()

	assert.Len(t, snap, 1)
	assert.Equal(t, 0, f.store.Len())
}

func TestDragCreatesConnection(t *testing.T) {
	f := newFixture(t)
	d := NewDrag(f.store)

	require.NoError(t, d.Begin(f.formR))
	d.Update(Point{X: 10, Y: 4})
	p, ok := d.Pointer()
	require.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 4}, p)

	c, ok := d.End(Point{X: 30, Y: 4}, &f.fnL)
	require.True(t, ok)
	assert.Equal(t, Connection{From: f.formR, To: f.fnL}, c)
	assert.False(t, d.Active())
	assert.Equal(t, 1, f.store.Len())
}

func TestDragBackwardsIsRejected(t *testing.T) {
	f := newFixture(t)
	d := NewDrag(f.store)
	formL := workspace.Handle{EntryID: f.form, Side: workspace.Left}

	require.NoError(t, d.Begin(f.fnR))
	_, ok := d.End(Point{}, &formL)

	assert.False(t, ok)
	assert.False(t, d.Active())
	assert.Equal(t, 0, f.store.Len())
}

func TestDragWithoutTargetTearsDown(t *testing.T) {
	f := newFixture(t)
	d := NewDrag(f.store)

	require.NoError(t, d.Begin(f.formR))
	_, ok := d.End(Point{X: 3, Y: 3}, nil)

	assert.False(t, ok)
	assert.False(t, d.Active())
	_, moved := d.Pointer()
	assert.False(t, moved)
	assert.Equal(t, 0, f.store.Len())
}

func TestSecondBeginIsRejected(t *testing.T) {
	f := newFixture(t)
	d := NewDrag(f.store)

	require.NoError(t, d.Begin(f.formR))
	assert.ErrorIs(t, d.Begin(f.fnR), ErrDragActive)

	src, ok := d.Source()
	require.True(t, ok)
	assert.Equal(t, f.formR, src)

	d.Cancel()
	assert.False(t, d.Active())
	assert.NoError(t, d.Begin(f.fnR))
}

func TestUpdateWhileIdleIsIgnored(t *testing.T) {
	f := newFixture(t)
	d := NewDrag(f.store)
	d.Update(Point{X: 1, Y: 1})
	_, ok := d.Pointer()
	assert.False(t, ok)
	_, ok = d.End(Point{}, &f.fnL)
	assert.False(t, ok)
}
