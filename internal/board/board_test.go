package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threef/internal/workspace"
)

type counter struct{ n int }

func (c *counter) Rearm() { c.n++ }

func filledBoard(t *testing.T) *Board {
	t.Helper()
	b := New(nil)
	for _, cat := range workspace.Categories {
		id := b.Entries.Entries(cat)[0].ID
		_, err := b.SetContent(id, "some "+string(cat))
		require.NoError(t, err)
	}
	return b
}

func TestResetRestoresInitialState(t *testing.T) {
	b := filledBoard(t)
	rearm := &counter{}
	b.OnReset(rearm)

	extra, err := b.AddEntry(workspace.Function)
	require.NoError(t, err)
	form := b.Entries.Entries(workspace.Form)[0].ID
	_, ok := b.Connections.Add(
		workspace.Handle{EntryID: form, Side: workspace.Right},
		workspace.Handle{EntryID: extra.ID, Side: workspace.Left})
	require.True(t, ok)
	b.Suggestions.Prepend(workspace.Suggestion{Text: "which meeting?"})
	b.Gate.Record(true, "ok", nil)
	require.NoError(t, b.Drag.Begin(workspace.Handle{EntryID: form, Side: workspace.Right}))

	b.Reset()

	assert.Equal(t, 0, b.Connections.Len())
	assert.Equal(t, 0, b.Suggestions.Len())
	assert.False(t, b.Gate.Audited)
	assert.False(t, b.Drag.Active())
	assert.Equal(t, 1, rearm.n)
	for _, cat := range workspace.Categories {
		entries := b.Entries.Entries(cat)
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].Content)
	}
}

func TestSubmitRequiresPassingAudit(t *testing.T) {
	b := filledBoard(t)

	_, err := b.Submit(time.Now())
	assert.ErrorIs(t, err, ErrAuditRequired)

	b.Gate.Record(false, "vague", []string{"add detail"})
	_, err = b.Submit(time.Now())
	assert.ErrorIs(t, err, ErrAuditRequired)

	b.Gate.Record(true, "clear", nil)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	r, err := b.Submit(now)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, now, r.SubmittedAt)
	assert.Equal(t, 3, r.Entries)
}

func TestEditingClosesTheGate(t *testing.T) {
	b := filledBoard(t)
	b.Gate.Record(true, "clear", nil)

	id := b.Entries.Entries(workspace.Feeling)[0].ID
	changed, err := b.SetContent(id, "different")
	require.NoError(t, err)
	require.True(t, changed)

	assert.False(t, b.Gate.CanSubmit())
}

func TestUnchangedEditKeepsTheGate(t *testing.T) {
	b := filledBoard(t)
	b.Gate.Record(true, "clear", nil)

	id := b.Entries.Entries(workspace.Form)[0].ID
	_, err := b.SetContent(id, "some form")
	require.NoError(t, err)

	assert.True(t, b.Gate.CanSubmit())
}
