// Package board ties the workspace pieces together: entries, connections,
// the drag gesture, suggestions and the audit gate.
package board

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threef/internal/connect"
	"threef/internal/workspace"
)

var ErrAuditRequired = errors.New("a passing audit is required before submitting")

// Rearmer is reset together with the board, e.g. one-shot suggestion triggers.
type Rearmer interface {
	Rearm()
}

type Board struct {
	Entries     *workspace.Registry
	Connections *connect.Store
	Drag        *connect.Drag
	Suggestions *workspace.Suggestions
	Gate        *workspace.Gate

	rearm []Rearmer
	log   *zap.Logger
}

// Receipt acknowledges a mocked submission.
type Receipt struct {
	ID          string
	SubmittedAt time.Time
	Entries     int
	Connections int
}

func New(log *zap.Logger) *Board {
	return NewWithRegistry(workspace.NewRegistry(), log)
}

func NewWithRegistry(reg *workspace.Registry, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	store := connect.NewStore(reg, log.Named("connect"))
	return &Board{
		Entries:     reg,
		Connections: store,
		Drag:        connect.NewDrag(store),
		Suggestions: &workspace.Suggestions{},
		Gate:        &workspace.Gate{},
		log:         log,
	}
}

// OnReset registers state that must be re-armed by Reset.
func (b *Board) OnReset(r Rearmer) {
	b.rearm = append(b.rearm, r)
}

// SetContent updates an entry and closes the audit gate when the text changed.
func (b *Board) SetContent(id, text string) (bool, error) {
	changed, err := b.Entries.SetContent(id, text)
	if err != nil {
		return false, err
	}
	if changed {
		b.Gate.Invalidate()
	}
	return changed, nil
}

// AddEntry adds an entry to cat, subject to the per-category cap.
func (b *Board) AddEntry(cat workspace.Category) (workspace.Entry, error) {
	e, err := b.Entries.Add(cat)
	if err != nil {
		return workspace.Entry{}, err
	}
	b.Gate.Invalidate()
	return e, nil
}

// Reset returns the board to its initial state in one step.
func (b *Board) Reset() {
	b.Drag.Cancel()
	b.Entries.Reset()
	b.Connections.Clear()
	b.Suggestions.Clear()
	b.Gate.Reset()
	for _, r := range b.rearm {
		r.Rearm()
	}
	b.log.Info("workspace reset")
}

// Submit mocks the submission step. It is refused until an audit passed.
func (b *Board) Submit(now time.Time) (Receipt, error) {
	if !b.Gate.CanSubmit() {
		return Receipt{}, fmt.Errorf("submit: %w", ErrAuditRequired)
	}
	b.Connections.PruneDead(b.Entries)
	r := Receipt{
		ID:          uuid.NewString(),
		SubmittedAt: now,
		Entries:     b.Entries.Len(),
		Connections: b.Connections.Len(),
	}
	b.log.Info("submission accepted",
		zap.String("receipt", r.ID),
		zap.Int("entries", r.Entries),
		zap.Int("connections", r.Connections))
	return r, nil
}
