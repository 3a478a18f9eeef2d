// Package connect holds the directed connections drawn between entries:
// the validation rules, the owning store, and the drag gesture that
// creates them.
package connect

import "threef/internal/workspace"

// Kinds resolves the category of a live entry.
type Kinds interface {
	CategoryOf(id string) (workspace.Category, bool)
}

// Liveness reports whether an entry is still part of the workspace.
type Liveness interface {
	Has(id string) bool
}

// PairAllowed reports whether an edge may run from one category to another.
// Only the two steps of the form -> function -> feeling pipeline qualify.
func PairAllowed(from, to workspace.Category) bool {
	return (from == workspace.Form && to == workspace.Function) ||
		(from == workspace.Function && to == workspace.Feeling)
}

// IsValid reports whether a connection may run from one handle to another.
func IsValid(k Kinds, from, to workspace.Handle) bool {
	if from.EntryID == to.EntryID {
		return false
	}
	if from.Side != workspace.Right || to.Side != workspace.Left {
		return false
	}
	fromCat, ok := k.CategoryOf(from.EntryID)
	if !ok {
		return false
	}
	toCat, ok := k.CategoryOf(to.EntryID)
	if !ok {
		return false
	}
	return PairAllowed(fromCat, toCat)
}
