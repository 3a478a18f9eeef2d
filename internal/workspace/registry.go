package workspace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrCategoryFull = errors.New("category is full")

// Entry is a single text-input unit belonging to one category.
type Entry struct {
	ID       string
	Category Category
	Content  string
}

// Registry is the set of live entries, grouped by category.
// Entries are kept in creation order.
type Registry struct {
	entries []Entry
	newID   func() string
}

// NewRegistry creates a registry holding one empty entry per category.
func NewRegistry() *Registry {
	return NewRegistryWithIDs(uuid.NewString)
}

// NewRegistryWithIDs is NewRegistry with a custom id generator.
func NewRegistryWithIDs(newID func() string) *Registry {
	r := &Registry{newID: newID}
	r.seed()
	return r
}

func (r *Registry) seed() {
	r.entries = make([]Entry, 0, len(Categories)*MaxPerCategory)
	for _, cat := range Categories {
		r.entries = append(r.entries, Entry{ID: r.newID(), Category: cat})
	}
}

// Add appends an empty entry to cat. It fails with ErrCategoryFull once
// the category holds MaxPerCategory entries.
func (r *Registry) Add(cat Category) (Entry, error) {
	if cat.Column() < 0 {
		return Entry{}, fmt.Errorf("add entry: unknown category %q", cat)
	}
	if r.Count(cat) >= MaxPerCategory {
		return Entry{}, fmt.Errorf("add %s entry: %w", cat, ErrCategoryFull)
	}
	e := Entry{ID: r.newID(), Category: cat}
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *Registry) Count(cat Category) int {
	n := 0
	for _, e := range r.entries {
		if e.Category == cat {
			n++
		}
	}
	return n
}

// Has reports whether id names a live entry.
func (r *Registry) Has(id string) bool {
	_, ok := r.index(id)
	return ok
}

func (r *Registry) Entry(id string) (Entry, bool) {
	i, ok := r.index(id)
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// CategoryOf returns the category of a live entry.
func (r *Registry) CategoryOf(id string) (Category, bool) {
	e, ok := r.Entry(id)
	return e.Category, ok
}

// SetContent replaces the text of an entry. It reports whether the
// content actually changed.
func (r *Registry) SetContent(id, text string) (bool, error) {
	i, ok := r.index(id)
	if !ok {
		return false, fmt.Errorf("set content: no entry %q", id)
	}
	if r.entries[i].Content == text {
		return false, nil
	}
	r.entries[i].Content = text
	return true, nil
}

// Entries returns the entries of one category in creation order.
func (r *Registry) Entries(cat Category) []Entry {
	out := make([]Entry, 0, MaxPerCategory)
	for _, e := range r.entries {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry, column by column.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, cat := range Categories {
		out = append(out, r.Entries(cat)...)
	}
	return out
}

// Handles returns the handles the entry carries.
func (r *Registry) Handles(id string) []Handle {
	e, ok := r.Entry(id)
	if !ok {
		return nil
	}
	sides := e.Category.Sides()
	hs := make([]Handle, len(sides))
	for i, s := range sides {
		hs[i] = Handle{EntryID: id, Side: s}
	}
	return hs
}

// CategoryText joins the non-blank contents of a category.
func (r *Registry) CategoryText(cat Category) string {
	var parts []string
	for _, e := range r.Entries(cat) {
		if t := strings.TrimSpace(e.Content); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Missing lists the categories with no non-blank content.
func (r *Registry) Missing() []Category {
	var missing []Category
	for _, cat := range Categories {
		if r.CategoryText(cat) == "" {
			missing = append(missing, cat)
		}
	}
	return missing
}

// Reset drops every entry beyond the first per category and clears the
// contents of the ones that remain.
func (r *Registry) Reset() {
	kept := make([]Entry, 0, len(Categories))
	seen := make(map[Category]bool, len(Categories))
	for _, e := range r.entries {
		if seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		e.Content = ""
		kept = append(kept, e)
	}
	r.entries = kept
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) index(id string) (int, bool) {
	for i, e := range r.entries {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}
