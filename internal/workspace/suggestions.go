package workspace

import "github.com/google/uuid"

type SuggestionSource string

const (
	SourceAI    SuggestionSource = "ai"
	SourceLocal SuggestionSource = "local"
)

// Suggestion is a clarifying question shown in the suggestions panel.
// Category is empty when the question is not tied to one column.
type Suggestion struct {
	ID       string
	Text     string
	Category Category
	Source   SuggestionSource
}

// Suggestions is the suggestion list, newest first.
type Suggestions struct {
	items []Suggestion
}

// Prepend adds s in front of the list, assigning an id when it has none.
func (l *Suggestions) Prepend(s Suggestion) Suggestion {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	l.items = append([]Suggestion{s}, l.items...)
	return s
}

func (l *Suggestions) Dismiss(id string) bool {
	for i, s := range l.items {
		if s.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Suggestions) List() []Suggestion {
	return append([]Suggestion(nil), l.items...)
}

func (l *Suggestions) Len() int {
	return len(l.items)
}

func (l *Suggestions) Clear() {
	l.items = nil
}
