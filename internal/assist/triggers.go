package assist

import (
	"strings"

	"threef/internal/workspace"
)

type trigger struct {
	word     string
	question string
	fired    bool
}

// Triggers produces canned questions when certain words show up in an entry
// and no model is configured. Each fires once until Rearm.
type Triggers struct {
	list []*trigger
}

func NewTriggers() *Triggers {
	return &Triggers{list: []*trigger{
		{word: "meeting", question: `You mentioned a "meeting". Which meeting was it, so patterns can be traced later?`},
		{word: "deployment", question: `You noted a "deployment". Was it the production push or a staging test?`},
		{word: "frustrated", question: "You felt frustrated. Was that about the tool (Form) or the process (Function)?"},
	}}
}

// Check returns the suggestions newly triggered by text typed into an entry
// of cat.
func (t *Triggers) Check(cat workspace.Category, text string) []workspace.Suggestion {
	lower := strings.ToLower(text)
	var out []workspace.Suggestion
	for _, tr := range t.list {
		if tr.fired || !strings.Contains(lower, tr.word) {
			continue
		}
		tr.fired = true
		out = append(out, workspace.Suggestion{
			Text:     tr.question,
			Category: cat,
			Source:   workspace.SourceLocal,
		})
	}
	return out
}

// Rearm lets every trigger fire again.
func (t *Triggers) Rearm() {
	for _, tr := range t.list {
		tr.fired = false
	}
}
