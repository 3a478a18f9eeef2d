package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"threef/internal/workspace"
)

// ErrMissingCategory is returned by Audit when a category has no content.
var ErrMissingCategory = errors.New("missing category content")

const (
	polishTemperature = 0.7
	auditTemperature  = 0.2

	// DefaultPolishTokens caps the length of a clarifying question.
	DefaultPolishTokens = 256
)

const polishSystem = `You are a Socratic coach helping someone describe one moment of their work in three parts:
Form (the tools, objects and setting), Function (what was done and how) and Feeling (how it felt).
Ask exactly one short clarifying question that would make the weakest part more concrete.
Do not rewrite their text and do not give advice.`

const auditSystem = `You are a strict reviewer of 3F reflections (Form, Function, Feeling).
Pass only if every part is specific and concrete and the three parts describe the same moment.
Answer with JSON only: {"pass": boolean, "reason": string, "improvements": [string]}.`

// Texts is the content of a reflection, one string per category.
type Texts map[workspace.Category]string

// TextsFrom collects the current content of every category.
func TextsFrom(r *workspace.Registry) Texts {
	t := make(Texts, len(workspace.Categories))
	for _, cat := range workspace.Categories {
		t[cat] = r.CategoryText(cat)
	}
	return t
}

func (t Texts) missing() []workspace.Category {
	var out []workspace.Category
	for _, cat := range workspace.Categories {
		if strings.TrimSpace(t[cat]) == "" {
			out = append(out, cat)
		}
	}
	return out
}

func (t Texts) prompt() string {
	var sb strings.Builder
	for _, cat := range workspace.Categories {
		fmt.Fprintf(&sb, "%s:\n%s\n\n", cat.Label(), strings.TrimSpace(t[cat]))
	}
	return strings.TrimSpace(sb.String())
}

// PolishRequest builds the request for a clarifying question.
func PolishRequest(t Texts, maxTokens int) Request {
	if maxTokens <= 0 {
		maxTokens = DefaultPolishTokens
	}
	return Request{
		System:          polishSystem,
		Prompt:          t.prompt(),
		Temperature:     polishTemperature,
		MaxOutputTokens: maxTokens,
	}
}

// AuditRequest builds the request for a pass/fail audit.
func AuditRequest(t Texts) Request {
	return Request{
		System:      auditSystem,
		Prompt:      t.prompt(),
		Temperature: auditTemperature,
		JSON:        true,
	}
}

// Polish asks for one clarifying question. An empty string means the model
// had no suggestion.
func Polish(ctx context.Context, g Generator, t Texts, maxTokens int) (string, error) {
	text, err := g.Generate(ctx, PolishRequest(t, maxTokens))
	if err != nil {
		return "", fmt.Errorf("polish: %w", err)
	}
	return text, nil
}

// AuditResult is the verdict of an audit.
type AuditResult struct {
	Pass         bool     `json:"pass"`
	Reason       string   `json:"reason"`
	Improvements []string `json:"improvements"`
}

// unreadable is returned when the model answered but not with a verdict.
var unreadable = AuditResult{Pass: false, Reason: "audit response could not be read"}

// ParseAudit reads a verdict. Anything that is not a JSON object with a
// boolean pass field yields the default failing result.
func ParseAudit(raw string) AuditResult {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var probe struct {
		Pass         *bool    `json:"pass"`
		Reason       string   `json:"reason"`
		Improvements []string `json:"improvements"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &probe); err != nil || probe.Pass == nil {
		return unreadable
	}
	return AuditResult{Pass: *probe.Pass, Reason: probe.Reason, Improvements: probe.Improvements}
}

// Validate fails with ErrMissingCategory naming every blank category.
func (t Texts) Validate() error {
	missing := t.missing()
	if len(missing) == 0 {
		return nil
	}
	labels := make([]string, len(missing))
	for i, cat := range missing {
		labels[i] = cat.Label()
	}
	return fmt.Errorf("%w: %s", ErrMissingCategory, strings.Join(labels, ", "))
}

// Audit checks that every category has content, then asks for a verdict.
// No call is made when a category is blank.
func Audit(ctx context.Context, g Generator, t Texts) (AuditResult, error) {
	if err := t.Validate(); err != nil {
		return AuditResult{}, err
	}
	text, err := g.Generate(ctx, AuditRequest(t))
	if err != nil {
		return AuditResult{}, fmt.Errorf("audit: %w", err)
	}
	return ParseAudit(text), nil
}

// Report renders a verdict as markdown.
func (r AuditResult) Report() string {
	var sb strings.Builder
	if r.Pass {
		sb.WriteString("## Audit passed\n\n")
	} else {
		sb.WriteString("## Audit failed\n\n")
	}
	if r.Reason != "" {
		sb.WriteString(r.Reason)
		sb.WriteString("\n")
	}
	if len(r.Improvements) > 0 {
		sb.WriteString("\n### Improvements\n\n")
		for _, imp := range r.Improvements {
			fmt.Fprintf(&sb, "- %s\n", imp)
		}
	}
	return sb.String()
}
