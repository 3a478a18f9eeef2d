package ui

import (
	"html"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/microcosm-cc/bluemonday"
)

// Clipboard is the system clipboard, swapped out in tests.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

type systemClipboard struct{}

func (systemClipboard) Read() (string, error) {
	// pbpaste can be asked for plain text, which avoids RTF from rich editors.
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

func (systemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

// cleanPasted reduces rich clipboard content to plain text with \n line
// endings and no control characters.
func cleanPasted(text string) string {
	switch {
	case strings.HasPrefix(text, "{\\rtf"):
		text = stripRTF(text)
	case looksLikeHTML(text):
		text = stripHTML(text)
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			sb.WriteRune(r)
		}
	}
	out := strings.ReplaceAll(sb.String(), "\r\n", "\n")
	return strings.ReplaceAll(out, "\r", "\n")
}

func looksLikeHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

var plainText = bluemonday.StrictPolicy()

// stripHTML keeps only the text of a pasted fragment. Script and style
// bodies are dropped; entities come back as characters.
func stripHTML(fragment string) string {
	text := html.UnescapeString(plainText.Sanitize(fragment))
	return strings.ReplaceAll(text, "\u00a0", " ")
}

// stripRTF drops groups and control words, keeping escaped literals and
// turning \par into newlines.
func stripRTF(rtf string) string {
	var sb strings.Builder
	runes := []rune(rtf)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
		default:
			sb.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		if next == '\\' || next == '{' || next == '}' {
			sb.WriteRune(next)
			i++
			continue
		}
		if !isLetter(next) {
			i++
			continue
		}
		start := i + 1
		j := start
		for j < len(runes) && isLetter(runes[j]) {
			j++
		}
		word := string(runes[start:j])
		for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
			j++
		}
		if j < len(runes) && runes[j] == ' ' {
			j++
		}
		if word == "par" || word == "line" {
			sb.WriteByte('\n')
		}
		i = j - 1
	}
	return sb.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
