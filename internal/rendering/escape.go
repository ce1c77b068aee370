// Package rendering synthesizes résumé documents from GitHub data.
package rendering

import "strings"

// Escaped is text that has already been through EscapeLaTeX.
// Escaping is not idempotent, so EscapeLaTeX only accepts plain strings.
type Escaped string

// String returns the escaped text.
func (e Escaped) String() string {
	return string(e)
}

// EscapeLaTeX escapes text for substitution into a LaTeX document.
// Special characters: \ { } $ & % # ^ _ ~
// Line breaks become single spaces and the result is trimmed.
func EscapeLaTeX(text string) Escaped {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2) // Pre-allocate space for potential escaping

	// One pass: tokens written here are never rescanned, so the braces in
	// \textbackslash{} are not escaped again.
	prevCR := false
	for _, r := range text {
		if r == '\n' && prevCR {
			prevCR = false
			continue
		}
		prevCR = r == '\r'

		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '\n', '\r':
			result.WriteByte(' ')
		default:
			result.WriteRune(r)
		}
	}

	return Escaped(strings.TrimSpace(result.String()))
}
