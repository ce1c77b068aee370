// Package sanitize normalizes untrusted strings before they reach logs, HTML, or lookups.
package sanitize

import "strings"

const (
	// MaxUsernameLength is GitHub's handle length ceiling.
	MaxUsernameLength = 39
	// MaxFreeTextLength bounds free-text fields.
	MaxFreeTextLength = 1000
)

// Username lowercases the input, keeps only [a-z0-9-], and truncates to 39 characters.
func Username(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))

	var sb strings.Builder
	sb.Grow(len(input))
	n := 0
	for _, r := range input {
		if n == MaxUsernameLength {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			sb.WriteRune(r)
			n++
		}
	}
	return sb.String()
}

// FreeText trims whitespace, strips < > " ' &, and truncates to 1000 characters.
// Intended for HTML and log output; LaTeX output uses rendering.EscapeLaTeX instead.
func FreeText(input string) string {
	input = strings.TrimSpace(input)

	var sb strings.Builder
	sb.Grow(len(input))
	n := 0
	for _, r := range input {
		if n == MaxFreeTextLength {
			break
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			continue
		}
		sb.WriteRune(r)
		n++
	}
	return sb.String()
}
