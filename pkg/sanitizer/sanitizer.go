// Package sanitizer normalizes user-submitted strings before validation
// and storage. Sanitization never fails; it only transforms.
package sanitizer

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// TrimToLower trims and lowercases, the normal form for usernames and
// emails throughout the app.
func TrimToLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	dotRunRegex     = regexp.MustCompile(`\.{2,}`)
)

// StripHTML discards all markup, leaving plain text with entities decoded.
func StripHTML(s string) string {
	return html.UnescapeString(htmlTagRegex.ReplaceAllString(s, ""))
}

// NormalizeEmail trims, lowercases and collapses dot runs in the local
// part, producing the canonical form stored and compared everywhere.
func NormalizeEmail(email string) string {
	email = TrimToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := dotRunRegex.ReplaceAllString(parts[0], ".")
	local = strings.Trim(local, ".")
	return local + "@" + parts[1]
}

// NormalizeName prepares a display name for validation: markup stripped,
// whitespace collapsed to single spaces, and the result composed to
// Unicode NFC so accented letters arrive in one canonical representation.
func NormalizeName(s string) string {
	s = StripHTML(s)
	s = multiSpaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
	return norm.NFC.String(s)
}
