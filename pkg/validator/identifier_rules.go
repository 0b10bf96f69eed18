package validator

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30

	minFullNameRunes = 2
	maxFullNameRunes = 100
)

var (
	// Lowercase alphanumeric segments joined by single underscores or
	// hyphens; no leading, trailing or doubled separators.
	usernameRegex = regexp.MustCompile(`^[a-z0-9]+(?:[_-][a-z0-9]+)*$`)

	// Letter groups (any script, accents included) joined by a single
	// internal space, apostrophe or hyphen; starts and ends with a letter.
	fullNameRegex = regexp.MustCompile(`^\p{L}+(?:[ '-]\p{L}+)*$`)
)

// ValidUsername enforces the login-name format: 3-30 characters of
// lowercase alphanumerics with single internal separators.
func ValidUsername(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < minUsernameLength || len(value) > maxUsernameLength {
				return false
			}
			return usernameRegex.MatchString(value)
		},
		Error: ValidationError{
			Field: field,
			Message: fmt.Sprintf(
				"must be %d-%d lowercase letters or digits, optionally separated by single '_' or '-'",
				minUsernameLength, maxUsernameLength,
			),
		},
	}
}

// ValidFullName accepts a human display name: 2-100 letters (accented
// included) with single internal space, apostrophe or hyphen separators.
// Callers strip markup and normalize Unicode before validation.
func ValidFullName(field, value string) Rule {
	return Rule{
		Check: func() bool {
			n := utf8.RuneCountInString(value)
			if n < minFullNameRunes || n > maxFullNameRunes {
				return false
			}
			return fullNameRegex.MatchString(value)
		},
		Error: ValidationError{
			Field: field,
			Message: fmt.Sprintf(
				"must be %d-%d letters, with single spaces, apostrophes or hyphens between name parts",
				minFullNameRunes, maxFullNameRunes,
			),
		},
	}
}
