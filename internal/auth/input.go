package auth

import (
	"strings"

	"github.com/ashokafoundation/website/pkg/sanitizer"
	"github.com/ashokafoundation/website/pkg/validator"
)

// RegisterInput carries the registration form fields. Normalize must run
// before Validate; both are pure.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Normalize applies the canonical transforms: username and email trimmed
// and lowercased, full name stripped of markup and composed to NFC, the
// password trimmed of surrounding whitespace only.
func (in RegisterInput) Normalize() RegisterInput {
	return RegisterInput{
		Username: sanitizer.TrimToLower(in.Username),
		Email:    sanitizer.NormalizeEmail(in.Email),
		FullName: sanitizer.NormalizeName(in.FullName),
		Password: sanitizer.Trim(in.Password),
	}
}

// Validate checks every field against the format rules and the password
// policy, accumulating field-scoped errors so the form can show all
// problems at once. The full name is optional.
func (in RegisterInput) Validate(policy validator.PasswordPolicy) error {
	rules := []validator.Rule{
		validator.RequiredString("username", in.Username),
		validator.ValidUsername("username", in.Username),
		validator.RequiredString("email", in.Email),
		validator.ValidEmail("email", in.Email),
	}
	if in.FullName != "" {
		rules = append(rules, validator.ValidFullName("full_name", in.FullName))
	}
	rules = append(rules, validator.PasswordRules("password", in.Password, policy)...)

	return validator.Apply(rules...)
}

// NormalizeIdentifier canonicalizes a login identifier with the same
// transforms registration applies, so the address a user typed at signup
// always matches the stored one. Emails go through the full email
// normalization; usernames are trimmed and lowercased.
func NormalizeIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return sanitizer.NormalizeEmail(identifier)
	}
	return sanitizer.TrimToLower(identifier)
}

// ValidIdentifierFormat reports whether a normalized identifier is
// plausible as either an email (when it contains '@') or a username.
// Login fails fast on a malformed identifier without touching the
// directory.
func ValidIdentifierFormat(identifier string) bool {
	if strings.Contains(identifier, "@") {
		return validator.ValidEmail("identifier", identifier).Check()
	}
	return validator.ValidUsername("identifier", identifier).Check()
}
