package validator

import (
	"fmt"
	"regexp"
)

var (
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	digitRegex     = regexp.MustCompile(`[0-9]`)
	symbolRegex    = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~` + "`" + `]`)
)

// PasswordPolicy describes the configurable password rules. Length bounds
// always apply; each character-class requirement can be toggled
// independently.
type PasswordPolicy struct {
	MinLength        int  `env:"PASSWORD_MIN_LENGTH" envDefault:"12"`
	MaxLength        int  `env:"PASSWORD_MAX_LENGTH" envDefault:"128"`
	RequireUppercase bool `env:"PASSWORD_REQUIRE_UPPERCASE" envDefault:"true"`
	RequireLowercase bool `env:"PASSWORD_REQUIRE_LOWERCASE" envDefault:"true"`
	RequireDigit     bool `env:"PASSWORD_REQUIRE_DIGIT" envDefault:"true"`
	RequireSymbol    bool `env:"PASSWORD_REQUIRE_SYMBOL" envDefault:"true"`
}

// DefaultPasswordPolicy returns the policy applied when none is configured.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        12,
		MaxLength:        128,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RequireSymbol:    true,
	}
}

// PasswordRules expands a policy into individual rules so every unmet
// requirement is reported, not just the first.
func PasswordRules(field, value string, policy PasswordPolicy) []Rule {
	rules := []Rule{
		{
			Check: func() bool {
				return len(value) >= policy.MinLength && len(value) <= policy.MaxLength
			},
			Error: ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be %d-%d characters long", policy.MinLength, policy.MaxLength),
			},
		},
	}

	if policy.RequireUppercase {
		rules = append(rules, Rule{
			Check: func() bool { return uppercaseRegex.MatchString(value) },
			Error: ValidationError{Field: field, Message: "must contain at least one uppercase letter"},
		})
	}
	if policy.RequireLowercase {
		rules = append(rules, Rule{
			Check: func() bool { return lowercaseRegex.MatchString(value) },
			Error: ValidationError{Field: field, Message: "must contain at least one lowercase letter"},
		})
	}
	if policy.RequireDigit {
		rules = append(rules, Rule{
			Check: func() bool { return digitRegex.MatchString(value) },
			Error: ValidationError{Field: field, Message: "must contain at least one digit"},
		})
	}
	if policy.RequireSymbol {
		rules = append(rules, Rule{
			Check: func() bool { return symbolRegex.MatchString(value) },
			Error: ValidationError{Field: field, Message: "must contain at least one symbol"},
		})
	}

	return rules
}
