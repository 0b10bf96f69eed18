package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashokafoundation/website/pkg/validator"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"john@example.com",
		"john.doe+tag@sub.example.co.uk",
		"a@b.io",
	}
	for _, email := range valid {
		assert.True(t, validator.ValidEmail("email", email).Check(), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"john@",
		"john@example",
		"john@.example.com",
		"john@example.com.",
		"John Doe <john@example.com>",
	}
	for _, email := range invalid {
		assert.False(t, validator.ValidEmail("email", email).Check(), email)
	}
}

func TestValidUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"johndoe", "john_doe", "john-doe", "j0hn", "a-1_b"}
	for _, u := range valid {
		assert.True(t, validator.ValidUsername("username", u).Check(), u)
	}

	invalid := []string{
		"",
		"jo",                 // too short
		"JohnDoe",            // uppercase
		"_johndoe",           // leading separator
		"johndoe-",           // trailing separator
		"john__doe",          // doubled separator
		"john doe",           // space
		"john.doe",           // dot
		strings.Repeat("a", 31),
	}
	for _, u := range invalid {
		assert.False(t, validator.ValidUsername("username", u).Check(), u)
	}
}

func TestValidFullName(t *testing.T) {
	t.Parallel()

	valid := []string{
		"Jo",
		"John Doe",
		"Mary-Jane O'Brien",
		"Søren Kierkegaard",
		"José García",
	}
	for _, name := range valid {
		assert.True(t, validator.ValidFullName("full_name", name).Check(), name)
	}

	invalid := []string{
		"",
		"J",             // too short
		"John  Doe",     // doubled space
		" John",         // leading separator
		"John-",         // trailing separator
		"John9",         // digit
		"John_Doe",      // underscore
		"John--Doe",     // doubled hyphen
	}
	for _, name := range invalid {
		assert.False(t, validator.ValidFullName("full_name", name).Check(), name)
	}
}

func TestPasswordRules(t *testing.T) {
	t.Parallel()

	policy := validator.DefaultPasswordPolicy()

	t.Run("strong password passes", func(t *testing.T) {
		err := validator.Apply(validator.PasswordRules("password", "VeryStr0ngP@ss!1", policy)...)
		assert.NoError(t, err)
	})

	t.Run("every unmet requirement is reported", func(t *testing.T) {
		err := validator.Apply(validator.PasswordRules("password", "short", policy)...)
		ve := validator.Extract(err)
		// length, uppercase, digit and symbol all fail
		assert.Len(t, ve, 4)
	})

	t.Run("requirements are independently togglable", func(t *testing.T) {
		relaxed := policy
		relaxed.RequireSymbol = false
		relaxed.RequireUppercase = false

		err := validator.Apply(validator.PasswordRules("password", "alllowercase123", relaxed)...)
		assert.NoError(t, err)

		err = validator.Apply(validator.PasswordRules("password", "alllowercase123", policy)...)
		assert.Error(t, err)
	})

	t.Run("length bounds always apply", func(t *testing.T) {
		nolimits := validator.PasswordPolicy{MinLength: 12, MaxLength: 128}
		err := validator.Apply(validator.PasswordRules("password", "elevenchars", nolimits)...)
		assert.Error(t, err)
	})
}
