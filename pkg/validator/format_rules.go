package validator

import (
	"net/mail"
	"strings"
)

// maxEmailLength is the RFC 5321 ceiling for a deliverable address.
const maxEmailLength = 254

// ValidEmail validates address syntax via the stdlib mail parser plus the
// practical constraints web forms need: a dotted, non-empty domain and an
// overall length cap.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" || len(value) > maxEmailLength {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}

			parts := strings.Split(value, "@")
			if len(parts) != 2 || parts[0] == "" {
				return false
			}

			domain := parts[1]
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}
			for _, part := range strings.Split(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}
