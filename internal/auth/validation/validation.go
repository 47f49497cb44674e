// Package validation checks and normalizes client-supplied account fields.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 8
	MaxFieldLength    = 256
	MaxURLLength      = 2048
)

// passwordSymbols are the non-alphanumeric characters a password may contain.
const passwordSymbols = "@$!%*?&"

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	scriptTag = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
)

// Email reports whether email is a syntactically valid address.
func Email(email string) bool {
	return validate.Var(email, "required,email,max=254") == nil
}

// StrongPassword requires at least eight characters with an upper-case letter,
// a lower-case letter and a digit. Only letters, digits and @$!%*?& are allowed.
func StrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return false
		}
	}
	return hasUpper && hasLower && hasDigit
}

// PhotoURL accepts an empty value or an absolute http(s) URL of at most
// MaxURLLength characters.
func PhotoURL(url string) bool {
	return validate.Var(url, "omitempty,http_url,max=2048") == nil
}

// SanitizeString cleans s like SanitizeURL and truncates the result to
// MaxFieldLength runes.
func SanitizeString(s string) string {
	s = SanitizeURL(s)
	if runes := []rune(s); len(runes) > MaxFieldLength {
		s = string(runes[:MaxFieldLength])
	}
	return s
}

// SanitizeURL trims s and drops <script> blocks and control characters
// without truncating; PhotoURL bounds the length.
func SanitizeURL(s string) string {
	s = scriptTag.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// NormalizeEmail returns the canonical, lowercased form used for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(SanitizeString(email))
}
