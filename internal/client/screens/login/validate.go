package login

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 8

// Validation messages.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email format"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 8 characters"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateEmail returns the field error for email, or "".
func validateEmail(email string) string {
	switch {
	case strings.TrimSpace(email) == "":
		return MsgEmailRequired
	case validate.Var(email, "email") != nil:
		return MsgEmailInvalid
	default:
		return ""
	}
}

func validatePassword(password string) string {
	switch {
	case strings.TrimSpace(password) == "":
		return MsgPasswordRequired
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return MsgPasswordTooShort
	default:
		return ""
	}
}
