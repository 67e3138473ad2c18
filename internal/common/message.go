package common

import "strings"

// SafeMessage returns err's message, or UnknownErrorMessage when err is nil
// or its message is blank.
func SafeMessage(err error) string {
	if err == nil {
		return UnknownErrorMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}
