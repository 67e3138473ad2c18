package api

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/snaplet/snaplet/internal/common"
)

var httpMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request",
	http.StatusUnauthorized:        "Your session has expired. Please log in again",
	http.StatusRequestTimeout:      "The request timed out",
	http.StatusTooManyRequests:     "Too many requests. Please try again later",
	http.StatusInternalServerError: "Server error. Please try again later",
	http.StatusBadGateway:          "Server temporarily unavailable",
	http.StatusServiceUnavailable:  "Service under maintenance. Please try again later",
}

// normalize converts a non-2xx response into a StatusError. The message is
// taken from the static table, then from status.message in the body, then
// the generic default.
func normalize(httpStatus int, body []byte) *StatusError {
	return &StatusError{
		HTTPStatus: httpStatus,
		Code:       httpStatus,
		Message:    errorMessage(httpStatus, body),
	}
}

func errorMessage(httpStatus int, body []byte) string {
	if msg, ok := httpMessages[httpStatus]; ok {
		return msg
	}
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "status.message"); msg.Type == gjson.String {
			if s := strings.TrimSpace(msg.String()); s != "" {
				return s
			}
		}
	}
	return common.UnknownErrorMessage
}
