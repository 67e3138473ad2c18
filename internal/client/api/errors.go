package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/snaplet/snaplet/internal/common"
)

var (
	ErrEmptyResponse = errors.New("empty response from server")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
)

// StatusError is an application-level failure: either a non-2xx HTTP
// response or an envelope whose code is not 200.
type StatusError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return common.UnknownErrorMessage
	}
	return e.Message
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.HTTPStatus == http.StatusUnauthorized || e.Code == http.StatusUnauthorized
	case ErrNotFound:
		return e.HTTPStatus == http.StatusNotFound || e.Code == http.StatusNotFound
	}
	return false
}

// TransportError means no usable HTTP response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message returns the user-visible message for err. It is never blank.
func Message(err error) string {
	if err == nil {
		return common.UnknownErrorMessage
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Error()
	}

	var te *TransportError
	if errors.As(err, &te) {
		return common.SafeMessage(te.Err)
	}

	return common.SafeMessage(err)
}

func transportError(method, path string, err error) error {
	return &TransportError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
}
