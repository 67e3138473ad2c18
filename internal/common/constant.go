// Package common contains constants and helpers shared by the client core,
// the shell and the development mock backend.
package common

// Header names used on every API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// StatusCodeOK is the envelope status code that marks success. Any other
// code is an application-level failure, whatever the HTTP status was.
const StatusCodeOK = 200

// UnknownErrorMessage is shown when a failure carries no usable message.
const UnknownErrorMessage = "Unknown error"
