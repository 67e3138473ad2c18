// Package api is the client side of the snaplet HTTP API.
//
// Every response body is an envelope {status:{code,message},data}. Non-2xx
// responses are normalized into a *StatusError carrying a user-facing
// message; a 2xx response whose envelope code is not 200 is a *StatusError
// as well. Network failures are *TransportError and unusable bodies are
// ErrEmptyResponse. Message turns any of them into the string shown to the
// user.
package api
