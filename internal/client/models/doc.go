// Package models defines the client-side data types shared by the session
// store, the remote service adapter and the screen controllers.
package models
