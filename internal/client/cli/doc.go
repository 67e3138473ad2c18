// Package cli provides the interactive snaplet shell.
//
// It wires configuration, the encrypted local store, the API client and
// every screen controller, then drives them from a line-oriented REPL.
// Typical flow: the bootstrap controller picks the start destination from
// the persisted session, the user logs in if needed, and the home screen
// (camera and feed) plus the friend-request overlay come alive.
//
// Commands:
//   - login / logout / whoami
//   - feed / refresh
//   - permission grant|deny / camera / capture
//   - open <uri> / send / dismiss
//   - status / help / exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
