// Package service defines the domain types and the collaborator contracts of
// the grid game client.
//
// The service package implements:
//   - The client-side data model (PlayerIdentity, MapSnapshot, MoveIntent, MoveResult)
//   - The observable View handed to renderers and inspection endpoints
//   - Lifecycle states of a mounted session
//   - Identity sanitization for tokens returned by the game server
//
// Collaborators:
//
// The session package depends only on the interfaces declared here:
//   - GameAPI: request/response calls to the game server (join, move, refresh, map)
//   - StreamDialer: the persistent push channel carrying map snapshots
//   - KeySource: registration point for discrete key presses
//   - Notifier: the blocking user notification
//
// Concrete implementations live in transport/rest, transport/websocket,
// game/intent and ui/terminal. Tests substitute in-memory fakes.
//
// Authority:
//
// The game server is authoritative. Nothing in this package computes or
// validates game rules; MoveResult and MapSnapshot are opaque text.
package service
