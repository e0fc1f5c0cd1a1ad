// Package mcp exposes the polling grid client as a Model Context Protocol
// server so an AI agent can play through tool calls.
//
// MCP Tools:
//   - add_player: Join the game and keep the returned player id
//   - move_player: Move one cell (up/down/left/right)
//   - update_world: Ask the server to advance the world
//   - current_map: Fetch the current map text
//   - player_state: Player id, last move result and last fetched map
//
// Every tool call maps to exactly one request against the game server,
// except player_state which only reads local state. A move without a
// player is refused locally with "Add a player first!" and never reaches
// the server.
//
// Usage:
//
//	panel := session.NewPanel(restClient, nil, session.WithLogger(log))
//	client := mcp.NewClient(panel, version)
//	server.ServeStdio(client.GetMCPServer())
package mcp
