// Package api provides a small local HTTP API for inspecting and driving a
// running grid client.
//
// The server is optional and binds to the inspect address from the
// configuration. It never talks to the game server itself; it reads the
// client's current view and can inject key presses as if they came from the
// terminal.
//
// Endpoints:
//
//   - GET /api/state - Current view (player id, map, last move result, lifecycle state)
//   - GET /api/metrics - Request and stream counters
//   - GET /api/keys - The eight bound keys and their moves
//   - POST /api/keys/{key} - Press a bound key (ArrowUp, w, ...)
//   - GET /healthz - Liveness plus stream and player status
//
// Key injection answers 202 Accepted: the move itself is sent
// asynchronously, exactly like a key typed in the terminal. Unbound keys
// answer 400, and clients without keyboard dispatch (polling mode) answer
// 409.
//
// Usage:
//
//	srv := api.NewServer(sess, keys, stats)
//	go http.ListenAndServe(cfg.InspectAddr, srv)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
