// Package websocket provides the map stream transport for the grid game client.
//
// The websocket package implements:
//   - A service.StreamDialer backed by gorilla/websocket
//   - Background dialing that never blocks the caller
//   - Delivery of every text frame as a complete map snapshot
//   - Idempotent teardown that is safe mid-handshake
//
// Architecture:
//
// Each call to Subscribe starts one goroutine that dials the server, reports
// the open connection, and then reads frames until the connection ends. The
// same goroutine invokes the snapshot callback, so snapshots are delivered in
// the order the server sent them.
//
// Message Protocol:
//
// The server pushes one text frame per world change. The frame body is the
// whole preformatted map; there are no deltas and no envelope.
//
// Connection Lifecycle:
//
// 1. Subscribe returns a Subscription immediately
// 2. The dial runs under a cancellable context
// 3. onOpen fires once the handshake completes
// 4. onSnapshot fires for each frame
// 5. Close cancels a pending dial or closes the live connection, then waits
//    for the reader goroutine to exit
//
// There is no heartbeat and no reconnect. When the server drops the stream
// the last snapshot stays on screen until the session is remounted.
//
// Usage:
//
//	dialer := websocket.NewDialer("ws://localhost:8000/ws", logger)
//	sub := dialer.Subscribe(onSnapshot, onOpen)
//	defer sub.Close()
package websocket
