// Package ws streams filesystem changes and terminal execution over a
// WebSocket connection.
//
// Every connection is subscribed to the store and receives an fs_changed
// frame after each committed mutation, including undo. Frames are JSON
// objects keyed by "type".
//
// Message Types (Client → Server):
//   - create_session: Start a terminal session
//   - exec: Run {"session_id", "input"} in a session
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Sent once on connect, carries conn_id
//   - session_created: Session info
//   - exec_result: Execution result and new working directory
//   - fs_changed: Store event {op, path, undo, timestamp}
//   - pong: Reply to ping
//   - error: Error occurred
//
// Example Usage:
//
//	handler := ws.NewHandler(store, sessions, logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
