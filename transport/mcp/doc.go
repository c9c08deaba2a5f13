// Package mcp exposes grid walks to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the
// REST API, so an agent and a browser watching the websocket stream see the
// same sessions.
//
// MCP Tools:
//   - turtle_walk: walk a turn list and report distances
//   - keypad_code: walk keypad lines over a layout and report the code
//   - list_keypads: list keypad layouts
//   - create_session, get_session, list_sessions, delete_session
//   - apply_instruction: feed one instruction to a session
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
