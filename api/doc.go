// Package api provides HTTP REST API handlers for the Grid Walk server.
//
// The api package implements:
//   - One-shot turtle walks and keypad codes
//   - Keypad layout listing, lookup and upload
//   - Stepwise sessions that apply one instruction at a time
//   - WebSocket upgrade handling for live step events
//
// Endpoints:
//
// Walks:
//   - POST /api/turtle/walk - Walk a comma-separated turn list from the origin
//   - POST /api/keypads/{name}/code - Walk U/D/L/R lines over a keypad
//
// Keypads:
//   - GET /api/keypads - List built-in and configured layouts
//   - GET /api/keypads/{name} - Get one layout
//   - POST /api/keypads - Save a layout to the configs directory
//
// Sessions:
//   - POST /api/sessions - Create a turtle or keypad session
//   - GET /api/sessions - List sessions (sort, order, kind, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete a session
//   - POST /api/sessions/{id}/apply - Apply one instruction
//
//   - GET /api/health - Liveness probe
//   - GET /ws?session={id} - Stream step events for a session
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Walk endpoints take either a single
// instruction string or a list of lines:
//
//	{
//	  "instructions": "R2, L3",
//	  "lines": ["ULL", "RRDDD"]  // keypad only, joined with newlines
//	}
//
// Usage:
//
//	server := api.NewServer(navService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON. Unknown sessions and keypads map to 404,
// malformed instructions and layouts map to 400:
//
//	{
//	  "error": "error message"
//	}
package api
