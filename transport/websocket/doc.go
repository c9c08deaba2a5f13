// Package websocket streams walk session events to browser and CLI clients.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Each client connection runs a read pump and a write pump; all
// bookkeeping happens on the hub's Run goroutine.
//
// Message Protocol:
//
// Clients subscribe with GET /ws?session=<id> and only receive. Each frame is
// one JSON Message:
//
//	{"session_id": "ab12", "event": "step", "data": {...ApplyResult...}}
//
// Events are "step" after every applied instruction, "session_created" and
// "session_deleted".
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastEvent(sessionID, websocket.EventStep, result)
package websocket
