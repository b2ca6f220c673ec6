// Package websocket pushes mission reports to browser and CLI subscribers.
//
// Architecture:
//
// A central Hub owns every connection. Register, unregister and broadcast
// requests reach it over channels and are handled by the single goroutine
// running Hub.Run, so the client sets need no locks. Each connection has a
// read pump, which only detects disconnects and answers pongs, and a write
// pump, which drains the client's send queue and pings the peer.
//
// Channels:
//
// Clients subscribe to one channel with the ?channel= query parameter. An
// empty channel means DefaultChannel ("missions"), which receives every
// report. The HTTP API additionally publishes reports of named plans on
// "plan:<id>".
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"channel": "missions", "event": "mission_report", "report": {...}}
//
// Incoming messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("channel"))
//	})
//
//	hub.BroadcastReport(websocket.DefaultChannel, report)
package websocket
