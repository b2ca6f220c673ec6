// Package api provides the HTTP REST API of the mission simulator.
//
// Endpoints:
//
// Missions:
//   - POST /api/missions - Run raw instructions and store the report
//   - GET /api/missions - List reports, newest first (?status=success|failed, ?plan=, ?limit=)
//   - GET /api/missions/{id} - Get one report
//   - DELETE /api/missions/{id} - Delete one report
//
// Plans:
//   - GET /api/plans - List plans in the plans directory
//   - POST /api/plans - Validate and save a plan
//   - GET /api/plans/{name} - Get one plan
//   - POST /api/plans/{name}/run - Run a plan and store the report
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?channel=missions - Subscribe to reports over WebSocket
//
// Request Format:
//
// A mission is sent either as one newline-separated string or as a list of
// lines. Blank lines and surrounding whitespace are ignored:
//
//	{"instructions": "5 5\n1 2 N\nLMLMLMLMM\n3 3 E\nMMRMMRMRRM"}
//	{"lines": ["5 5", "1 2 N", "LMLMLMLMM"]}
//
// A rejected rover does not make the request fail. The response is still
// 201 with "success": false and a "failure" object holding the rover
// number, an error code such as "out_of_bounds" and the rover's last legal
// state.
//
// Every stored report is broadcast on the "missions" WebSocket channel and,
// for plan runs, on "plan:<id>".
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code:
//
//	{"error": "plan not found: 'nope'. Available plans: [classic convoy]"}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	server := api.NewServer(missionService, hub)
//	http.ListenAndServe(":8080", server)
package api
