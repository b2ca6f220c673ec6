// Package mcp exposes the mission simulator to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API, so an agent sees exactly the reports other API users see and every
// run is broadcast to WebSocket subscribers.
//
// MCP Tools:
//   - run_mission: run raw instruction lines
//   - run_plan: run a stored plan by ID
//   - get_report: show a stored report, optionally with the step trace
//   - list_reports: list reports, filtered by outcome
//   - list_plans: list plans in the plans directory
//   - mission_instructions: input format and movement rules
//
// A mission that stops on a rejected rover is a normal result. Tool errors
// are reserved for bad arguments and API failures.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: the serve command mounts HandleMessage on /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
