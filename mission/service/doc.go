// Package service provides the business logic layer for the Mars Rover mission
// simulator.
//
// The service package implements:
//   - Running missions from raw instruction lines or stored plans
//   - Turning simulation outcomes into reports
//   - Report storage and retrieval
//   - Plan library access
//
// Core Interfaces:
//
// MissionService is the main service interface used by the CLI, the REST API
// and the MCP tools. ReportStore keeps the reports of past runs in memory.
// PlanLibrary loads and saves mission plans.
//
// Architecture:
//
// The service layer sits between the transport layer (CLI/HTTP/WebSocket/MCP)
// and the rover simulation. A rejected rover is not a service error: it is
// recorded in the report (Success=false with a Failure) so that callers can
// show what happened. Service errors are reserved for bad requests such as an
// unknown plan or report.
//
// Usage:
//
//	store := store.NewManager()
//	plans, _ := library.NewManager("plans")
//	missions := service.NewMissionService(store, plans)
//
//	report, err := missions.RunPlan(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range report.Rovers {
//		fmt.Println(r.Final)
//	}
package service
