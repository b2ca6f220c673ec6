// Package store keeps mission reports in memory.
//
// Every run of the rover simulation produces a service.Report. The store
// assigns each report a UUID, timestamps it and keeps it until it is deleted
// or expires.
//
// Core Types:
//
// Manager is the thread-safe report store. It satisfies service.ReportStore
// and is what the HTTP API, the WebSocket hub and the MCP tools read reports
// from.
//
// Concurrency:
//
// All Manager methods may be called from multiple goroutines. Reads take a
// shared lock, writes an exclusive one.
//
// Usage:
//
//	reports := store.NewManager()
//	svc := service.NewMissionService(reports, plans)
//
//	report, err := svc.RunPlan(ctx, "classic")
//	...
//	removed := reports.CleanupExpired(24 * time.Hour)
package store
