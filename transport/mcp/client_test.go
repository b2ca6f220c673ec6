package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/marsrover/mission/service"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("Tool returned error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]string
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", response["status"])
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json-error" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "report not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/json-error", nil, nil)
	if err == nil || err.Error() != "report not found" {
		t.Errorf("Expected 'report not found', got %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got %v", err)
	}
}

func TestClient_runMission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/missions" {
			t.Errorf("Expected POST /api/missions, got %s %s", r.Method, r.URL.Path)
		}

		var body struct {
			Instructions string   `json:"instructions"`
			Lines        []string `json:"lines"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		report := service.Simulate("", body.Lines)
		report.ID = "mission-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(report)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	text, isError := callTool(t, client.handleRunMission, map[string]interface{}{
		"lines": []interface{}{"5 5", "1 2 N", "LMLMLMLMM", "3 3 E", "MMRMMRMRRM"},
	})
	if isError {
		t.Fatalf("Unexpected tool error: %s", text)
	}

	for _, want := range []string{"Report mission-1: SUCCESS", "Rover#1: 1 3 N", "Rover#2: 5 1 E", "commands applied: 19"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result:\n%s", want, text)
		}
	}
}

func TestClient_runMission_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := service.Simulate("", []string{"5 5", "1 2 N", "MMMMM"})
		report.ID = "mission-2"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(report)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	text, isError := callTool(t, client.handleRunMission, map[string]interface{}{
		"instructions": "5 5\n1 2 N\nMMMMM",
	})
	if isError {
		t.Fatalf("A failed mission is a report, not a tool error: %s", text)
	}

	for _, want := range []string{"FAILED", "Rover: #1", "Code: out_of_bounds", "Last legal state: 1 5 N", "Rover#1 movement terminated."} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result:\n%s", want, text)
		}
	}
}

func TestClient_runMission_MissingInput(t *testing.T) {
	client := NewClient("http://localhost:0")

	text, isError := callTool(t, client.handleRunMission, map[string]interface{}{})
	if !isError {
		t.Error("Expected tool error")
	}
	if !strings.Contains(text, "required") {
		t.Errorf("Unexpected error text: %s", text)
	}
}

func TestClient_runPlan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/plans/nope/run" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "plan not found: 'nope'"})
			return
		}
		if r.Method != "POST" || r.URL.Path != "/api/plans/classic/run" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		report := service.Simulate("classic", []string{"5 5", "1 2 N", "LMLMLMLMM"})
		report.ID = "plan-1"
		json.NewEncoder(w).Encode(report)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	text, isError := callTool(t, client.handleRunPlan, map[string]interface{}{"plan_id": "classic"})
	if isError {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if !strings.Contains(text, "Plan: classic") {
		t.Errorf("Expected plan name in result:\n%s", text)
	}

	text, isError = callTool(t, client.handleRunPlan, map[string]interface{}{"plan_id": "nope"})
	if !isError || !strings.Contains(text, "plan not found") {
		t.Errorf("Expected plan not found tool error, got %v %s", isError, text)
	}
}

func TestClient_getReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/missions/abc" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		report := service.Simulate("", []string{"5 5", "1 2 N", "LM"})
		report.ID = "abc"
		json.NewEncoder(w).Encode(report)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	text, _ := callTool(t, client.handleGetReport, map[string]interface{}{"report_id": "abc", "steps": true})
	for _, want := range []string{"Report abc", "1. L (1,2) -> 1 2 W", "2. M (1,2) -> 0 2 W"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result:\n%s", want, text)
		}
	}

	text, _ = callTool(t, client.handleGetReport, map[string]interface{}{"report_id": "abc"})
	if strings.Contains(text, "1. L") {
		t.Errorf("Steps should be omitted by default:\n%s", text)
	}
}

func TestClient_listReports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "failed" {
			t.Errorf("Expected status=failed, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("Expected limit=5, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"total": 4,
			"reports": []*service.Report{
				{ID: "r-9", PlanName: "crash"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	// Numbers arrive as float64 from JSON clients
	text, isError := callTool(t, client.handleListReports, map[string]interface{}{"status": "failed", "limit": float64(5)})
	if isError {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if !strings.Contains(text, "Reports (1 of 4)") || !strings.Contains(text, "r-9 plan=crash FAILED") {
		t.Errorf("Unexpected result:\n%s", text)
	}
}

func TestClient_listPlans(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]*service.PlanInfo{
			{PlanID: "classic", Name: "classic", Terrain: "5 5", Rovers: 2, Description: "Two rovers"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	text, _ := callTool(t, client.handleListPlans, nil)
	if !strings.Contains(text, "- classic: classic (terrain 5 5, 2 rovers) - Two rovers") {
		t.Errorf("Unexpected result:\n%s", text)
	}
}

func TestClient_missionInstructions(t *testing.T) {
	client := NewClient("http://localhost:0")

	text, _ := callTool(t, client.handleMissionInstructions, nil)
	for _, want := range []string{"INPUT FORMAT", "LMLMLMLMM", "out_of_bounds", "position_occupied"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}
