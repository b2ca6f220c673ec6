package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/marsrover/mission/library"
	"github.com/wricardo/marsrover/mission/plan"
	"github.com/wricardo/marsrover/mission/service"
	"github.com/wricardo/marsrover/mission/store"
	"github.com/wricardo/marsrover/transport/websocket"
)

// MockMissionService implements service.MissionService for testing
type MockMissionService struct {
	RunMissionFunc   func(ctx context.Context, lines []string) (*service.Report, error)
	RunPlanFunc      func(ctx context.Context, planName string) (*service.Report, error)
	GetReportFunc    func(ctx context.Context, reportID string) (*service.Report, error)
	ListReportsFunc  func(ctx context.Context) ([]*service.Report, error)
	DeleteReportFunc func(ctx context.Context, reportID string) error
	ListPlansFunc    func(ctx context.Context) ([]*service.PlanInfo, error)
	LoadPlanFunc     func(ctx context.Context, planName string) (*plan.Plan, error)
	SavePlanFunc     func(ctx context.Context, planName string, p *plan.Plan) error
}

func (m *MockMissionService) RunMission(ctx context.Context, lines []string) (*service.Report, error) {
	if m.RunMissionFunc != nil {
		return m.RunMissionFunc(ctx, lines)
	}
	report := service.Simulate("", lines)
	report.ID = "test-report"
	return report, nil
}

func (m *MockMissionService) RunPlan(ctx context.Context, planName string) (*service.Report, error) {
	if m.RunPlanFunc != nil {
		return m.RunPlanFunc(ctx, planName)
	}
	report := service.Simulate(planName, plan.Classic().Lines())
	report.ID = "test-report"
	return report, nil
}

func (m *MockMissionService) GetReport(ctx context.Context, reportID string) (*service.Report, error) {
	if m.GetReportFunc != nil {
		return m.GetReportFunc(ctx, reportID)
	}
	return &service.Report{ID: reportID, CreatedAt: time.Now()}, nil
}

func (m *MockMissionService) ListReports(ctx context.Context) ([]*service.Report, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(ctx)
	}
	return []*service.Report{}, nil
}

func (m *MockMissionService) DeleteReport(ctx context.Context, reportID string) error {
	if m.DeleteReportFunc != nil {
		return m.DeleteReportFunc(ctx, reportID)
	}
	return nil
}

func (m *MockMissionService) ListPlans(ctx context.Context) ([]*service.PlanInfo, error) {
	if m.ListPlansFunc != nil {
		return m.ListPlansFunc(ctx)
	}
	return []*service.PlanInfo{}, nil
}

func (m *MockMissionService) LoadPlan(ctx context.Context, planName string) (*plan.Plan, error) {
	if m.LoadPlanFunc != nil {
		return m.LoadPlanFunc(ctx, planName)
	}
	p := plan.Classic()
	p.Name = planName
	return p, nil
}

func (m *MockMissionService) SavePlan(ctx context.Context, planName string, p *plan.Plan) error {
	if m.SavePlanFunc != nil {
		return m.SavePlanFunc(ctx, planName, p)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, missionService service.MissionService) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	return NewServer(missionService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

// Mission Tests

func TestRunMission(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockMissionService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "Run raw instructions",
			requestBody:    MissionRequest{Instructions: "5 5\n1 2 N\nLMLMLMLMM\n\n3 3 E\nMMRMMRMRRM\n"},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.Report
				parseResponse(t, w, &resp)
				if !resp.Success {
					t.Fatalf("Expected success, got %+v", resp.Failure)
				}
				if got := strings.Join(resp.Output(), "|"); got != "1 3 N|5 1 E" {
					t.Errorf("Expected 1 3 N|5 1 E, got %s", got)
				}
			},
		},
		{
			name:        "Run lines",
			requestBody: MissionRequest{Lines: []string{"5 5", "1 2 N", "M", "1 1 N", "MM"}},
			setupMock: func(m *MockMissionService) {
				m.RunMissionFunc = func(ctx context.Context, lines []string) (*service.Report, error) {
					if len(lines) != 5 {
						t.Errorf("Expected 5 lines, got %d", len(lines))
					}
					return service.Simulate("", lines), nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.Report
				parseResponse(t, w, &resp)
				if resp.Success {
					t.Fatal("Expected failed mission")
				}
				if resp.Failure.Code != "position_occupied" || resp.Failure.Rover != 2 {
					t.Errorf("Unexpected failure: %+v", resp.Failure)
				}
			},
		},
		{
			name:        "Run lines with blank and padded entries",
			requestBody: MissionRequest{Lines: []string{"5 5", "", "  1 2 N ", "\t", "M"}},
			setupMock: func(m *MockMissionService) {
				m.RunMissionFunc = func(ctx context.Context, lines []string) (*service.Report, error) {
					want := []string{"5 5", "1 2 N", "M"}
					if strings.Join(lines, "|") != strings.Join(want, "|") {
						t.Errorf("Expected lines %q, got %q", want, lines)
					}
					return service.Simulate("", lines), nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.Report
				parseResponse(t, w, &resp)
				if !resp.Success {
					t.Fatalf("Expected success, got %+v", resp.Failure)
				}
				if got := strings.Join(resp.Output(), "|"); got != "1 3 N" {
					t.Errorf("Expected 1 3 N, got %s", got)
				}
			},
		},
		{
			name:           "Reject blank lines only",
			requestBody:    MissionRequest{Lines: []string{"", "  "}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Reject empty body",
			requestBody:    MissionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Handle service error",
			requestBody: MissionRequest{Lines: []string{"5 5"}},
			setupMock: func(m *MockMissionService) {
				m.RunMissionFunc = func(ctx context.Context, lines []string) (*service.Report, error) {
					return nil, fmt.Errorf("store full")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "store full" {
					t.Errorf("Expected error 'store full', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockMissionService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/missions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestRunMission_InvalidJSON(t *testing.T) {
	server := setupTestServer(t, &MockMissionService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/missions", strings.NewReader("{"))

	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListMissions(t *testing.T) {
	mockService := &MockMissionService{
		ListReportsFunc: func(ctx context.Context) ([]*service.Report, error) {
			return []*service.Report{
				{ID: "r-3", Success: true, PlanName: "classic"},
				{ID: "r-2", Success: false, PlanName: "crash"},
				{ID: "r-1", Success: true},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query string
		count int
		first string
	}{
		{"", 3, "r-3"},
		{"?status=success", 2, "r-3"},
		{"?status=failed", 1, "r-2"},
		{"?plan=classic", 1, "r-3"},
		{"?limit=2", 2, "r-3"},
		{"?status=success&limit=1", 1, "r-3"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/missions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count   int               `json:"count"`
				Total   int               `json:"total"`
				Reports []*service.Report `json:"reports"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != tt.count || len(resp.Reports) != tt.count {
				t.Errorf("Expected %d reports, got count=%d len=%d", tt.count, resp.Count, len(resp.Reports))
			}
			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			if len(resp.Reports) > 0 && resp.Reports[0].ID != tt.first {
				t.Errorf("Expected first report %s, got %s", tt.first, resp.Reports[0].ID)
			}
		})
	}
}

func TestGetMission(t *testing.T) {
	mockService := &MockMissionService{
		GetReportFunc: func(ctx context.Context, reportID string) (*service.Report, error) {
			if reportID == "missing" {
				return nil, fmt.Errorf("report %s: %w", reportID, service.ErrReportNotFound)
			}
			return &service.Report{ID: reportID}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/missions/abc", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	var resp service.Report
	parseResponse(t, w, &resp)
	if resp.ID != "abc" {
		t.Errorf("Expected report abc, got %s", resp.ID)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/missions/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestDeleteMission(t *testing.T) {
	deleted := ""
	mockService := &MockMissionService{
		DeleteReportFunc: func(ctx context.Context, reportID string) error {
			if reportID == "missing" {
				return service.ErrReportNotFound
			}
			deleted = reportID
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/missions/abc", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "abc" {
		t.Errorf("Expected abc to be deleted, got %q", deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/missions/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Plan Tests

func TestListPlans(t *testing.T) {
	mockService := &MockMissionService{
		ListPlansFunc: func(ctx context.Context) ([]*service.PlanInfo, error) {
			return []*service.PlanInfo{
				{PlanID: "classic", Rovers: 2, Terrain: "5 5"},
				{PlanID: "convoy", Rovers: 3, Terrain: "7 4"},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/plans", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp []service.PlanInfo
	parseResponse(t, w, &resp)
	if len(resp) != 2 || resp[1].PlanID != "convoy" {
		t.Errorf("Unexpected plans: %+v", resp)
	}
}

func TestGetPlan(t *testing.T) {
	mockService := &MockMissionService{
		LoadPlanFunc: func(ctx context.Context, planName string) (*plan.Plan, error) {
			if planName != "classic" {
				return nil, service.ErrPlanNotFound
			}
			return plan.Classic(), nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/plans/classic", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp plan.Plan
	parseResponse(t, w, &resp)
	if resp.Terrain != "5 5" || len(resp.Rovers) != 2 {
		t.Errorf("Unexpected plan: %+v", resp)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/plans/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCreatePlan(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name: "Valid plan",
			body: plan.Plan{
				Name:    "ridge",
				Terrain: "3 3",
				Rovers:  []plan.RoverPlan{{Placement: "0 0 N", Moves: "MM"}},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing name",
			body:           plan.Plan{Terrain: "3 3", Rovers: []plan.RoverPlan{{Placement: "0 0 N", Moves: "MM"}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid instructions",
			body:           plan.Plan{Name: "bad", Terrain: "3 3", Rovers: []plan.RoverPlan{{Placement: "0 0 Q", Moves: "MM"}}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := ""
			mockService := &MockMissionService{
				SavePlanFunc: func(ctx context.Context, planName string, p *plan.Plan) error {
					saved = planName
					return nil
				},
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/plans", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusCreated && saved != "ridge" {
				t.Errorf("Expected plan ridge to be saved, got %q", saved)
			}
			if tt.expectedStatus != http.StatusCreated && saved != "" {
				t.Errorf("Expected nothing to be saved, got %q", saved)
			}
		})
	}
}

func TestRunPlan(t *testing.T) {
	mockService := &MockMissionService{
		RunPlanFunc: func(ctx context.Context, planName string) (*service.Report, error) {
			if planName == "nope" {
				return nil, fmt.Errorf("%w: 'nope'", service.ErrPlanNotFound)
			}
			report := service.Simulate(planName, plan.Classic().Lines())
			report.ID = "plan-report"
			return report, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/plans/classic/run", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	var resp service.Report
	parseResponse(t, w, &resp)
	if resp.PlanName != "classic" || resp.ID != "plan-report" {
		t.Errorf("Unexpected report: %+v", resp)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/plans/nope/run", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockMissionService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %s", resp["status"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t, &MockMissionService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("PUT", "/api/missions", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

// Integration test wiring the real store and plan library
func TestServerIntegration(t *testing.T) {
	dir := t.TempDir()
	data, err := plan.Encode(plan.Classic(), ".yaml")
	if err != nil {
		t.Fatalf("Failed to encode plan: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "classic.yaml"), data, 0644); err != nil {
		t.Fatalf("Failed to write plan: %v", err)
	}

	plans, err := library.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create plan library: %v", err)
	}
	server := setupTestServer(t, service.NewMissionService(store.NewManager(), plans))

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/plans/classic/run", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created service.Report
	parseResponse(t, w, &created)
	if created.ID == "" {
		t.Fatal("Expected report ID")
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/missions/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var fetched service.Report
	parseResponse(t, w, &fetched)
	if got := strings.Join(fetched.Output(), "|"); got != "1 3 N|5 1 E" {
		t.Errorf("Expected 1 3 N|5 1 E, got %s", got)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/plans", plan.Plan{Name: "../escape", Terrain: "1 1", Rovers: []plan.RoverPlan{{Placement: "0 0 N", Moves: "M"}}}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad plan name, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/missions/"+created.ID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/missions/"+created.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}
