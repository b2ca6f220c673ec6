package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wricardo/marsrover/mission/library"
	"github.com/wricardo/marsrover/mission/plan"
	"github.com/wricardo/marsrover/mission/service"
	"github.com/wricardo/marsrover/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.MissionService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(missionService service.MissionService, hub *websocket.Hub) *Server {
	s := &Server{
		service: missionService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// Router exposes the router so callers can mount extra endpoints such as /mcp
func (s *Server) Router() *mux.Router {
	return s.router
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Missions
	api.HandleFunc("/missions", s.handleRunMission).Methods("POST")
	api.HandleFunc("/missions", s.handleListMissions).Methods("GET")
	api.HandleFunc("/missions/{id}", s.handleGetMission).Methods("GET")
	api.HandleFunc("/missions/{id}", s.handleDeleteMission).Methods("DELETE")

	// Plans
	api.HandleFunc("/plans", s.handleListPlans).Methods("GET")
	api.HandleFunc("/plans", s.handleCreatePlan).Methods("POST")
	api.HandleFunc("/plans/{name}", s.handleGetPlan).Methods("GET")
	api.HandleFunc("/plans/{name}/run", s.handleRunPlan).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrInvalidPlan), errors.Is(err, library.ErrInvalidName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Mission Handlers

// MissionRequest is the body of POST /api/missions. Instructions holds the
// raw newline-separated input; Lines is used when Instructions is empty.
// Both are trimmed and blank lines dropped.
type MissionRequest struct {
	Instructions string   `json:"instructions,omitempty"`
	Lines        []string `json:"lines,omitempty"`
}

func (s *Server) handleRunMission(w http.ResponseWriter, r *http.Request) {
	var req MissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := req.Instructions
	if strings.TrimSpace(text) == "" {
		text = strings.Join(req.Lines, "\n")
	}
	lines := plan.SplitLines(text)
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "instructions or lines are required")
		return
	}

	report, err := s.service.RunMission(r.Context(), lines)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	s.publish(report)
	respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.ListReports(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	total := len(reports)

	// Filter by outcome: "success" or "failed"
	if status := query.Get("status"); status == "success" || status == "failed" {
		filtered := make([]*service.Report, 0, len(reports))
		for _, report := range reports {
			if report.Success == (status == "success") {
				filtered = append(filtered, report)
			}
		}
		reports = filtered
	}

	if planName := query.Get("plan"); planName != "" {
		filtered := make([]*service.Report, 0, len(reports))
		for _, report := range reports {
			if report.PlanName == planName {
				filtered = append(filtered, report)
			}
		}
		reports = filtered
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(reports) {
			reports = reports[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"total":   total,
		"reports": reports,
	})
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["id"]

	report, err := s.service.GetReport(r.Context(), reportID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteMission(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["id"]

	if err := s.service.DeleteReport(r.Context(), reportID); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Report %s deleted", reportID),
	})
}

// Plan Handlers

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.service.ListPlans(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if plans == nil {
		plans = []*service.PlanInfo{}
	}
	respondJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planName := mux.Vars(r)["name"]

	p, err := s.service.LoadPlan(r.Context(), planName)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var p plan.Plan
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if p.Name == "" {
		respondError(w, http.StatusBadRequest, "Plan name is required")
		return
	}

	if err := plan.Validate(&p); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.SavePlan(r.Context(), p.Name, &p); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save plan: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Plan saved successfully",
		"plan_id": p.Name,
	})
}

func (s *Server) handleRunPlan(w http.ResponseWriter, r *http.Request) {
	planName := mux.Vars(r)["name"]

	report, err := s.service.RunPlan(r.Context(), planName)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	s.publish(report)
	respondJSON(w, http.StatusCreated, report)
}

// publish logs a compact summary line and broadcasts the report
func (s *Server) publish(report *service.Report) {
	status := "OK"
	if !report.Success {
		status = "FAIL"
		if report.Failure != nil {
			status = "FAIL:" + report.Failure.Code
		}
	}
	log.Printf("[MISSION] id=%s plan=%s rovers=%d/%d commands=%d status=%s",
		report.ID, report.PlanName, report.Summary.RoversPlaced, report.Summary.RoversRequested,
		report.Summary.CommandsApplied, status)

	if s.hub == nil {
		return
	}
	s.hub.BroadcastReport(websocket.DefaultChannel, report)
	if report.PlanName != "" {
		s.hub.BroadcastReport("plan:"+report.PlanName, report)
	}
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r, r.URL.Query().Get("channel"))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
