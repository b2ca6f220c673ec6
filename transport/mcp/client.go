package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/marsrover/mission/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Mars Rover Mission Control",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Mars Rover Mission Control - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A mission places rovers one at a time on a rectangular plateau and drives
each through its commands. A rover that would leave the plateau or hit
another rover stops the whole mission.

AVAILABLE TOOLS:
- run_mission: Run raw instruction lines
- run_plan: Run a stored plan by ID
- get_report: Get a stored mission report
- list_reports: List stored mission reports
- list_plans: List available plans
- mission_instructions: Input format and movement rules`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_mission",
		Description: "Run a mission from raw instruction lines: terrain line, then a placement line and a move line per rover",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"instructions": map[string]interface{}{
					"type":        "string",
					"description": "Newline-separated instructions, e.g. \"5 5\\n1 2 N\\nLMLMLMLMM\"",
				},
				"lines": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Instruction lines, used when instructions is empty",
				},
			},
		},
	}, c.handleRunMission)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_plan",
		Description: "Run a stored mission plan",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"plan_id": map[string]interface{}{
					"type":        "string",
					"description": "Plan ID as returned by list_plans",
				},
			},
			Required: []string{"plan_id"},
		},
	}, c.handleRunPlan)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_report",
		Description: "Get a stored mission report with the step trace of every rover",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"report_id": map[string]interface{}{
					"type":        "string",
					"description": "Report ID",
				},
				"steps": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the per-command step trace",
				},
			},
			Required: []string{"report_id"},
		},
	}, c.handleGetReport)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_reports",
		Description: "List stored mission reports, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"success", "failed"},
					"description": "Only reports with this outcome",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of reports",
				},
			},
		},
	}, c.handleListReports)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_plans",
		Description: "List available mission plans",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPlans)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "mission_instructions",
		Description: "Get the instruction format and the movement rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleMissionInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs a JSON request against the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) handleRunMission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	instructions := cast.ToString(args["instructions"])
	lines := cast.ToStringSlice(args["lines"])

	if strings.TrimSpace(instructions) == "" && len(lines) == 0 {
		return mcp.NewToolResultError("instructions or lines are required"), nil
	}

	body := map[string]interface{}{
		"instructions": instructions,
		"lines":        lines,
	}

	var report service.Report
	if err := c.apiCall(ctx, "POST", "/api/missions", body, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReport(&report, false)), nil
}

func (c *Client) handleRunPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID := cast.ToString(request.GetArguments()["plan_id"])
	if planID == "" {
		return mcp.NewToolResultError("plan_id is required"), nil
	}

	var report service.Report
	path := fmt.Sprintf("/api/plans/%s/run", url.PathEscape(planID))
	if err := c.apiCall(ctx, "POST", path, nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReport(&report, false)), nil
}

func (c *Client) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	reportID := cast.ToString(args["report_id"])
	if reportID == "" {
		return mcp.NewToolResultError("report_id is required"), nil
	}

	var report service.Report
	if err := c.apiCall(ctx, "GET", "/api/missions/"+url.PathEscape(reportID), nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReport(&report, cast.ToBool(args["steps"]))), nil
}

func (c *Client) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := url.Values{}
	if status := cast.ToString(args["status"]); status != "" {
		query.Set("status", status)
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}

	path := "/api/missions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp struct {
		Count   int               `json:"count"`
		Total   int               `json:"total"`
		Reports []*service.Report `json:"reports"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Reports) == 0 {
		return mcp.NewToolResultText("No mission reports"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reports (%d of %d):\n", resp.Count, resp.Total)
	for _, r := range resp.Reports {
		fmt.Fprintf(&b, "- %s plan=%s %s rovers=%d/%d created=%s\n",
			r.ID, orDash(r.PlanName), outcome(r), r.Summary.RoversPlaced, r.Summary.RoversRequested,
			r.CreatedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListPlans(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var plans []*service.PlanInfo
	if err := c.apiCall(ctx, "GET", "/api/plans", nil, &plans); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(plans) == 0 {
		return mcp.NewToolResultText("No plans available"), nil
	}

	var b strings.Builder
	b.WriteString("Available plans:\n")
	for _, p := range plans {
		fmt.Fprintf(&b, "- %s: %s (terrain %s, %d rovers)", p.PlanID, p.Name, p.Terrain, p.Rovers)
		if p.Description != "" {
			fmt.Fprintf(&b, " - %s", p.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleMissionInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(missionInstructions), nil
}

const missionInstructions = `Mars Rover Missions - Instructions

INPUT FORMAT:
Line 1: upper-right corner of the plateau, "X Y". The lower-left corner is (0,0).
Then two lines per rover:
  placement: "X Y D" where D is one of N, E, S, W
  moves:     a string of L, R and M

Example:
  5 5
  1 2 N
  LMLMLMLMM
  3 3 E
  MMRMMRMRRM

COMMANDS:
- L: turn 90 degrees left, stay in place
- R: turn 90 degrees right, stay in place
- M: move one cell forward. N is +Y, E is +X, S is -Y, W is -X

RULES:
- Rovers run one at a time, in input order. Each rover finishes all its
  commands before the next one is placed.
- After every command the rover must be on the plateau and on a cell no
  earlier rover occupies.
- A rejected command is not applied: the rover keeps its last legal
  position and the mission stops. Later rovers are never placed.
- Commands are case-insensitive; whitespace inside a move line is ignored.

RESULT:
On success each rover's final state is reported as "X Y D", e.g.
  1 3 N
  5 1 E
On failure the report names the rover (1-based), an error code such as
out_of_bounds or position_occupied, and the rover's last legal state.`

// formatReport renders a report as readable text
func formatReport(report *service.Report, withSteps bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Report %s: %s\n", report.ID, outcome(report))
	if report.PlanName != "" {
		fmt.Fprintf(&b, "Plan: %s\n", report.PlanName)
	}
	fmt.Fprintf(&b, "Terrain: (0,0) to (%d,%d)\n", report.Terrain.MaxX, report.Terrain.MaxY)
	fmt.Fprintf(&b, "Rovers placed: %d/%d, commands applied: %d\n",
		report.Summary.RoversPlaced, report.Summary.RoversRequested, report.Summary.CommandsApplied)

	if len(report.Rovers) > 0 {
		b.WriteString("\nFinal positions:\n")
		for _, r := range report.Rovers {
			fmt.Fprintf(&b, "  Rover#%d: %s (start %s, moves %s)\n", r.Index, r.Final, r.Start, r.Moves)
			if withSteps {
				for _, s := range r.Steps {
					fmt.Fprintf(&b, "    %d. %s %s -> %s\n", s.Seq, s.Action, s.From, s.To)
				}
			}
		}
	}

	if f := report.Failure; f != nil {
		b.WriteString("\nFailure:\n")
		if f.Rover > 0 {
			fmt.Fprintf(&b, "  Rover: #%d\n", f.Rover)
		}
		fmt.Fprintf(&b, "  Code: %s\n", f.Code)
		fmt.Fprintf(&b, "  Message: %s\n", f.Message)
		if f.LastState != nil {
			fmt.Fprintf(&b, "  Last legal state: %s\n", f.LastState)
		}
	}

	if len(report.Messages) > 0 {
		b.WriteString("\nLog:\n")
		for _, m := range report.Messages {
			fmt.Fprintf(&b, "  %s\n", m)
		}
	}

	return b.String()
}

func outcome(report *service.Report) string {
	if report.Success {
		return "SUCCESS"
	}
	return "FAILED"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
