package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/marsrover/mission/plan"
	"github.com/wricardo/marsrover/mission/rover"
)

// missionServiceImpl implements the MissionService interface
type missionServiceImpl struct {
	reports ReportStore
	plans   PlanLibrary
	mu      sync.RWMutex
}

// NewMissionService creates a new mission service instance
func NewMissionService(reports ReportStore, plans PlanLibrary) MissionService {
	return &missionServiceImpl{
		reports: reports,
		plans:   plans,
	}
}

// RunMission simulates raw instruction lines and stores the report
func (s *missionServiceImpl) RunMission(ctx context.Context, lines []string) (*Report, error) {
	return s.run(ctx, func() *Report { return Simulate("", lines) })
}

// RunPlan simulates a stored plan and stores the report
func (s *missionServiceImpl) RunPlan(ctx context.Context, planName string) (*Report, error) {
	var p *plan.Plan
	if planName == "" {
		p = s.plans.GetDefault()
		if p == nil {
			return nil, fmt.Errorf("no default plan available: %w", ErrPlanNotFound)
		}
	} else {
		loaded, err := s.plans.LoadPlan(planName)
		if err != nil {
			if errors.Is(err, ErrPlanNotFound) {
				return nil, s.notFound(planName)
			}
			return nil, fmt.Errorf("failed to load plan %s: %w", planName, err)
		}
		p = loaded
	}

	name := planName
	if name == "" {
		name = p.Name
	}
	return s.run(ctx, func() *Report { return SimulatePlan(name, p) })
}

func (s *missionServiceImpl) run(ctx context.Context, simulate func() *Report) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.reports.Create(simulate())
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	return report, nil
}

// notFound builds a helpful error listing the available plans
func (s *missionServiceImpl) notFound(planName string) error {
	available, err := s.plans.ListPlans()
	if err == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, p := range available {
			ids = append(ids, p.PlanID)
		}
		return fmt.Errorf("%w: '%s'. Available plans: %v", ErrPlanNotFound, planName, ids)
	}
	return fmt.Errorf("%w: '%s'. Use /api/plans to list available plans", ErrPlanNotFound, planName)
}

// GetReport retrieves a stored report
func (s *missionServiceImpl) GetReport(ctx context.Context, reportID string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, err := s.reports.Get(reportID)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", reportID, err)
	}
	return report, nil
}

// ListReports returns all stored reports, newest first
func (s *missionServiceImpl) ListReports(ctx context.Context) ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.reports.List(), nil
}

// DeleteReport removes a stored report
func (s *missionServiceImpl) DeleteReport(ctx context.Context, reportID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reports.Delete(reportID); err != nil {
		return fmt.Errorf("report %s: %w", reportID, err)
	}
	return nil
}

// ListPlans returns the available plans
func (s *missionServiceImpl) ListPlans(ctx context.Context) ([]*PlanInfo, error) {
	return s.plans.ListPlans()
}

// LoadPlan loads a plan by name
func (s *missionServiceImpl) LoadPlan(ctx context.Context, planName string) (*plan.Plan, error) {
	p, err := s.plans.LoadPlan(planName)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, s.notFound(planName)
		}
		return nil, err
	}
	return p, nil
}

// SavePlan validates and saves a plan
func (s *missionServiceImpl) SavePlan(ctx context.Context, planName string, p *plan.Plan) error {
	return s.plans.SavePlan(planName, p)
}

// Simulate runs lines through the rover simulation and builds an unsaved
// report. Rover failures are recorded in the report, never returned.
func Simulate(planName string, lines []string) *Report {
	report := &Report{
		PlanName: planName,
		Rovers:   []RoverResult{},
		Messages: []string{},
	}

	mission, err := rover.Parse(lines)
	if err != nil {
		report.fail(err)
		return report
	}

	report.Terrain = mission.Terrain
	report.Summary.RoversRequested = len(mission.Rovers)

	outcome, err := rover.Run(mission)
	for _, d := range outcome.Deployments {
		report.Rovers = append(report.Rovers, RoverResult{
			Index: d.Index,
			Start: d.Start,
			Final: d.Final,
			Moves: d.Moves,
			Steps: d.Steps,
		})
		report.Messages = append(report.Messages, d.Message())
		report.Summary.CommandsApplied += len(d.Steps)
	}
	report.Summary.RoversPlaced = len(report.Rovers)

	if err != nil {
		report.fail(err)
		return report
	}

	report.Success = true
	return report
}

// SimulatePlan is Simulate for a structured plan. A rover with an empty
// placement or move line fails the report before any rover moves.
func SimulatePlan(planName string, p *plan.Plan) *Report {
	if err := p.Check(); err != nil {
		report := &Report{
			PlanName: planName,
			Rovers:   []RoverResult{},
			Messages: []string{},
		}
		report.fail(err)
		return report
	}
	return Simulate(planName, p.Lines())
}

func (r *Report) fail(err error) {
	f := &Failure{
		Rover:   rover.RoverIndex(err),
		Code:    rover.Code(err),
		Message: err.Error(),
	}

	var re *rover.RoverError
	if errors.As(err, &re) {
		f.LastState = re.State
		r.Messages = append(r.Messages, fmt.Sprintf("Rover#%d movement terminated.", re.Index))
	}

	r.Failure = f
}
