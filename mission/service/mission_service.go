package service

import (
	"context"
	"time"

	"github.com/wricardo/marsrover/mission/plan"
)

// MissionService defines all mission-related operations
type MissionService interface {
	// Missions
	RunMission(ctx context.Context, lines []string) (*Report, error)
	RunPlan(ctx context.Context, planName string) (*Report, error)

	// Reports
	GetReport(ctx context.Context, reportID string) (*Report, error)
	ListReports(ctx context.Context) ([]*Report, error)
	DeleteReport(ctx context.Context, reportID string) error

	// Plans
	ListPlans(ctx context.Context) ([]*PlanInfo, error)
	LoadPlan(ctx context.Context, planName string) (*plan.Plan, error)
	SavePlan(ctx context.Context, planName string, p *plan.Plan) error
}

// ReportStore defines report storage operations
type ReportStore interface {
	Create(report *Report) (*Report, error)
	Get(id string) (*Report, error)
	List() []*Report
	Delete(id string) error
	CleanupExpired(maxAge time.Duration) int
}

// PlanLibrary handles mission plan loading
type PlanLibrary interface {
	LoadPlan(name string) (*plan.Plan, error)
	ListPlans() ([]*PlanInfo, error)
	GetDefault() *plan.Plan
	SavePlan(name string, p *plan.Plan) error
}
