package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/marsrover/mission/service"
)

var (
	ErrReportNotFound = service.ErrReportNotFound
	ErrReportExists   = errors.New("report already exists")
)

// Manager handles the mission report lifecycle
type Manager struct {
	reports map[string]*service.Report
	now     func() time.Time
	mu      sync.RWMutex
}

// NewManager creates a new report store
func NewManager() *Manager {
	return &Manager{
		reports: make(map[string]*service.Report),
		now:     time.Now,
	}
}

// Create stores report. An empty ID is replaced by a fresh UUID and
// CreatedAt is set when missing.
func (m *Manager) Create(report *service.Report) (*service.Report, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(report.ID)
	if _, exists := m.reports[key]; exists {
		return nil, ErrReportExists
	}

	if report.CreatedAt.IsZero() {
		report.CreatedAt = m.now()
	}
	m.reports[key] = report

	return report, nil
}

// Get retrieves a report by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, exists := m.reports[strings.ToLower(id)]
	if !exists {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// List returns all reports, newest first
func (m *Manager) List() []*service.Report {
	m.mu.RLock()
	result := make([]*service.Report, 0, len(m.reports))
	for _, report := range m.reports {
		result = append(result, report)
	}
	m.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// Delete removes a report
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.reports[key]; !exists {
		return ErrReportNotFound
	}
	delete(m.reports, key)
	return nil
}

// CleanupExpired removes reports older than maxAge and returns how many
// were removed
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, report := range m.reports {
		if report.CreatedAt.Before(cutoff) {
			delete(m.reports, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of stored reports
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}
