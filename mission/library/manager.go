package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/marsrover/mission/plan"
	"github.com/wricardo/marsrover/mission/service"
)

var (
	ErrPlanNotFound = service.ErrPlanNotFound
	ErrInvalidPlan  = errors.New("invalid plan")
	ErrInvalidName  = errors.New("invalid plan name")
)

// defaultPlanName is preferred as the default plan when present
const defaultPlanName = "classic"

// Manager handles mission plan loading and caching
type Manager struct {
	plansDir    string
	defaultPlan *plan.Plan
	plans       map[string]*plan.Plan
	mu          sync.RWMutex
}

// NewManager creates a new plan library over plansDir
func NewManager(plansDir string) (*Manager, error) {
	info, err := os.Stat(plansDir)
	if err != nil {
		return nil, fmt.Errorf("plans directory does not exist: %s", plansDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("plans path is not a directory: %s", plansDir)
	}

	m := &Manager{
		plansDir: plansDir,
		plans:    make(map[string]*plan.Plan),
	}

	m.defaultPlan = m.resolveDefault()
	return m, nil
}

// Dir returns the plans directory
func (m *Manager) Dir() string {
	return m.plansDir
}

// LoadPlan loads a plan by ID. A known extension on name is accepted and
// restricts the lookup to that format.
func (m *Manager) LoadPlan(name string) (*plan.Plan, error) {
	id, exts := splitName(name)
	if err := checkName(id); err != nil {
		return nil, err
	}

	key := cacheKey(id, exts)

	m.mu.RLock()
	if p, exists := m.plans[key]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.plans[key]; exists {
		return p, nil
	}

	for _, ext := range exts {
		path := filepath.Join(m.plansDir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		p, err := plan.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPlan, filepath.Base(path), err)
		}

		m.plans[key] = p
		return p, nil
	}

	return nil, ErrPlanNotFound
}

// ListPlans returns information about all valid plans in the directory,
// sorted by ID
func (m *Manager) ListPlans() ([]*service.PlanInfo, error) {
	entries, err := os.ReadDir(m.plansDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		rank := extRank(ext)
		if rank < 0 {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if prev, exists := files[id]; exists && extRank(strings.ToLower(filepath.Ext(prev))) <= rank {
			continue
		}
		files[id] = entry.Name()
	}

	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var infos []*service.PlanInfo
	for _, id := range ids {
		p, err := m.LoadPlan(id)
		if err != nil {
			// Skip invalid plans
			continue
		}

		infos = append(infos, &service.PlanInfo{
			Filename:    files[id],
			PlanID:      id,
			Name:        p.Name,
			Description: p.Description,
			Terrain:     p.Terrain,
			Rovers:      len(p.Rovers),
		})
	}

	return infos, nil
}

// GetDefault returns the default plan
func (m *Manager) GetDefault() *plan.Plan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPlan
}

// SetDefault sets the default plan by ID
func (m *Manager) SetDefault(name string) error {
	p, err := m.LoadPlan(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPlan = p
	return nil
}

// RefreshCache drops all cached plans and re-resolves the default plan
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.plans = make(map[string]*plan.Plan)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultPlan = def
	m.mu.Unlock()
}

// SavePlan validates p and writes it to the directory as YAML
func (m *Manager) SavePlan(name string, p *plan.Plan) error {
	id, _ := splitName(name)
	if err := checkName(id); err != nil {
		return err
	}

	if p != nil && p.Name == "" {
		p.Name = id
	}
	if err := plan.Validate(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	data, err := plan.Encode(p, ".yaml")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A saved plan replaces every other format with the same ID
	for _, ext := range plan.Extensions {
		if ext == ".yaml" {
			continue
		}
		path := filepath.Join(m.plansDir, id+ext)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace plan file: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(m.plansDir, id+".yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}

	for _, ext := range plan.Extensions {
		delete(m.plans, id+ext)
	}
	m.plans[id] = p
	return nil
}

// resolveDefault picks classic, then the first valid plan, then the
// built-in mission
func (m *Manager) resolveDefault() *plan.Plan {
	if p, err := m.LoadPlan(defaultPlanName); err == nil {
		return p
	}

	infos, err := m.ListPlans()
	if err == nil && len(infos) > 0 {
		if p, err := m.LoadPlan(infos[0].PlanID); err == nil {
			return p
		}
	}

	return plan.Classic()
}

// splitName strips a known extension from name and returns the extensions
// to try for it
func splitName(name string) (string, []string) {
	ext := filepath.Ext(name)
	if extRank(strings.ToLower(ext)) >= 0 {
		return strings.TrimSuffix(name, ext), []string{strings.ToLower(ext)}
	}
	return name, plan.Extensions
}

// cacheKey is id for a lookup over every format, and id plus extension when
// the lookup is restricted to one
func cacheKey(id string, exts []string) string {
	if len(exts) == 1 {
		return id + exts[0]
	}
	return id
}

func extRank(ext string) int {
	for i, e := range plan.Extensions {
		if e == ext {
			return i
		}
	}
	return -1
}

func checkName(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, id)
	}
	return nil
}
