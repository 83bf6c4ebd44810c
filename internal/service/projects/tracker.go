package projects

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
)

// Repository persists projects. Save is called before the tracker commits.
type Repository interface {
	SaveProject(ctx context.Context, p models.Project) error
}

// Optimizer runs the budget optimizer. *optimizer.Service satisfies it.
type Optimizer interface {
	Optimize(budget models.ProjectBudget, policy models.SubstitutionPolicy) (models.OptimizedBudget, error)
}

// Tracker keeps the construction projects known to the engine.
type Tracker struct {
	mu       sync.RWMutex
	projects map[string]models.Project

	repo      Repository
	optimizer Optimizer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewTracker builds an empty tracker. repo may be nil.
func NewTracker(repo Repository, optimizer Optimizer, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		projects:  make(map[string]models.Project),
		repo:      repo,
		optimizer: optimizer,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Load replaces the tracked projects with already persisted ones.
func (t *Tracker) Load(projects []models.Project) error {
	loaded := make(map[string]models.Project, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			return apperrors.Validation("loaded project %q has no id", p.Name)
		}
		if _, dup := loaded[p.ID]; dup {
			return apperrors.Validation("duplicate project id %q", p.ID)
		}
		loaded[p.ID] = p
	}

	t.mu.Lock()
	t.projects = loaded
	t.mu.Unlock()
	return nil
}

// Create registers a new project.
func (t *Tracker) Create(ctx context.Context, role models.Role, p models.Project) (models.Project, error) {
	if !role.CanMutate() {
		return models.Project{}, apperrors.Permission(string(role), "create projects")
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Type = models.ProjectType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	p.Requirements = p.Requirements.Normalize()
	if p.Requirements.ProjectType == "" {
		p.Requirements.ProjectType = p.Type
	}
	if err := validateProject(p); err != nil {
		return models.Project{}, err
	}

	ts := t.timestamp()
	p.ID = t.newID()
	p.Status = models.StatusForProgress(p.Progress)
	p.CreatedAt = ts
	p.LastUpdated = ts

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.save(ctx, p); err != nil {
		return models.Project{}, err
	}
	t.projects[p.ID] = p

	t.logger.Info("project created", zap.String("project_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// Get returns the project with the given id.
func (t *Tracker) Get(id string) (models.Project, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.projects[id]
	if !ok {
		return models.Project{}, apperrors.NotFound("project", id)
	}
	return p, nil
}

// List returns every project ordered by name, then id.
func (t *Tracker) List() []models.Project {
	t.mu.RLock()
	out := make([]models.Project, 0, len(t.projects))
	for _, p := range t.projects {
		out = append(out, p)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.Project) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// RecordProgress updates completion and spend. The status follows progress.
func (t *Tracker) RecordProgress(ctx context.Context, role models.Role, id string, update models.ProgressUpdate) (models.Project, error) {
	if !role.CanMutate() {
		return models.Project{}, apperrors.Permission(string(role), "record project progress")
	}
	if update.Progress < 0 || update.Progress > 100 {
		return models.Project{}, apperrors.Validation("progress must be between 0 and 100, got %d", update.Progress)
	}
	if update.Spent.IsNegative() {
		return models.Project{}, apperrors.Validation("spent must not be negative, got %s", update.Spent)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.projects[id]
	if !ok {
		return models.Project{}, apperrors.NotFound("project", id)
	}
	p.Progress = update.Progress
	p.Spent = update.Spent
	p.Status = models.StatusForProgress(update.Progress)
	p.LastUpdated = t.timestamp()

	if err := t.save(ctx, p); err != nil {
		return models.Project{}, err
	}
	t.projects[id] = p

	t.logger.Info("project progress recorded",
		zap.String("project_id", id),
		zap.Int("progress", p.Progress),
		zap.String("status", string(p.Status)))
	return p, nil
}

// OptimizeProject runs the optimizer over a project's budget. When the
// policy carries no requirements the project's own are used.
func (t *Tracker) OptimizeProject(id string, policy models.SubstitutionPolicy) (models.OptimizedBudget, error) {
	p, err := t.Get(id)
	if err != nil {
		return models.OptimizedBudget{}, err
	}
	if policy.Requirements == (models.ProjectRequirements{}) {
		policy.Requirements = p.Requirements
	}
	return t.optimizer.Optimize(p.Budget, policy)
}

func (t *Tracker) save(ctx context.Context, p models.Project) error {
	if t.repo == nil {
		return nil
	}
	if err := t.repo.SaveProject(ctx, p); err != nil {
		t.logger.Error("failed to persist project", zap.String("project_id", p.ID), zap.Error(err))
		return fmt.Errorf("persist project %s: %w", p.ID, err)
	}
	return nil
}

func (t *Tracker) timestamp() time.Time {
	return t.now().UTC().Truncate(time.Millisecond)
}

func validateProject(p models.Project) error {
	var problems []string
	if p.Name == "" {
		problems = append(problems, "name is required")
	}
	if p.Type == "" || !slices.Contains(models.ProjectTypes, p.Type) {
		problems = append(problems, fmt.Sprintf("unknown project type %q", p.Type))
	}
	if err := p.Requirements.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if p.Progress < 0 || p.Progress > 100 {
		problems = append(problems, "progress must be between 0 and 100")
	}
	if p.Spent.IsNegative() {
		problems = append(problems, "spent must not be negative")
	}
	if p.TeamSize < 0 || p.MaterialCount < 0 {
		problems = append(problems, "counts must not be negative")
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		problems = append(problems, "end_date is before start_date")
	}

	seen := make(map[string]struct{}, len(p.Budget.Categories))
	for _, line := range p.Budget.Categories {
		name := strings.TrimSpace(line.Category)
		if name == "" {
			problems = append(problems, "budget line without category")
			continue
		}
		if line.Amount.IsNegative() {
			problems = append(problems, fmt.Sprintf("budget line %q is negative", name))
		}
		if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Sprintf("budget line %q appears more than once", name))
		}
		seen[name] = struct{}{}
	}

	if len(problems) > 0 {
		return apperrors.Validation("invalid project: %s", strings.Join(problems, "; "))
	}
	return nil
}
