package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus tracks where a construction project is in its lifecycle.
type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "planning"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
)

// StatusForProgress derives the status from a completion percentage.
func StatusForProgress(progress int) ProjectStatus {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress > 0:
		return StatusInProgress
	default:
		return StatusPlanning
	}
}

// Project is a tracked construction project.
type Project struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Type          ProjectType         `json:"type"`
	Status        ProjectStatus       `json:"status"`
	Progress      int                 `json:"progress"`
	Budget        ProjectBudget       `json:"budget"`
	Spent         decimal.Decimal     `json:"spent"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	MaterialCount int                 `json:"material_count"`
	TeamSize      int                 `json:"team_size"`
	Requirements  ProjectRequirements `json:"requirements"`
	CreatedAt     time.Time           `json:"created_at"`
	LastUpdated   time.Time           `json:"last_updated"`
}

// Utilization returns spent / total budget, rounded to four places. A zero
// budget reports zero.
func (p Project) Utilization() decimal.Decimal {
	total := p.Budget.Total()
	if !total.IsPositive() {
		return decimal.Zero
	}
	return p.Spent.DivRound(total, 4)
}

// ProgressUpdate records work done on a project.
type ProgressUpdate struct {
	Progress int             `json:"progress"`
	Spent    decimal.Decimal `json:"spent"`
}
