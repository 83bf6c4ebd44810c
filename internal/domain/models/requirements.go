package models

import (
	"fmt"
	"strings"
)

// ProjectType classifies the project a recommendation is made for.
type ProjectType string

const (
	ProjectResidential    ProjectType = "residential"
	ProjectCommercial     ProjectType = "commercial"
	ProjectInfrastructure ProjectType = "infrastructure"
	ProjectIndustrial     ProjectType = "industrial"
)

// BudgetBand is the coarse spend level of a project.
type BudgetBand string

const (
	BudgetLow     BudgetBand = "low"
	BudgetMedium  BudgetBand = "medium"
	BudgetHigh    BudgetBand = "high"
	BudgetPremium BudgetBand = "premium"
)

// DurabilityTarget is the expected service life class.
type DurabilityTarget string

const (
	DurabilityStandard DurabilityTarget = "standard"
	DurabilityEnhanced DurabilityTarget = "enhanced"
	DurabilityPremium  DurabilityTarget = "premium"
)

// Environment is the exposure the material will be installed in.
type Environment string

const (
	EnvironmentUrban      Environment = "urban"
	EnvironmentCoastal    Environment = "coastal"
	EnvironmentIndustrial Environment = "industrial"
	EnvironmentRural      Environment = "rural"
)

var (
	ProjectTypes      = []ProjectType{"", ProjectResidential, ProjectCommercial, ProjectInfrastructure, ProjectIndustrial}
	BudgetBands       = []BudgetBand{"", BudgetLow, BudgetMedium, BudgetHigh, BudgetPremium}
	DurabilityTargets = []DurabilityTarget{"", DurabilityStandard, DurabilityEnhanced, DurabilityPremium}
	Environments      = []Environment{"", EnvironmentUrban, EnvironmentCoastal, EnvironmentIndustrial, EnvironmentRural}
)

// ProjectRequirements are the scoring inputs for a project. Every field may be
// left empty.
type ProjectRequirements struct {
	ProjectType      ProjectType      `json:"project_type,omitempty"`
	BudgetBand       BudgetBand       `json:"budget_band,omitempty"`
	DurabilityTarget DurabilityTarget `json:"durability_target,omitempty"`
	Environment      Environment      `json:"environment,omitempty"`
}

// Normalize lower-cases and trims every field.
func (r ProjectRequirements) Normalize() ProjectRequirements {
	return ProjectRequirements{
		ProjectType:      ProjectType(normalizeEnum(string(r.ProjectType))),
		BudgetBand:       BudgetBand(normalizeEnum(string(r.BudgetBand))),
		DurabilityTarget: DurabilityTarget(normalizeEnum(string(r.DurabilityTarget))),
		Environment:      Environment(normalizeEnum(string(r.Environment))),
	}
}

// Validate returns a descriptive error for the first unknown field value.
func (r ProjectRequirements) Validate() error {
	if !contains(ProjectTypes, r.ProjectType) {
		return fmt.Errorf("unknown project type %q", r.ProjectType)
	}
	if !contains(BudgetBands, r.BudgetBand) {
		return fmt.Errorf("unknown budget band %q", r.BudgetBand)
	}
	if !contains(DurabilityTargets, r.DurabilityTarget) {
		return fmt.Errorf("unknown durability target %q", r.DurabilityTarget)
	}
	if !contains(Environments, r.Environment) {
		return fmt.Errorf("unknown environment %q", r.Environment)
	}
	return nil
}

func normalizeEnum(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
