package models

import "github.com/shopspring/decimal"

// CategorySpend is one line of a project budget.
type CategorySpend struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// ProjectBudget is an ordered category-level spend breakdown. Its total is
// always the exact sum of its lines.
type ProjectBudget struct {
	Categories []CategorySpend `json:"categories"`
}

// Total returns the sum of all category amounts.
func (b ProjectBudget) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b.Categories {
		total = total.Add(line.Amount)
	}
	return total
}

// SubstitutionLine tells the optimizer how to price alternatives for one
// budget line.
type SubstitutionLine struct {
	// Category is the catalog category searched for substitutes. When empty
	// the budget line name is parsed as a category.
	Category Category `json:"category,omitempty"`
	// ReferenceUnitCost is the per-unit cost the budget line was priced at.
	ReferenceUnitCost decimal.Decimal `json:"reference_unit_cost"`
	// ReferenceMaterialID, when set, takes the reference cost from that
	// catalog record and excludes it from the candidates.
	ReferenceMaterialID string `json:"reference_material_id,omitempty"`
}

// SubstitutionPolicy configures a budget optimization run.
type SubstitutionPolicy struct {
	// Lines is keyed by budget line name.
	Lines map[string]SubstitutionLine `json:"lines"`
	// MinRetainedFraction floors each optimized amount at this share of the
	// original amount.
	MinRetainedFraction decimal.Decimal `json:"min_retained_fraction"`
	// MinAggregateScore excludes substitutes scoring below it.
	MinAggregateScore int `json:"min_aggregate_score,omitempty"`
	// Requirements rank the eligible substitutes.
	Requirements ProjectRequirements `json:"requirements"`
	// Precision is the number of decimal places optimized amounts are rounded to.
	Precision int32 `json:"precision"`
}

// Substitution describes the material chosen for a budget line.
type Substitution struct {
	MaterialID        string          `json:"material_id"`
	Name              string          `json:"name"`
	Supplier          string          `json:"supplier,omitempty"`
	ReferenceUnitCost decimal.Decimal `json:"reference_unit_cost"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	AggregateScore    int             `json:"aggregate_score"`
}

// CategoryOptimization is one reconciled row of an optimized budget.
type CategoryOptimization struct {
	Category        string          `json:"category"`
	Original        decimal.Decimal `json:"original"`
	Optimized       decimal.Decimal `json:"optimized"`
	Savings         decimal.Decimal `json:"savings"`
	SavingsFraction decimal.Decimal `json:"savings_fraction"`
	Substitute      *Substitution   `json:"substitute,omitempty"`
}

// OptimizedBudget is the result of an optimization run.
type OptimizedBudget struct {
	Categories      []CategoryOptimization `json:"categories"`
	OriginalTotal   decimal.Decimal        `json:"original_total"`
	OptimizedTotal  decimal.Decimal        `json:"optimized_total"`
	Savings         decimal.Decimal        `json:"savings"`
	SavingsFraction decimal.Decimal        `json:"savings_fraction"`
}
