package optimizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
)

const maxPrecision = 8

func normalizePolicy(policy models.SubstitutionPolicy) (models.SubstitutionPolicy, error) {
	if policy.MinRetainedFraction.IsNegative() || policy.MinRetainedFraction.GreaterThan(decimal.NewFromInt(1)) {
		return policy, apperrors.Validation("min retained fraction must be within [0,1], got %s", policy.MinRetainedFraction)
	}
	if policy.Precision < 0 || policy.Precision > maxPrecision {
		return policy, apperrors.Validation("precision must be within [0,%d], got %d", maxPrecision, policy.Precision)
	}
	if policy.MinAggregateScore < 0 || policy.MinAggregateScore > 100 {
		return policy, apperrors.Validation("min aggregate score must be within [0,100], got %d", policy.MinAggregateScore)
	}

	policy.Requirements = policy.Requirements.Normalize()
	if err := policy.Requirements.Validate(); err != nil {
		return policy, apperrors.Validation("invalid requirements: %v", err)
	}

	lines := make(map[string]models.SubstitutionLine, len(policy.Lines))
	for name, line := range policy.Lines {
		key := lineKey(name)
		if line.ReferenceUnitCost.IsNegative() {
			return policy, apperrors.Validation("reference unit cost for %q must not be negative", strings.TrimSpace(name))
		}
		if _, dup := lines[key]; dup {
			return policy, apperrors.Validation("substitution line %q appears more than once", strings.TrimSpace(name))
		}
		lines[key] = line
	}
	policy.Lines = lines
	return policy, nil
}

// lineKey folds a budget line name so policy rules match it regardless of case or padding.
func lineKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validateBudget(budget models.ProjectBudget) error {
	seen := make(map[string]struct{}, len(budget.Categories))
	for i, line := range budget.Categories {
		name := strings.TrimSpace(line.Category)
		if name == "" {
			return apperrors.Validation("budget line %d has no category", i)
		}
		if line.Amount.IsNegative() {
			return apperrors.Validation("budget line %q has negative amount %s", name, line.Amount).
				WithContext("category", name)
		}
		if _, dup := seen[name]; dup {
			return apperrors.Validation("budget line %q appears more than once", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// reconcile re-derives every total from the rows and fails on any mismatch.
func reconcile(budget models.ProjectBudget, out models.OptimizedBudget) error {
	if len(out.Categories) != len(budget.Categories) {
		return apperrors.Consistency("optimized budget has %d rows for %d lines", len(out.Categories), len(budget.Categories))
	}

	original, optimized := decimal.Zero, decimal.Zero
	for i, row := range out.Categories {
		if !row.Original.Equal(budget.Categories[i].Amount) {
			return apperrors.Consistency("row %q original %s differs from budget amount %s", row.Category, row.Original, budget.Categories[i].Amount)
		}
		if row.Optimized.IsNegative() || row.Optimized.GreaterThan(row.Original) {
			return apperrors.Consistency("row %q optimized %s outside [0, %s]", row.Category, row.Optimized, row.Original)
		}
		if !row.Savings.Equal(row.Original.Sub(row.Optimized)) {
			return apperrors.Consistency("row %q savings %s != %s - %s", row.Category, row.Savings, row.Original, row.Optimized)
		}
		original = original.Add(row.Original)
		optimized = optimized.Add(row.Optimized)
	}

	if !original.Equal(budget.Total()) || !original.Equal(out.OriginalTotal) {
		return apperrors.Consistency("original total %s does not match sum of lines %s", out.OriginalTotal, original)
	}
	if !optimized.Equal(out.OptimizedTotal) {
		return apperrors.Consistency("optimized total %s does not match sum of rows %s", out.OptimizedTotal, optimized)
	}
	if !out.Savings.Equal(out.OriginalTotal.Sub(out.OptimizedTotal)) {
		return apperrors.Consistency("savings %s != %s - %s", out.Savings, out.OriginalTotal, out.OptimizedTotal)
	}
	return nil
}
