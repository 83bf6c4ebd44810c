package optimizer

import (
	"iter"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	"github.com/mamadbah2/buildmat/internal/service/scoring"
)

const fractionPlaces = 4

// Catalog is the read access the optimizer needs.
type Catalog interface {
	Find(q models.MaterialQuery) iter.Seq[models.Material]
	Get(id string) (models.Material, error)
}

// Scorer ranks substitute candidates. *scoring.Engine satisfies it.
type Scorer interface {
	Score(req models.ProjectRequirements, m models.Material) scoring.Result
}

// DefaultPolicy retains at least half of every line and rounds to cents.
func DefaultPolicy() models.SubstitutionPolicy {
	return models.SubstitutionPolicy{
		Lines:               map[string]models.SubstitutionLine{},
		MinRetainedFraction: decimal.NewFromFloat(0.5),
		Precision:           2,
	}
}

// Service proposes cheaper substitutes per budget line and reconciles the
// resulting breakdown.
type Service struct {
	catalog Catalog
	scorer  Scorer
	logger  *zap.Logger
}

// NewService wires an optimizer.
func NewService(catalog Catalog, scorer Scorer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, scorer: scorer, logger: logger}
}

// Optimize computes the optimized breakdown of budget under policy. Lines
// without an eligible substitute are returned unchanged with zero savings.
func (s *Service) Optimize(budget models.ProjectBudget, policy models.SubstitutionPolicy) (models.OptimizedBudget, error) {
	policy, err := normalizePolicy(policy)
	if err != nil {
		return models.OptimizedBudget{}, err
	}
	if err := validateBudget(budget); err != nil {
		return models.OptimizedBudget{}, err
	}

	out := models.OptimizedBudget{
		Categories: make([]models.CategoryOptimization, 0, len(budget.Categories)),
	}
	for _, line := range budget.Categories {
		row := s.optimizeLine(strings.TrimSpace(line.Category), line.Amount, policy)
		out.Categories = append(out.Categories, row)
		out.OriginalTotal = out.OriginalTotal.Add(row.Original)
		out.OptimizedTotal = out.OptimizedTotal.Add(row.Optimized)
	}

	out.Savings = out.OriginalTotal.Sub(out.OptimizedTotal)
	out.SavingsFraction = fraction(out.Savings, out.OriginalTotal)

	if err := reconcile(budget, out); err != nil {
		s.logger.Error("optimized budget failed reconciliation", zap.Error(err))
		return models.OptimizedBudget{}, err
	}

	s.logger.Debug("budget optimized",
		zap.Int("lines", len(out.Categories)),
		zap.String("original_total", out.OriginalTotal.String()),
		zap.String("optimized_total", out.OptimizedTotal.String()))
	return out, nil
}

func (s *Service) optimizeLine(name string, amount decimal.Decimal, policy models.SubstitutionPolicy) models.CategoryOptimization {
	row := models.CategoryOptimization{
		Category:        name,
		Original:        amount,
		Optimized:       amount,
		Savings:         decimal.Zero,
		SavingsFraction: decimal.Zero,
	}
	if amount.IsZero() {
		return row
	}

	rule, ok := policy.Lines[lineKey(name)]
	if !ok {
		return row
	}

	reference, category, exclude, ok := s.resolveReference(name, rule)
	if !ok {
		return row
	}

	substitute, found := s.bestSubstitute(category, reference, exclude, policy)
	if !found {
		s.logger.Debug("no substitute available", zap.String("line", name), zap.String("category", string(category)))
		return row
	}

	optimized := amount.Mul(substitute.UnitCost).Div(reference).Round(policy.Precision)
	floor := amount.Mul(policy.MinRetainedFraction).Round(policy.Precision)
	optimized = decimal.Max(optimized, floor)
	optimized = decimal.Min(optimized, amount)
	if optimized.Equal(amount) {
		return row
	}

	row.Optimized = optimized
	row.Savings = amount.Sub(optimized)
	row.SavingsFraction = fraction(row.Savings, amount)
	row.Substitute = &substitute
	return row
}

// resolveReference returns the reference unit cost, the catalog category to
// search and the material id to exclude for a line.
func (s *Service) resolveReference(name string, rule models.SubstitutionLine) (decimal.Decimal, models.Category, string, bool) {
	reference := rule.ReferenceUnitCost
	category := rule.Category

	if rule.ReferenceMaterialID != "" {
		current, err := s.catalog.Get(rule.ReferenceMaterialID)
		if err != nil {
			s.logger.Warn("reference material unavailable",
				zap.String("line", name),
				zap.String("material_id", rule.ReferenceMaterialID),
				zap.Error(err))
			return decimal.Zero, "", "", false
		}
		reference = current.UnitCost
		if category == "" {
			category = current.Category
		}
	}

	if category == "" {
		category = models.Category(name)
	}
	canonical, ok := models.ParseCategory(string(category))
	if !ok || !reference.IsPositive() {
		return decimal.Zero, "", "", false
	}
	return reference, canonical, rule.ReferenceMaterialID, true
}

// bestSubstitute picks the highest scoring material cheaper than reference.
// Ties prefer the cheaper material, then the lower id.
func (s *Service) bestSubstitute(category models.Category, reference decimal.Decimal, exclude string, policy models.SubstitutionPolicy) (models.Substitution, bool) {
	var (
		best      models.Material
		bestScore = -1
	)
	for m := range s.catalog.Find(models.MaterialQuery{Category: category}) {
		if m.ID == exclude || !m.UnitCost.LessThan(reference) {
			continue
		}
		score := s.scorer.Score(policy.Requirements, m).Aggregate
		if score < policy.MinAggregateScore {
			continue
		}
		if better(m, score, best, bestScore) {
			best, bestScore = m, score
		}
	}
	if bestScore < 0 {
		return models.Substitution{}, false
	}
	return models.Substitution{
		MaterialID:        best.ID,
		Name:              best.Name,
		Supplier:          best.Supplier,
		ReferenceUnitCost: reference,
		UnitCost:          best.UnitCost,
		AggregateScore:    bestScore,
	}, true
}

func better(m models.Material, score int, best models.Material, bestScore int) bool {
	if score != bestScore {
		return score > bestScore
	}
	if c := m.UnitCost.Cmp(best.UnitCost); c != 0 {
		return c < 0
	}
	return m.ID < best.ID
}

func fraction(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.DivRound(whole, fractionPlaces)
}
