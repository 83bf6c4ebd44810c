package optimizer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
	"github.com/mamadbah2/buildmat/internal/service/catalog"
	"github.com/mamadbah2/buildmat/internal/service/scoring"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(t, want)), "want %s, got %s", want, got)
}

func insert(t *testing.T, store *catalog.Store, name string, category models.Category, cost string, scores ...int) models.Material {
	t.Helper()
	m := models.Material{Name: name, Category: category, UnitCost: dec(t, cost), Supplier: "Acme"}
	if len(scores) == 3 {
		m.DurabilityScore, m.SustainabilityScore, m.PerformanceScore = scores[0], scores[1], scores[2]
	}
	created, err := store.Insert(context.Background(), models.RoleAdmin, m)
	require.NoError(t, err)
	return created
}

func newOptimizer(store *catalog.Store) *Service {
	return NewService(store, scoring.NewEngine(scoring.DefaultPolicy()), nil)
}

func budget(t *testing.T, lines ...string) models.ProjectBudget {
	t.Helper()
	var b models.ProjectBudget
	for i := 0; i+1 < len(lines); i += 2 {
		b.Categories = append(b.Categories, models.CategorySpend{Category: lines[i], Amount: dec(t, lines[i+1])})
	}
	return b
}

func policyWith(lines map[string]models.SubstitutionLine) models.SubstitutionPolicy {
	p := DefaultPolicy()
	p.Lines = lines
	return p
}

func TestOptimizeSteelSubstitution(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	insert(t, store, "High-Performance Steel Reinforcement", models.CategorySteel, "2450", 95, 78, 92)
	sub := insert(t, store, "Recycled Steel Rebar", models.CategorySteel, "2065.35", 90, 88, 86)
	insert(t, store, "Ready-Mix Concrete", models.CategoryConcrete, "250", 85, 60, 84)

	svc := newOptimizer(store)
	policy := policyWith(map[string]models.SubstitutionLine{
		"Steel":    {ReferenceUnitCost: dec(t, "2450")},
		"Concrete": {ReferenceUnitCost: dec(t, "220")},
	})

	out, err := svc.Optimize(budget(t, "Steel", "350000", "Concrete", "280000", "Labor", "100000"), policy)
	require.NoError(t, err)
	require.Len(t, out.Categories, 3)

	steel := out.Categories[0]
	assert.Equal(t, "Steel", steel.Category)
	assertDecimal(t, "350000", steel.Original)
	assertDecimal(t, "295050", steel.Optimized)
	assertDecimal(t, "54950", steel.Savings)
	assertDecimal(t, "0.157", steel.SavingsFraction)
	require.NotNil(t, steel.Substitute)
	assert.Equal(t, sub.ID, steel.Substitute.MaterialID)
	assertDecimal(t, "2450", steel.Substitute.ReferenceUnitCost)

	for _, row := range out.Categories[1:] {
		assert.Equal(t, row.Original, row.Optimized, row.Category)
		assert.True(t, row.Savings.IsZero(), row.Category)
		assert.Nil(t, row.Substitute, row.Category)
	}

	assertDecimal(t, "730000", out.OriginalTotal)
	assertDecimal(t, "675050", out.OptimizedTotal)
	assertDecimal(t, "54950", out.Savings)
	assertDecimal(t, "0.0753", out.SavingsFraction)
}

func TestOptimizeTotalsAreExactSums(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	for _, m := range catalog.SampleMaterials() {
		_, err := store.Insert(context.Background(), models.RoleAdmin, m)
		require.NoError(t, err)
	}
	svc := newOptimizer(store)
	policy := policyWith(map[string]models.SubstitutionLine{
		"Steel":    {ReferenceUnitCost: dec(t, "2450")},
		"Concrete": {ReferenceUnitCost: dec(t, "220")},
		"Roofing":  {ReferenceUnitCost: dec(t, "85")},
	})

	out, err := svc.Optimize(budget(t, "Steel", "123456.78", "Concrete", "98765.43", "Roofing", "33333.33", "Cladding", "0.01"), policy)
	require.NoError(t, err)

	original, optimized := decimal.Zero, decimal.Zero
	for _, row := range out.Categories {
		original = original.Add(row.Original)
		optimized = optimized.Add(row.Optimized)
		assert.True(t, row.Savings.Equal(row.Original.Sub(row.Optimized)))
		assert.True(t, row.Optimized.LessThanOrEqual(row.Original))
		assert.LessOrEqual(t, row.Optimized.Exponent()*-1, int32(2))
	}
	assert.True(t, original.Equal(out.OriginalTotal))
	assert.True(t, optimized.Equal(out.OptimizedTotal))
	assert.True(t, out.Savings.Equal(out.OriginalTotal.Sub(out.OptimizedTotal)))
	assert.True(t, out.Savings.IsPositive())
}

func TestOptimizeIsIdempotent(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	for _, m := range catalog.SampleMaterials() {
		_, err := store.Insert(context.Background(), models.RoleAdmin, m)
		require.NoError(t, err)
	}
	svc := newOptimizer(store)
	policy := policyWith(map[string]models.SubstitutionLine{"Steel": {ReferenceUnitCost: dec(t, "2450")}})
	b := budget(t, "Steel", "350000", "Concrete", "280000")

	first, err := svc.Optimize(b, policy)
	require.NoError(t, err)
	second, err := svc.Optimize(b, policy)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOptimizeRespectsRetainedFloor(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	insert(t, store, "Budget Rebar", models.CategorySteel, "100", 70, 70, 70)
	svc := newOptimizer(store)

	policy := policyWith(map[string]models.SubstitutionLine{"Steel": {ReferenceUnitCost: dec(t, "2450")}})
	out, err := svc.Optimize(budget(t, "Steel", "100000"), policy)
	require.NoError(t, err)
	assertDecimal(t, "50000", out.Categories[0].Optimized)

	policy.MinRetainedFraction = decimal.Zero
	out, err = svc.Optimize(budget(t, "Steel", "100000"), policy)
	require.NoError(t, err)
	assertDecimal(t, "4081.63", out.Categories[0].Optimized)
}

func TestOptimizePrefersHigherScoreThenCheaper(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	insert(t, store, "Strong Rebar", models.CategorySteel, "2300", 95, 90, 95)
	insert(t, store, "Weak Rebar", models.CategorySteel, "1900", 40, 40, 40)
	svc := newOptimizer(store)

	policy := policyWith(map[string]models.SubstitutionLine{"Steel": {ReferenceUnitCost: dec(t, "2450")}})
	out, err := svc.Optimize(budget(t, "Steel", "1000"), policy)
	require.NoError(t, err)
	require.NotNil(t, out.Categories[0].Substitute)
	assert.Equal(t, "Strong Rebar", out.Categories[0].Substitute.Name)

	store = catalog.NewStore(nil, nil)
	insert(t, store, "Twin A", models.CategorySteel, "2300", 80, 80, 80)
	insert(t, store, "Twin B", models.CategorySteel, "2200", 80, 80, 80)
	out, err = newOptimizer(store).Optimize(budget(t, "Steel", "1000"), policy)
	require.NoError(t, err)
	require.NotNil(t, out.Categories[0].Substitute)
	assert.Equal(t, "Twin B", out.Categories[0].Substitute.Name)
}

func TestOptimizeMinAggregateScore(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	insert(t, store, "Weak Rebar", models.CategorySteel, "1900", 40, 40, 40)
	svc := newOptimizer(store)

	policy := policyWith(map[string]models.SubstitutionLine{"Steel": {ReferenceUnitCost: dec(t, "2450")}})
	policy.MinAggregateScore = 90
	out, err := svc.Optimize(budget(t, "Steel", "1000"), policy)
	require.NoError(t, err)
	assert.Nil(t, out.Categories[0].Substitute)
	assertDecimal(t, "1000", out.Categories[0].Optimized)
}

func TestOptimizeReferenceMaterial(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	ref := insert(t, store, "Reference Rebar", models.CategorySteel, "2000", 90, 80, 90)
	cheaper := insert(t, store, "Cheaper Rebar", models.CategorySteel, "1500", 85, 80, 85)
	svc := newOptimizer(store)

	policy := policyWith(map[string]models.SubstitutionLine{"Reinforcement": {ReferenceMaterialID: ref.ID}})
	out, err := svc.Optimize(budget(t, "Reinforcement", "40000"), policy)
	require.NoError(t, err)
	require.NotNil(t, out.Categories[0].Substitute)
	assert.Equal(t, cheaper.ID, out.Categories[0].Substitute.MaterialID)
	assertDecimal(t, "30000", out.Categories[0].Optimized)

	policy = policyWith(map[string]models.SubstitutionLine{"Steel": {ReferenceMaterialID: "missing"}})
	out, err = svc.Optimize(budget(t, "Steel", "40000"), policy)
	require.NoError(t, err)
	assert.Nil(t, out.Categories[0].Substitute)
	assertDecimal(t, "40000", out.Categories[0].Optimized)
}

func TestOptimizeZeroAndEmpty(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	insert(t, store, "Cheap Rebar", models.CategorySteel, "1000", 80, 80, 80)
	svc := newOptimizer(store)
	policy := policyWith(map[string]models.SubstitutionLine{"Steel": {ReferenceUnitCost: dec(t, "2450")}})

	out, err := svc.Optimize(budget(t, "Steel", "0"), policy)
	require.NoError(t, err)
	assert.True(t, out.Categories[0].Savings.IsZero())
	assert.True(t, out.Categories[0].SavingsFraction.IsZero())
	assert.True(t, out.SavingsFraction.IsZero())

	out, err = svc.Optimize(models.ProjectBudget{}, policy)
	require.NoError(t, err)
	assert.Empty(t, out.Categories)
	assert.True(t, out.OriginalTotal.IsZero())
}

func TestOptimizeValidation(t *testing.T) {
	svc := newOptimizer(catalog.NewStore(nil, nil))

	tests := []struct {
		name   string
		budget models.ProjectBudget
		mutate func(*models.SubstitutionPolicy)
	}{
		{name: "negative amount", budget: budget(t, "Steel", "-1")},
		{name: "duplicate line", budget: budget(t, "Steel", "1", " Steel ", "2")},
		{name: "empty line name", budget: budget(t, "  ", "1")},
		{name: "fraction above one", budget: budget(t, "Steel", "1"), mutate: func(p *models.SubstitutionPolicy) {
			p.MinRetainedFraction = decimal.NewFromFloat(1.5)
		}},
		{name: "negative fraction", budget: budget(t, "Steel", "1"), mutate: func(p *models.SubstitutionPolicy) {
			p.MinRetainedFraction = decimal.NewFromFloat(-0.1)
		}},
		{name: "negative precision", budget: budget(t, "Steel", "1"), mutate: func(p *models.SubstitutionPolicy) {
			p.Precision = -1
		}},
		{name: "score out of range", budget: budget(t, "Steel", "1"), mutate: func(p *models.SubstitutionPolicy) {
			p.MinAggregateScore = 101
		}},
		{name: "colliding substitution lines", budget: budget(t, "Steel", "350000"), mutate: func(p *models.SubstitutionPolicy) {
			p.Lines = map[string]models.SubstitutionLine{
				"Steel":  {ReferenceUnitCost: decimal.NewFromInt(2450)},
				"Steel ": {ReferenceUnitCost: decimal.NewFromInt(4000)},
			}
		}},
		{name: "lines differing only in case", budget: budget(t, "Steel", "350000"), mutate: func(p *models.SubstitutionPolicy) {
			p.Lines = map[string]models.SubstitutionLine{
				"Steel": {ReferenceUnitCost: decimal.NewFromInt(2450)},
				"STEEL": {ReferenceUnitCost: decimal.NewFromInt(4000)},
			}
		}},
		{name: "bad requirements", budget: budget(t, "Steel", "1"), mutate: func(p *models.SubstitutionPolicy) {
			p.Requirements.Environment = "orbital"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			if tt.mutate != nil {
				tt.mutate(&policy)
			}
			_, err := svc.Optimize(tt.budget, policy)
			assert.True(t, apperrors.HasType(err, apperrors.TypeValidation), "got %v", err)
		})
	}
}

func TestOptimizeMatchesLinesIgnoringCase(t *testing.T) {
	store := catalog.NewStore(nil, nil)
	insert(t, store, "High-Performance Steel Reinforcement", models.CategorySteel, "2450", 95, 78, 92)
	insert(t, store, "Recycled Steel Rebar", models.CategorySteel, "2065.35", 90, 88, 86)
	svc := newOptimizer(store)

	for _, key := range []string{"steel", " STEEL ", "Steel"} {
		t.Run(key, func(t *testing.T) {
			policy := policyWith(map[string]models.SubstitutionLine{key: {ReferenceUnitCost: dec(t, "2450")}})
			out, err := svc.Optimize(budget(t, "Steel", "350000"), policy)
			require.NoError(t, err)
			require.NotNil(t, out.Categories[0].Substitute)
			assertDecimal(t, "295050", out.Categories[0].Optimized)
		})
	}
}

func TestReconcileDetectsMismatch(t *testing.T) {
	b := budget(t, "Steel", "100", "Concrete", "50")
	good := models.OptimizedBudget{
		Categories: []models.CategoryOptimization{
			{Category: "Steel", Original: dec(t, "100"), Optimized: dec(t, "80"), Savings: dec(t, "20")},
			{Category: "Concrete", Original: dec(t, "50"), Optimized: dec(t, "50"), Savings: decimal.Zero},
		},
		OriginalTotal:  dec(t, "150"),
		OptimizedTotal: dec(t, "130"),
		Savings:        dec(t, "20"),
	}
	require.NoError(t, reconcile(b, good))

	badTotal := good
	badTotal.OptimizedTotal = dec(t, "131")
	assert.True(t, apperrors.HasType(reconcile(b, badTotal), apperrors.TypeConsistency))

	badRow := good
	badRow.Categories = []models.CategoryOptimization{good.Categories[0], {Category: "Concrete", Original: dec(t, "50"), Optimized: dec(t, "60"), Savings: dec(t, "-10")}}
	assert.True(t, apperrors.HasType(reconcile(b, badRow), apperrors.TypeConsistency))

	missing := good
	missing.Categories = good.Categories[:1]
	assert.True(t, apperrors.HasType(reconcile(b, missing), apperrors.TypeConsistency))
}
