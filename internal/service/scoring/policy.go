package scoring

import "github.com/mamadbah2/buildmat/internal/domain/models"

// Weights is the relative importance of each criterion. A usable weight
// vector sums to 1.
type Weights struct {
	Durability     float64 `json:"durability"`
	Sustainability float64 `json:"sustainability"`
	CostFit        float64 `json:"cost_fit"`
	Performance    float64 `json:"performance"`
}

// Sum returns the total of all components.
func (w Weights) Sum() float64 {
	return w.Durability + w.Sustainability + w.CostFit + w.Performance
}

func (w Weights) add(o Weights) Weights {
	return Weights{
		Durability:     w.Durability + o.Durability,
		Sustainability: w.Sustainability + o.Sustainability,
		CostFit:        w.CostFit + o.CostFit,
		Performance:    w.Performance + o.Performance,
	}
}

// CostRange is the per-unit price range a budget band expects for a category.
type CostRange struct {
	Floor   float64 `json:"floor"`
	Ceiling float64 `json:"ceiling"`
}

// Policy holds every tunable constant of the engine.
type Policy struct {
	// Base is the weight vector before any requirement adjustment.
	Base Weights
	// Durability, Budget, Environment and ProjectType add to Base before the
	// result is renormalized. Missing keys add nothing.
	Durability  map[models.DurabilityTarget]Weights
	Budget      map[models.BudgetBand]Weights
	Environment map[models.Environment]Weights
	ProjectType map[models.ProjectType]Weights
	// MinWeight floors every component after adjustment.
	MinWeight float64

	// CostRanges maps a category and budget band to the expected price range.
	CostRanges map[models.Category]map[models.BudgetBand]CostRange
	// UnderpriceCutoff is the fraction of the floor below which cost-fit is
	// pinned to UnderpriceScore.
	UnderpriceCutoff float64
	UnderpriceScore  float64
	// OverpriceDecay is k in 1/(1+k*excess) for prices above the ceiling.
	OverpriceDecay float64
}

// DefaultPolicy returns the built-in placeholder policy.
func DefaultPolicy() Policy {
	return Policy{
		Base: Weights{Durability: 0.30, Sustainability: 0.20, CostFit: 0.25, Performance: 0.25},
		Durability: map[models.DurabilityTarget]Weights{
			models.DurabilityEnhanced: {Durability: 0.10},
			models.DurabilityPremium:  {Durability: 0.25, CostFit: -0.05},
		},
		Budget: map[models.BudgetBand]Weights{
			models.BudgetLow:     {CostFit: 0.20},
			models.BudgetMedium:  {CostFit: 0.10},
			models.BudgetPremium: {CostFit: -0.10, Performance: 0.05},
		},
		Environment: map[models.Environment]Weights{
			models.EnvironmentCoastal:    {Durability: 0.05},
			models.EnvironmentIndustrial: {Durability: 0.05, Performance: 0.05},
			models.EnvironmentRural:      {Sustainability: 0.05},
		},
		ProjectType: map[models.ProjectType]Weights{
			models.ProjectResidential:    {Sustainability: 0.05},
			models.ProjectInfrastructure: {Performance: 0.05, Durability: 0.05},
			models.ProjectIndustrial:     {Performance: 0.05},
		},
		MinWeight: 0.05,

		CostRanges: map[models.Category]map[models.BudgetBand]CostRange{
			models.CategorySteel: {
				models.BudgetLow:     {Floor: 1500, Ceiling: 2000},
				models.BudgetMedium:  {Floor: 2000, Ceiling: 2600},
				models.BudgetHigh:    {Floor: 2600, Ceiling: 3200},
				models.BudgetPremium: {Floor: 3200, Ceiling: 4500},
			},
			models.CategoryConcrete: {
				models.BudgetLow:     {Floor: 100, Ceiling: 160},
				models.BudgetMedium:  {Floor: 160, Ceiling: 230},
				models.BudgetHigh:    {Floor: 230, Ceiling: 300},
				models.BudgetPremium: {Floor: 300, Ceiling: 450},
			},
			models.CategoryCladding: {
				models.BudgetLow:     {Floor: 40, Ceiling: 80},
				models.BudgetMedium:  {Floor: 80, Ceiling: 130},
				models.BudgetHigh:    {Floor: 130, Ceiling: 200},
				models.BudgetPremium: {Floor: 200, Ceiling: 350},
			},
			models.CategoryInsulation: {
				models.BudgetLow:     {Floor: 10, Ceiling: 25},
				models.BudgetMedium:  {Floor: 25, Ceiling: 45},
				models.BudgetHigh:    {Floor: 45, Ceiling: 70},
				models.BudgetPremium: {Floor: 70, Ceiling: 120},
			},
			models.CategoryRoofing: {
				models.BudgetLow:     {Floor: 30, Ceiling: 60},
				models.BudgetMedium:  {Floor: 60, Ceiling: 90},
				models.BudgetHigh:    {Floor: 90, Ceiling: 140},
				models.BudgetPremium: {Floor: 140, Ceiling: 220},
			},
			models.CategoryHardware: {
				models.BudgetLow:     {Floor: 5, Ceiling: 20},
				models.BudgetMedium:  {Floor: 20, Ceiling: 45},
				models.BudgetHigh:    {Floor: 45, Ceiling: 90},
				models.BudgetPremium: {Floor: 90, Ceiling: 200},
			},
			models.CategoryFinishing: {
				models.BudgetLow:     {Floor: 15, Ceiling: 35},
				models.BudgetMedium:  {Floor: 35, Ceiling: 60},
				models.BudgetHigh:    {Floor: 60, Ceiling: 100},
				models.BudgetPremium: {Floor: 100, Ceiling: 180},
			},
		},
		UnderpriceCutoff: 0.5,
		UnderpriceScore:  0.7,
		OverpriceDecay:   4,
	}
}
