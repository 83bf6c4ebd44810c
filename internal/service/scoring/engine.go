// Package scoring maps project requirements and a candidate material to
// normalized per-criterion scores and an aggregate confidence in [0,100].
// Every function here is pure: no clock, no randomness, no shared state.
package scoring

import (
	"math"

	"github.com/mamadbah2/buildmat/internal/domain/models"
)

// Result is the outcome of scoring one material.
type Result struct {
	Criteria  models.CriterionScores `json:"criteria"`
	Weights   Weights                `json:"weights"`
	Aggregate int                    `json:"aggregate"`
}

// Engine scores materials under a fixed policy. It is safe for concurrent use.
type Engine struct {
	policy Policy
}

// NewEngine builds an engine for the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

var defaultEngine = NewEngine(DefaultPolicy())

// Score scores m against req using DefaultPolicy.
func Score(req models.ProjectRequirements, m models.Material) Result {
	return defaultEngine.Score(req, m)
}

// Score computes the sub-scores and aggregate confidence of m for req.
func (e *Engine) Score(req models.ProjectRequirements, m models.Material) Result {
	criteria := models.CriterionScores{
		Durability:     unit(m.DurabilityScore),
		Sustainability: unit(m.SustainabilityScore),
		CostFit:        e.CostFit(m.Category, req.BudgetBand, m.UnitCost.InexactFloat64()),
		Performance:    unit(m.PerformanceScore),
	}
	weights := e.WeightsFor(req)

	weighted := weights.Durability*criteria.Durability +
		weights.Sustainability*criteria.Sustainability +
		weights.CostFit*criteria.CostFit +
		weights.Performance*criteria.Performance

	return Result{
		Criteria:  criteria,
		Weights:   weights,
		Aggregate: clampInt(int(math.Round(weighted*100)), 0, 100),
	}
}

// WeightsFor derives the weight vector for req. The result always sums to 1
// within floating point error.
func (e *Engine) WeightsFor(req models.ProjectRequirements) Weights {
	p := e.policy
	w := p.Base.
		add(p.Durability[req.DurabilityTarget]).
		add(p.Budget[req.BudgetBand]).
		add(p.Environment[req.Environment]).
		add(p.ProjectType[req.ProjectType])

	w = Weights{
		Durability:     math.Max(w.Durability, p.MinWeight),
		Sustainability: math.Max(w.Sustainability, p.MinWeight),
		CostFit:        math.Max(w.CostFit, p.MinWeight),
		Performance:    math.Max(w.Performance, p.MinWeight),
	}

	sum := w.Sum()
	if sum <= 0 {
		return Weights{Durability: 0.25, Sustainability: 0.25, CostFit: 0.25, Performance: 0.25}
	}
	return Weights{
		Durability:     w.Durability / sum,
		Sustainability: w.Sustainability / sum,
		CostFit:        w.CostFit / sum,
		Performance:    w.Performance / sum,
	}
}

// CostFit maps a unit cost into the band's range for the category:
//
//   - inside [floor, ceiling]: 1
//   - below the floor: linear from UnderpriceScore at UnderpriceCutoff*floor up to 1 at the floor,
//     pinned to UnderpriceScore further down
//   - above the ceiling: 1/(1+k*excess), excess = (cost-ceiling)/ceiling
//
// An unset band, or a category without a configured range, is neutral (1).
func (e *Engine) CostFit(category models.Category, band models.BudgetBand, unitCost float64) float64 {
	if band == "" {
		return 1
	}
	r, ok := e.policy.CostRanges[category][band]
	if !ok || r.Ceiling <= 0 {
		return 1
	}

	p := e.policy
	switch {
	case unitCost > r.Ceiling:
		excess := (unitCost - r.Ceiling) / r.Ceiling
		return 1 / (1 + p.OverpriceDecay*excess)
	case unitCost >= r.Floor:
		return 1
	case r.Floor <= 0:
		return 1
	}

	ratio := unitCost / r.Floor
	if ratio <= p.UnderpriceCutoff || p.UnderpriceCutoff >= 1 {
		return p.UnderpriceScore
	}
	span := (ratio - p.UnderpriceCutoff) / (1 - p.UnderpriceCutoff)
	return p.UnderpriceScore + (1-p.UnderpriceScore)*span
}

func unit(score int) float64 {
	return float64(clampInt(score, 0, 100)) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
