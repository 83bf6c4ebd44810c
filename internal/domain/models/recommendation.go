package models

// CriterionScores holds the normalized [0,1] sub-scores for one material.
type CriterionScores struct {
	Durability     float64 `json:"durability"`
	Sustainability float64 `json:"sustainability"`
	CostFit        float64 `json:"cost_fit"`
	Performance    float64 `json:"performance"`
}

// Recommendation is one ranked entry of a recommendation result.
type Recommendation struct {
	MaterialID     string          `json:"material_id"`
	Name           string          `json:"name"`
	Category       Category        `json:"category"`
	AggregateScore int             `json:"aggregate_score"`
	Criteria       CriterionScores `json:"criteria"`
	Rank           int             `json:"rank"`
}
