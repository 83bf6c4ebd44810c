package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/buildmat/internal/domain/models"
)

// Money is stored as Decimal128 so amounts survive the round trip exactly.

type materialDocument struct {
	ID                  string               `bson:"_id"`
	Name                string               `bson:"name"`
	Category            string               `bson:"category"`
	UnitCost            primitive.Decimal128 `bson:"unit_cost"`
	Unit                string               `bson:"unit,omitempty"`
	DurabilityScore     int                  `bson:"durability_score"`
	SustainabilityScore int                  `bson:"sustainability_score"`
	PerformanceScore    int                  `bson:"performance_score"`
	Description         string               `bson:"description,omitempty"`
	Supplier            string               `bson:"supplier,omitempty"`
	CreatedAt           time.Time            `bson:"created_at"`
	LastUpdated         time.Time            `bson:"last_updated"`
}

type budgetLineDocument struct {
	Category string               `bson:"category"`
	Amount   primitive.Decimal128 `bson:"amount"`
}

type requirementsDocument struct {
	ProjectType      string `bson:"project_type,omitempty"`
	BudgetBand       string `bson:"budget_band,omitempty"`
	DurabilityTarget string `bson:"durability_target,omitempty"`
	Environment      string `bson:"environment,omitempty"`
}

type projectDocument struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	Type          string               `bson:"type"`
	Status        string               `bson:"status"`
	Progress      int                  `bson:"progress"`
	Budget        []budgetLineDocument `bson:"budget"`
	Spent         primitive.Decimal128 `bson:"spent"`
	StartDate     time.Time            `bson:"start_date"`
	EndDate       time.Time            `bson:"end_date"`
	MaterialCount int                  `bson:"material_count"`
	TeamSize      int                  `bson:"team_size"`
	Requirements  requirementsDocument `bson:"requirements"`
	CreatedAt     time.Time            `bson:"created_at"`
	LastUpdated   time.Time            `bson:"last_updated"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return out, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("convert decimal128 %s: %w", d, err)
	}
	return out, nil
}

func newMaterialDocument(m models.Material) (materialDocument, error) {
	cost, err := toDecimal128(m.UnitCost)
	if err != nil {
		return materialDocument{}, err
	}
	return materialDocument{
		ID:                  m.ID,
		Name:                m.Name,
		Category:            string(m.Category),
		UnitCost:            cost,
		Unit:                m.Unit,
		DurabilityScore:     m.DurabilityScore,
		SustainabilityScore: m.SustainabilityScore,
		PerformanceScore:    m.PerformanceScore,
		Description:         m.Description,
		Supplier:            m.Supplier,
		CreatedAt:           m.CreatedAt,
		LastUpdated:         m.LastUpdated,
	}, nil
}

func (d materialDocument) model() (models.Material, error) {
	cost, err := fromDecimal128(d.UnitCost)
	if err != nil {
		return models.Material{}, fmt.Errorf("material %s: %w", d.ID, err)
	}
	return models.Material{
		ID:                  d.ID,
		Name:                d.Name,
		Category:            models.Category(d.Category),
		UnitCost:            cost,
		Unit:                d.Unit,
		DurabilityScore:     d.DurabilityScore,
		SustainabilityScore: d.SustainabilityScore,
		PerformanceScore:    d.PerformanceScore,
		Description:         d.Description,
		Supplier:            d.Supplier,
		CreatedAt:           d.CreatedAt.UTC(),
		LastUpdated:         d.LastUpdated.UTC(),
	}, nil
}

func newProjectDocument(p models.Project) (projectDocument, error) {
	spent, err := toDecimal128(p.Spent)
	if err != nil {
		return projectDocument{}, err
	}
	lines := make([]budgetLineDocument, 0, len(p.Budget.Categories))
	for _, line := range p.Budget.Categories {
		amount, err := toDecimal128(line.Amount)
		if err != nil {
			return projectDocument{}, err
		}
		lines = append(lines, budgetLineDocument{Category: line.Category, Amount: amount})
	}
	return projectDocument{
		ID:            p.ID,
		Name:          p.Name,
		Type:          string(p.Type),
		Status:        string(p.Status),
		Progress:      p.Progress,
		Budget:        lines,
		Spent:         spent,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		MaterialCount: p.MaterialCount,
		TeamSize:      p.TeamSize,
		Requirements: requirementsDocument{
			ProjectType:      string(p.Requirements.ProjectType),
			BudgetBand:       string(p.Requirements.BudgetBand),
			DurabilityTarget: string(p.Requirements.DurabilityTarget),
			Environment:      string(p.Requirements.Environment),
		},
		CreatedAt:   p.CreatedAt,
		LastUpdated: p.LastUpdated,
	}, nil
}

func (d projectDocument) model() (models.Project, error) {
	spent, err := fromDecimal128(d.Spent)
	if err != nil {
		return models.Project{}, fmt.Errorf("project %s: %w", d.ID, err)
	}
	var budget models.ProjectBudget
	for _, line := range d.Budget {
		amount, err := fromDecimal128(line.Amount)
		if err != nil {
			return models.Project{}, fmt.Errorf("project %s: %w", d.ID, err)
		}
		budget.Categories = append(budget.Categories, models.CategorySpend{Category: line.Category, Amount: amount})
	}
	return models.Project{
		ID:            d.ID,
		Name:          d.Name,
		Type:          models.ProjectType(d.Type),
		Status:        models.ProjectStatus(d.Status),
		Progress:      d.Progress,
		Budget:        budget,
		Spent:         spent,
		StartDate:     d.StartDate.UTC(),
		EndDate:       d.EndDate.UTC(),
		MaterialCount: d.MaterialCount,
		TeamSize:      d.TeamSize,
		Requirements: models.ProjectRequirements{
			ProjectType:      models.ProjectType(d.Requirements.ProjectType),
			BudgetBand:       models.BudgetBand(d.Requirements.BudgetBand),
			DurabilityTarget: models.DurabilityTarget(d.Requirements.DurabilityTarget),
			Environment:      models.Environment(d.Requirements.Environment),
		},
		CreatedAt:   d.CreatedAt.UTC(),
		LastUpdated: d.LastUpdated.UTC(),
	}, nil
}
