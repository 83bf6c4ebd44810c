package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed classification of a material.
type Category string

const (
	CategorySteel      Category = "Steel"
	CategoryConcrete   Category = "Concrete"
	CategoryCladding   Category = "Cladding"
	CategoryInsulation Category = "Insulation"
	CategoryRoofing    Category = "Roofing"
	CategoryHardware   Category = "Hardware"
	CategoryFinishing  Category = "Finishing"
)

// KnownCategories lists every category accepted at write time, in display order.
var KnownCategories = []Category{
	CategorySteel,
	CategoryConcrete,
	CategoryCladding,
	CategoryInsulation,
	CategoryRoofing,
	CategoryHardware,
	CategoryFinishing,
}

// ParseCategory resolves a case-insensitive name to a known category.
func ParseCategory(value string) (Category, bool) {
	normalized := strings.TrimSpace(value)
	for _, c := range KnownCategories {
		if strings.EqualFold(string(c), normalized) {
			return c, true
		}
	}
	return "", false
}

// Known reports whether c is exactly one of the enumerated categories.
func (c Category) Known() bool {
	for _, known := range KnownCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Material is a catalog record. Instances are owned by the catalog store.
type Material struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name" validate:"required"`
	Category            Category        `json:"category" validate:"required,category"`
	UnitCost            decimal.Decimal `json:"unit_cost" validate:"gt=0"`
	Unit                string          `json:"unit,omitempty"`
	DurabilityScore     int             `json:"durability_score" validate:"gte=0,lte=100"`
	SustainabilityScore int             `json:"sustainability_score" validate:"gte=0,lte=100"`
	PerformanceScore    int             `json:"performance_score" validate:"gte=0,lte=100"`
	Description         string          `json:"description,omitempty"`
	Supplier            string          `json:"supplier,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	LastUpdated         time.Time       `json:"last_updated"`
}

// MaterialPatch carries the fields of an update; nil fields are left unchanged.
type MaterialPatch struct {
	Name                *string          `json:"name,omitempty"`
	Category            *Category        `json:"category,omitempty"`
	UnitCost            *decimal.Decimal `json:"unit_cost,omitempty"`
	Unit                *string          `json:"unit,omitempty"`
	DurabilityScore     *int             `json:"durability_score,omitempty"`
	SustainabilityScore *int             `json:"sustainability_score,omitempty"`
	PerformanceScore    *int             `json:"performance_score,omitempty"`
	Description         *string          `json:"description,omitempty"`
	Supplier            *string          `json:"supplier,omitempty"`
}

// Apply returns a copy of m with the patch merged in.
func (p MaterialPatch) Apply(m Material) Material {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.UnitCost != nil {
		m.UnitCost = *p.UnitCost
	}
	if p.Unit != nil {
		m.Unit = *p.Unit
	}
	if p.DurabilityScore != nil {
		m.DurabilityScore = *p.DurabilityScore
	}
	if p.SustainabilityScore != nil {
		m.SustainabilityScore = *p.SustainabilityScore
	}
	if p.PerformanceScore != nil {
		m.PerformanceScore = *p.PerformanceScore
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Supplier != nil {
		m.Supplier = *p.Supplier
	}
	return m
}

// MaterialQuery selects catalog records. Zero-valued fields match everything;
// set fields are combined with AND.
type MaterialQuery struct {
	// Search is a case-insensitive substring matched against name or category.
	Search string
	// Category is an exact category filter.
	Category Category
}

// Matches reports whether m satisfies the query.
func (q MaterialQuery) Matches(m Material) bool {
	if q.Category != "" && m.Category != q.Category {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Name), term) ||
		strings.Contains(strings.ToLower(string(m.Category)), term)
}
