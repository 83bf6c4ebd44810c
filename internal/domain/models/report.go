package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryDigest summarises the catalog entries of one category.
type CategoryDigest struct {
	Category        Category        `json:"category"`
	Count           int             `json:"count"`
	CheapestID      string          `json:"cheapest_id"`
	CheapestName    string          `json:"cheapest_name"`
	CheapestCost    decimal.Decimal `json:"cheapest_cost"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}

// CatalogDigest is a point-in-time summary of the whole catalog.
type CatalogDigest struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Materials   int              `json:"materials"`
	Categories  []CategoryDigest `json:"categories"`
}
