package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
)

// SampleMaterials is the demonstration catalog used to bootstrap an empty store.
func SampleMaterials() []models.Material {
	return []models.Material{
		{
			Name:                "High-Performance Steel Reinforcement",
			Category:            models.CategorySteel,
			UnitCost:            decimal.NewFromInt(2450),
			Unit:                "ton",
			DurabilityScore:     95,
			SustainabilityScore: 78,
			PerformanceScore:    92,
			Description:         "Premium grade steel with enhanced corrosion resistance",
			Supplier:            "SteelTech Industries",
		},
		{
			Name:                "Bulk High-Grade Steel Rebar",
			Category:            models.CategorySteel,
			UnitCost:            decimal.NewFromInt(2100),
			Unit:                "ton",
			DurabilityScore:     92,
			SustainabilityScore: 74,
			PerformanceScore:    90,
			Description:         "High-grade steel with bulk procurement discount",
			Supplier:            "SteelTech Industries",
		},
		{
			Name:                "Standard Concrete Mix",
			Category:            models.CategoryConcrete,
			UnitCost:            decimal.NewFromInt(220),
			Unit:                "m3",
			DurabilityScore:     85,
			SustainabilityScore: 60,
			PerformanceScore:    84,
			Description:         "General purpose ready-mix concrete",
			Supplier:            "CityMix Ltd",
		},
		{
			Name:                "Eco-Friendly Concrete Mix",
			Category:            models.CategoryConcrete,
			UnitCost:            decimal.NewFromInt(180),
			Unit:                "m3",
			DurabilityScore:     88,
			SustainabilityScore: 95,
			PerformanceScore:    85,
			Description:         "Sustainable concrete mix with recycled aggregates",
			Supplier:            "GreenBuild Materials",
		},
		{
			Name:                "Composite Fiber Panels",
			Category:            models.CategoryCladding,
			UnitCost:            decimal.NewFromInt(95),
			Unit:                "m2",
			DurabilityScore:     82,
			SustainabilityScore: 71,
			PerformanceScore:    88,
			Description:         "Lightweight composite panels with excellent thermal properties",
			Supplier:            "FiberTech Solutions",
		},
		{
			Name:                "Metal Roofing Sheets",
			Category:            models.CategoryRoofing,
			UnitCost:            decimal.NewFromInt(85),
			Unit:                "m2",
			DurabilityScore:     80,
			SustainabilityScore: 65,
			PerformanceScore:    78,
			Supplier:            "RoofPro",
		},
		{
			Name:                "Composite Roofing Tiles",
			Category:            models.CategoryRoofing,
			UnitCost:            decimal.NewFromInt(65),
			Unit:                "m2",
			DurabilityScore:     84,
			SustainabilityScore: 70,
			PerformanceScore:    80,
			Description:         "Composite materials with 20-year warranty",
			Supplier:            "RoofPro",
		},
		{
			Name:                "Mineral Wool Insulation Boards",
			Category:            models.CategoryInsulation,
			UnitCost:            decimal.NewFromInt(32),
			Unit:                "m2",
			DurabilityScore:     86,
			SustainabilityScore: 80,
			PerformanceScore:    83,
			Supplier:            "ThermoShield",
		},
	}
}

// SeedIfEmpty inserts SampleMaterials when the store holds no records and
// returns the number inserted.
func SeedIfEmpty(ctx context.Context, store *Store) (int, error) {
	if store.Len() > 0 {
		return 0, nil
	}

	samples := SampleMaterials()
	for _, m := range samples {
		if _, err := store.Insert(ctx, models.RoleAdmin, m); err != nil {
			return 0, fmt.Errorf("seed material %q: %w", m.Name, err)
		}
	}

	store.logger.Info("sample catalog seeded", zap.Int("materials", len(samples)))
	return len(samples), nil
}
