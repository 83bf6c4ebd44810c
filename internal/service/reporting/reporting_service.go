package reporting

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	repo "github.com/mamadbah2/buildmat/internal/repository/sheets"
)

const (
	dateLayout       = "2006-01-02"
	pricesSheetRange = "Prices!A:H"
	digestSheetRange = "Digest!A:E"
	averagePlaces    = 2
)

// Catalog is the read access needed to summarise materials.
type Catalog interface {
	Find(q models.MaterialQuery) iter.Seq[models.Material]
}

// Service summarises the catalog and exports it to a spreadsheet.
type Service struct {
	catalog Catalog
	repo    repo.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. repository may be nil
// when no spreadsheet export is configured.
func NewService(catalog Catalog, repository repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, repo: repository, logger: logger, now: time.Now}
}

// Digest computes per-category counts, cheapest entry and average unit cost.
// Categories follow the canonical order; empty categories are omitted.
func (s *Service) Digest() models.CatalogDigest {
	type acc struct {
		digest models.CategoryDigest
		sum    decimal.Decimal
	}
	byCategory := map[models.Category]*acc{}

	total := 0
	for m := range s.catalog.Find(models.MaterialQuery{}) {
		total++
		a, ok := byCategory[m.Category]
		if !ok {
			a = &acc{digest: models.CategoryDigest{Category: m.Category}}
			byCategory[m.Category] = a
		}
		a.sum = a.sum.Add(m.UnitCost)
		a.digest.Count++
		if a.digest.Count == 1 || m.UnitCost.LessThan(a.digest.CheapestCost) {
			a.digest.CheapestID = m.ID
			a.digest.CheapestName = m.Name
			a.digest.CheapestCost = m.UnitCost
		}
	}

	out := models.CatalogDigest{GeneratedAt: s.now().UTC(), Materials: total}
	for _, a := range byCategory {
		a.digest.AverageUnitCost = a.sum.DivRound(decimal.NewFromInt(int64(a.digest.Count)), averagePlaces)
		out.Categories = append(out.Categories, a.digest)
	}
	slices.SortFunc(out.Categories, func(a, b models.CategoryDigest) int {
		if c := cmp.Compare(categoryRank(a.Category), categoryRank(b.Category)); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Summary renders the digest as a short text block.
func (s *Service) Summary() string {
	digest := s.Digest()
	if digest.Materials == 0 {
		return fmt.Sprintf("Catalog (%s): no materials yet.", digest.GeneratedAt.Format(dateLayout))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Catalog (%s): %d materials across %d categories.", digest.GeneratedAt.Format(dateLayout), digest.Materials, len(digest.Categories))
	for _, c := range digest.Categories {
		fmt.Fprintf(&b, "\n%s: %d, cheapest %s at %s, average %s", c.Category, c.Count, c.CheapestName, c.CheapestCost, c.AverageUnitCost)
	}
	return b.String()
}

// ExportCatalog writes the price list and the digest to the spreadsheet and
// returns the number of material rows written.
func (s *Service) ExportCatalog(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("catalog export is not configured")
	}

	prices := [][]interface{}{{"id", "name", "category", "unit_cost", "unit", "supplier", "scores", "last_updated"}}
	for m := range s.catalog.Find(models.MaterialQuery{}) {
		prices = append(prices, []interface{}{
			m.ID,
			m.Name,
			string(m.Category),
			m.UnitCost.String(),
			m.Unit,
			m.Supplier,
			fmt.Sprintf("%d/%d/%d", m.DurabilityScore, m.SustainabilityScore, m.PerformanceScore),
			m.LastUpdated.Format(time.RFC3339),
		})
	}
	if err := s.repo.ReplaceRange(ctx, pricesSheetRange, prices); err != nil {
		return 0, fmt.Errorf("export prices: %w", err)
	}

	digest := s.Digest()
	rows := [][]interface{}{{"category", "count", "cheapest", "cheapest_cost", "average_unit_cost"}}
	for _, c := range digest.Categories {
		rows = append(rows, []interface{}{string(c.Category), c.Count, c.CheapestName, c.CheapestCost.String(), c.AverageUnitCost.String()})
	}
	if err := s.repo.ReplaceRange(ctx, digestSheetRange, rows); err != nil {
		return 0, fmt.Errorf("export digest: %w", err)
	}

	s.logger.Info("catalog exported", zap.Int("materials", len(prices)-1), zap.Int("categories", len(digest.Categories)))
	return len(prices) - 1, nil
}

func categoryRank(c models.Category) int {
	if i := slices.Index(models.KnownCategories, c); i >= 0 {
		return i
	}
	return len(models.KnownCategories)
}
