package pricing

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
	"github.com/mamadbah2/buildmat/pkg/clients/supplier"
)

// Catalog is the slice of the catalog store the sync needs.
type Catalog interface {
	Get(id string) (models.Material, error)
	Find(q models.MaterialQuery) iter.Seq[models.Material]
	Update(ctx context.Context, role models.Role, id string, patch models.MaterialPatch) (models.Material, error)
}

// Result counts what a sync run did with the fetched quotes.
type Result struct {
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Unmatched int `json:"unmatched"`
	Rejected  int `json:"rejected"`
}

// Syncer applies supplier quotes to catalog unit costs. It acts with the
// admin role since it runs as the service account.
type Syncer struct {
	catalog Catalog
	feed    supplier.Client
	logger  *zap.Logger
}

// NewSyncer wires a price sync.
func NewSyncer(catalog Catalog, feed supplier.Client, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{catalog: catalog, feed: feed, logger: logger}
}

// Sync fetches quotes and updates every matched material whose price changed.
// A quote that fails validation is counted and skipped.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	quotes, err := s.feed.FetchQuotes(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load quotes: %w", err)
	}

	var res Result
	for _, q := range quotes {
		target, ok := s.match(q)
		if !ok {
			res.Unmatched++
			s.logger.Debug("quote matches no material", zap.String("material_id", q.MaterialID), zap.String("name", q.Name))
			continue
		}
		if target.UnitCost.Equal(q.UnitCost) {
			res.Unchanged++
			continue
		}

		patch := models.MaterialPatch{UnitCost: &q.UnitCost}
		if q.Supplier != "" {
			patch.Supplier = &q.Supplier
		}
		if _, err := s.catalog.Update(ctx, models.RoleAdmin, target.ID, patch); err != nil {
			if apperrors.HasType(err, apperrors.TypeValidation) {
				res.Rejected++
				s.logger.Warn("quote rejected", zap.String("material_id", target.ID), zap.Error(err))
				continue
			}
			return res, fmt.Errorf("apply quote for %s: %w", target.ID, err)
		}
		res.Updated++
	}

	s.logger.Info("supplier prices synced",
		zap.Int("quotes", len(quotes)),
		zap.Int("updated", res.Updated),
		zap.Int("unmatched", res.Unmatched),
		zap.Int("rejected", res.Rejected))
	return res, nil
}

func (s *Syncer) match(q supplier.Quote) (models.Material, bool) {
	if q.MaterialID != "" {
		m, err := s.catalog.Get(q.MaterialID)
		return m, err == nil
	}

	name := strings.TrimSpace(q.Name)
	if name == "" {
		return models.Material{}, false
	}
	for m := range s.catalog.Find(models.MaterialQuery{Search: name}) {
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		if q.Supplier != "" && m.Supplier != "" && !strings.EqualFold(m.Supplier, q.Supplier) {
			continue
		}
		return m, true
	}
	return models.Material{}, false
}
