package recommendation

import (
	"cmp"
	"iter"
	"runtime"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
	"github.com/mamadbah2/buildmat/internal/service/scoring"
)

// DefaultLimit is used by callers that do not choose a limit.
const DefaultLimit = 10

// Catalog is the read access the service needs.
type Catalog interface {
	Find(q models.MaterialQuery) iter.Seq[models.Material]
}

// Scorer scores one material. *scoring.Engine satisfies it.
type Scorer interface {
	Score(req models.ProjectRequirements, m models.Material) scoring.Result
}

// Service ranks catalog materials against project requirements.
type Service struct {
	catalog Catalog
	scorer  Scorer
	workers int
	logger  *zap.Logger
}

// NewService wires a recommendation service. workers <= 0 uses GOMAXPROCS.
func NewService(catalog Catalog, scorer Scorer, workers int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		catalog: catalog,
		scorer:  scorer,
		workers: workers,
		logger:  logger,
	}
}

// Recommend scores every candidate in category (all categories when empty),
// sorts by aggregate score descending with ties broken by ascending id, and
// returns at most limit entries. The result is a snapshot of the catalog at
// call time.
func (s *Service) Recommend(req models.ProjectRequirements, category models.Category, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		return nil, apperrors.Validation("limit must be positive, got %d", limit).WithContext("limit", limit)
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("invalid requirements: %v", err)
	}
	if category != "" {
		canonical, ok := models.ParseCategory(string(category))
		if !ok {
			return nil, apperrors.Validation("unknown category filter %q", category)
		}
		category = canonical
	}

	candidates := slices.Collect(s.catalog.Find(models.MaterialQuery{Category: category}))
	if len(candidates) == 0 {
		s.logger.Debug("no candidates for recommendation", zap.String("category", string(category)))
		return []models.Recommendation{}, nil
	}

	ranked := s.scoreAll(req, candidates)

	slices.SortFunc(ranked, func(a, b models.Recommendation) int {
		if c := cmp.Compare(b.AggregateScore, a.AggregateScore); c != 0 {
			return c
		}
		return cmp.Compare(a.MaterialID, b.MaterialID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	s.logger.Debug("recommendations computed",
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(ranked)),
		zap.String("category", string(category)))
	return slices.Clip(ranked), nil
}

// scoreAll fans scoring out over the worker pool. Each goroutine writes only
// its own slot, so no further synchronization is needed.
func (s *Service) scoreAll(req models.ProjectRequirements, candidates []models.Material) []models.Recommendation {
	out := make([]models.Recommendation, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, m := range candidates {
		g.Go(func() error {
			res := s.scorer.Score(req, m)
			out[i] = models.Recommendation{
				MaterialID:     m.ID,
				Name:           m.Name,
				Category:       m.Category,
				AggregateScore: res.Aggregate,
				Criteria:       res.Criteria,
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
