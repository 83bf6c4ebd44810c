package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
)

// Recommender ranks materials for a set of requirements.
type Recommender interface {
	Recommend(req models.ProjectRequirements, category models.Category, limit int) ([]models.Recommendation, error)
}

// Optimizer computes optimized budgets.
type Optimizer interface {
	Optimize(budget models.ProjectBudget, policy models.SubstitutionPolicy) (models.OptimizedBudget, error)
}

// EngineHandler exposes the recommendation and optimization operations.
type EngineHandler struct {
	recommender  Recommender
	optimizer    Optimizer
	defaultLimit int
	defaults     models.SubstitutionPolicy
	logger       *zap.Logger
}

// NewEngineHandler constructs the HTTP handler adapter. defaults fills policy
// knobs a request leaves out.
func NewEngineHandler(recommender Recommender, optimizer Optimizer, defaultLimit int, defaults models.SubstitutionPolicy, logger *zap.Logger) *EngineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineHandler{
		recommender:  recommender,
		optimizer:    optimizer,
		defaultLimit: defaultLimit,
		defaults:     defaults,
		logger:       logger,
	}
}

type recommendRequest struct {
	Requirements models.ProjectRequirements `json:"requirements"`
	Category     models.Category            `json:"category"`
	Limit        *int                       `json:"limit"`
}

// Recommend ranks catalog materials for the posted requirements.
func (h *EngineHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	limit := h.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := h.recommender.Recommend(req.Requirements, req.Category, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": results})
}

// PolicyRequest is the wire form of a substitution policy. Omitted knobs
// take the server defaults.
type PolicyRequest struct {
	Lines               map[string]models.SubstitutionLine `json:"lines"`
	MinRetainedFraction *decimal.Decimal                   `json:"min_retained_fraction"`
	MinAggregateScore   int                                `json:"min_aggregate_score"`
	Requirements        models.ProjectRequirements         `json:"requirements"`
	Precision           *int32                             `json:"precision"`
}

// Resolve merges the request over defaults.
func (p PolicyRequest) Resolve(defaults models.SubstitutionPolicy) models.SubstitutionPolicy {
	policy := defaults
	policy.Lines = p.Lines
	policy.MinAggregateScore = p.MinAggregateScore
	policy.Requirements = p.Requirements
	if p.MinRetainedFraction != nil {
		policy.MinRetainedFraction = *p.MinRetainedFraction
	}
	if p.Precision != nil {
		policy.Precision = *p.Precision
	}
	return policy
}

type optimizeRequest struct {
	Budget models.ProjectBudget `json:"budget"`
	Policy PolicyRequest        `json:"policy"`
}

// Optimize returns the optimized breakdown of the posted budget.
func (h *EngineHandler) Optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	out, err := h.optimizer.Optimize(req.Budget, req.Policy.Resolve(h.defaults))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
