package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
)

// ProjectService is the project tracker surface exposed over HTTP.
type ProjectService interface {
	Create(ctx context.Context, role models.Role, p models.Project) (models.Project, error)
	Get(id string) (models.Project, error)
	List() []models.Project
	RecordProgress(ctx context.Context, role models.Role, id string, update models.ProgressUpdate) (models.Project, error)
	OptimizeProject(id string, policy models.SubstitutionPolicy) (models.OptimizedBudget, error)
}

// ProjectHandler serves project tracking.
type ProjectHandler struct {
	projects ProjectService
	defaults models.SubstitutionPolicy
	logger   *zap.Logger
}

// NewProjectHandler constructs the HTTP handler adapter.
func NewProjectHandler(projects ProjectService, defaults models.SubstitutionPolicy, logger *zap.Logger) *ProjectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectHandler{projects: projects, defaults: defaults, logger: logger}
}

type projectView struct {
	models.Project
	Total       string `json:"budget_total"`
	Utilization string `json:"utilization"`
}

func viewOf(p models.Project) projectView {
	return projectView{Project: p, Total: p.Budget.Total().String(), Utilization: p.Utilization().String()}
}

// List returns every tracked project.
func (h *ProjectHandler) List(c *gin.Context) {
	projects := h.projects.List()
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, viewOf(p))
	}
	c.JSON(http.StatusOK, gin.H{"projects": views, "count": len(views)})
}

// Get returns one project.
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.projects.Get(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(p))
}

// Create registers a project. Admin only.
func (h *ProjectHandler) Create(c *gin.Context) {
	var p models.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	created, err := h.projects.Create(c.Request.Context(), RoleOf(c), p)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(created))
}

// RecordProgress updates progress and spend. Admin only.
func (h *ProjectHandler) RecordProgress(c *gin.Context) {
	var update models.ProgressUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	p, err := h.projects.RecordProgress(c.Request.Context(), RoleOf(c), c.Param("id"), update)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(p))
}

// Optimize runs the optimizer over the project's budget.
func (h *ProjectHandler) Optimize(c *gin.Context) {
	var req PolicyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.logger, err)
			return
		}
	}

	out, err := h.projects.OptimizeProject(c.Param("id"), req.Resolve(h.defaults))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
