package handlers

import (
	"context"
	"iter"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
	"github.com/mamadbah2/buildmat/internal/service/pricing"
)

// CatalogService is the catalog store surface exposed over HTTP.
type CatalogService interface {
	Insert(ctx context.Context, role models.Role, m models.Material) (models.Material, error)
	Update(ctx context.Context, role models.Role, id string, patch models.MaterialPatch) (models.Material, error)
	Delete(ctx context.Context, role models.Role, id string) error
	Get(id string) (models.Material, error)
	Find(q models.MaterialQuery) iter.Seq[models.Material]
}

// Digester summarises the catalog.
type Digester interface {
	Digest() models.CatalogDigest
}

// PriceSyncer pulls supplier prices on demand.
type PriceSyncer interface {
	Sync(ctx context.Context) (pricing.Result, error)
}

// CatalogHandler serves material CRUD, search and catalog maintenance.
type CatalogHandler struct {
	catalog  CatalogService
	digester Digester
	syncer   PriceSyncer
	logger   *zap.Logger
}

// NewCatalogHandler constructs the HTTP handler adapter. digester and syncer may be nil.
func NewCatalogHandler(catalog CatalogService, digester Digester, syncer PriceSyncer, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{catalog: catalog, digester: digester, syncer: syncer, logger: logger}
}

// List returns materials matching the optional search and category parameters.
func (h *CatalogHandler) List(c *gin.Context) {
	q := models.MaterialQuery{Search: c.Query("search")}
	if raw := c.Query("category"); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			writeError(c, h.logger, apperrors.Validation("unknown category %q", raw))
			return
		}
		q.Category = category
	}

	materials := slices.Collect(h.catalog.Find(q))
	if materials == nil {
		materials = []models.Material{}
	}
	c.JSON(http.StatusOK, gin.H{"materials": materials, "count": len(materials)})
}

// Get returns one material.
func (h *CatalogHandler) Get(c *gin.Context) {
	m, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Create inserts a material. Admin only.
func (h *CatalogHandler) Create(c *gin.Context) {
	var m models.Material
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	created, err := h.catalog.Insert(c.Request.Context(), RoleOf(c), m)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update merges a partial material. Admin only.
func (h *CatalogHandler) Update(c *gin.Context) {
	var patch models.MaterialPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	updated, err := h.catalog.Update(c.Request.Context(), RoleOf(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a material. Admin only.
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), RoleOf(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Digest returns per-category catalog statistics.
func (h *CatalogHandler) Digest(c *gin.Context) {
	if h.digester == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "digest unavailable"})
		return
	}
	c.JSON(http.StatusOK, h.digester.Digest())
}

// SyncPrices triggers a supplier price sync. Admin only.
func (h *CatalogHandler) SyncPrices(c *gin.Context) {
	role := RoleOf(c)
	if !role.CanMutate() {
		writeError(c, h.logger, apperrors.Permission(string(role), "sync supplier prices"))
		return
	}
	if h.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "supplier feed not configured"})
		return
	}

	res, err := h.syncer.Sync(c.Request.Context())
	if err != nil {
		h.logger.Error("price sync failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "price sync failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
