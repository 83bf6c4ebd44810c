package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
)

// RoleHeader carries the caller's already-authenticated role.
const RoleHeader = "X-User-Role"

const roleKey = "role"

// ResolveRole reads RoleHeader into the request context. A missing header
// resolves to the core role; an unknown role is rejected.
func ResolveRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(RoleHeader)
		if raw == "" {
			c.Set(roleKey, models.RoleCore)
			c.Next()
			return
		}
		role, ok := models.ParseRole(raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role", "type": apperrors.TypeValidation})
			return
		}
		c.Set(roleKey, role)
		c.Next()
	}
}

// RoleOf returns the role resolved for the request.
func RoleOf(c *gin.Context) models.Role {
	if v, ok := c.Get(roleKey); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RoleCore
}

func statusFor(t apperrors.Type) int {
	switch t {
	case apperrors.TypeValidation:
		return http.StatusBadRequest
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	case apperrors.TypePermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	t := apperrors.TypeOf(err)
	status := statusFor(t)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if t == "" {
			c.JSON(status, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(status, gin.H{"error": err.Error(), "type": t})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "type": apperrors.TypeValidation})
}
