package handlers

import (
	"errors"
	"net/http"

	"assessment-service/internal/apperrors"
	"assessment-service/internal/models"

	"github.com/gin-gonic/gin"
)

// identityFrom reads the caller identity the gateway injects via headers.
func identityFrom(c *gin.Context) models.Identity {
	return models.Identity{
		UserID: c.GetHeader("X-User-ID"),
		Role:   c.GetHeader("X-User-Role"),
	}
}

func requireUser(c *gin.Context) (models.Identity, bool) {
	identity := identityFrom(c)
	if identity.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header required"})
		return identity, false
	}
	return identity, true
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var quota *apperrors.QuotaError
	switch {
	case errors.As(err, &quota):
		c.JSON(http.StatusForbidden, gin.H{
			"error":         "maximum attempts reached",
			"attempts_used": quota.Used,
			"max_attempts":  quota.Ceiling,
		})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
