package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkpage-be/internal/middleware"
	"linkpage-be/internal/models"
	"linkpage-be/internal/service"
)

var (
	notFoundErrors = []error{
		service.ErrProfileNotFound,
		service.ErrLinkNotFound,
	}
	conflictErrors = []error{
		service.ErrUserExists,
		service.ErrProfileExists,
		service.ErrCustomURLTaken,
	}
	badRequestErrors = []error{
		service.ErrInvalidCustomURL,
		service.ErrCustomURLReserved,
		service.ErrInvalidURL,
		service.ErrInvalidLinkOrder,
		service.ErrTooManyLinks,
		service.ErrTooManyTags,
		service.ErrTagTooLong,
		service.ErrInvalidTag,
		models.ErrInvalidPlatform,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondBindError answers a request whose body or query failed to bind
func respondBindError(c *gin.Context, err error) {
	if verrs := models.TranslateValidationError(err); verrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": verrs,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// respondError maps a service error to its HTTP status. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": verrs,
		})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUser returns the authenticated caller's id, answering 401 when absent
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
	}
	return userID, ok
}
