package handler

import (
	"errors"
	"net/http"

	"parking_marketplace/internal/repository"
	"parking_marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// writeCatalogError ánh xạ lỗi của CatalogStore sang HTTP status.
func writeCatalogError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msg + ": not found"})
	case errors.Is(err, service.ErrBookingOverlap), errors.Is(err, service.ErrSpaceUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": err.Error()})
	}
}
