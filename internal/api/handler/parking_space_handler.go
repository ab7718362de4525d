package handler

import (
	"net/http"
	"strconv"

	"parking_marketplace/internal/api/middleware"
	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/repository"
	"parking_marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

const defaultFeaturedLimit = 3

type ParkingSpaceHandler struct {
	catalog *service.CatalogStore
}

func NewParkingSpaceHandler(cs *service.CatalogStore) *ParkingSpaceHandler {
	return &ParkingSpaceHandler{catalog: cs}
}

// GET /parking-spaces?q=&minPrice=&maxPrice=
func (h *ParkingSpaceHandler) SearchParkingSpaces(c *gin.Context) {
	var filter domain.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search parameters: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.catalog.FilterParkingSpaces(filter))
}

// GET /parking-spaces/featured?limit=3
func (h *ParkingSpaceHandler) GetFeaturedParkingSpaces(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFeaturedLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	c.JSON(http.StatusOK, h.catalog.FeaturedParkingSpaces(limit))
}

// GET /parking-spaces/:id
func (h *ParkingSpaceHandler) GetParkingSpaceByID(c *gin.Context) {
	space, err := h.catalog.GetParkingSpaceByID(c.Param("id"))
	if err != nil {
		writeCatalogError(c, err, "Parking space")
		return
	}
	c.JSON(http.StatusOK, space)
}

// POST /parking-spaces
func (h *ParkingSpaceHandler) CreateParkingSpace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
		return
	}

	var dto domain.ParkingSpaceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	space, err := h.catalog.AddParkingSpace(c.Request.Context(), domain.NewParkingSpace{
		OwnerID:     user.ID,
		OwnerName:   user.Name,
		Name:        dto.Name,
		Address:     dto.Address,
		Description: dto.Description,
		ContactInfo: dto.ContactInfo,
		Price:       dto.Price,
		Location:    dto.Location,
		Images:      dto.Images,
	})
	if err != nil {
		writeCatalogError(c, err, "Could not create parking space")
		return
	}
	c.JSON(http.StatusCreated, space)
}

// PATCH /parking-spaces/:id
func (h *ParkingSpaceHandler) UpdateParkingSpace(c *gin.Context) {
	var dto domain.UpdateParkingSpaceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	space, found, err := h.catalog.UpdateParkingSpace(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		writeCatalogError(c, err, "Could not update parking space")
		return
	}
	if !found {
		writeCatalogError(c, repository.ErrNotFound, "Parking space")
		return
	}
	c.JSON(http.StatusOK, space)
}

// DELETE /parking-spaces/:id
func (h *ParkingSpaceHandler) DeleteParkingSpace(c *gin.Context) {
	found, err := h.catalog.DeleteParkingSpace(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err, "Could not delete parking space")
		return
	}
	if !found {
		writeCatalogError(c, repository.ErrNotFound, "Parking space")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// GET /me/parking-spaces
func (h *ParkingSpaceHandler) GetMyParkingSpaces(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
		return
	}
	c.JSON(http.StatusOK, h.catalog.GetUserParkingSpaces(user.ID))
}
