package handler

import (
	"net/http"

	"parking_marketplace/internal/api/middleware"
	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/repository"
	"parking_marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"gopkg.in/guregu/null.v4"
)

type BookingHandler struct {
	catalog *service.CatalogStore
}

func NewBookingHandler(cs *service.CatalogStore) *BookingHandler {
	return &BookingHandler{catalog: cs}
}

// POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
		return
	}

	var dto domain.CreateBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking: " + err.Error()})
		return
	}

	booking, err := h.catalog.BookParkingSpace(c.Request.Context(), user, dto)
	if err != nil {
		writeCatalogError(c, err, "Could not book parking space")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /bookings/:id
func (h *BookingHandler) GetBookingByID(c *gin.Context) {
	booking, err := h.catalog.GetBookingByID(c.Param("id"))
	if err != nil {
		writeCatalogError(c, err, "Booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// PATCH /bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var dto domain.UpdateBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.applyUpdate(c, dto)
}

// POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.applyUpdate(c, domain.UpdateBookingDTO{Status: null.StringFrom(string(domain.BookingCancelled))})
}

func (h *BookingHandler) applyUpdate(c *gin.Context, dto domain.UpdateBookingDTO) {
	booking, found, err := h.catalog.UpdateBooking(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		writeCatalogError(c, err, "Could not update booking")
		return
	}
	if !found {
		writeCatalogError(c, repository.ErrNotFound, "Booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /me/bookings?tab=all|upcoming|completed|cancelled
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
		return
	}

	tab := domain.BookingTab(c.DefaultQuery("tab", string(domain.TabAll)))
	switch tab {
	case domain.TabAll, domain.TabUpcoming, domain.TabCompleted, domain.TabCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tab: " + string(tab)})
		return
	}
	c.JSON(http.StatusOK, h.catalog.FilterUserBookings(user.ID, tab))
}
