package handler

import (
	"errors"
	"net/http"

	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions *service.SessionStore
}

func NewAuthHandler(sessions *service.SessionStore) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var dto domain.RegisterUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not register", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, domain.AuthResponseDTO{Success: true, User: &user})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.sessions.Login(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not log in", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, domain.AuthResponseDTO{Success: true, User: &user})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not log out", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.sessions.Current()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}
