package middleware

import (
	"log"
	"net/http"

	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "userID"
	UsernameKey = "username"
	UserKey     = "sessionUser"
)

type AuthMiddleware struct {
	sessions *service.SessionStore
}

func NewAuthMiddleware(sessions *service.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession chặn request khi chưa có ai đăng nhập và đưa user hiện tại vào gin context.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.sessions.Current()
		if !ok {
			log.Printf("RequireSession: rejected %s %s, no active session", c.Request.Method, c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UsernameKey, user.Name)
		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser đọc user mà RequireSession đã đặt vào context.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}
