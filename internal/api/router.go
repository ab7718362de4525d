package api

import (
	"parking_marketplace/internal/api/handler"
	"parking_marketplace/internal/api/middleware"
	"parking_marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(sessions *service.SessionStore, catalog *service.CatalogStore,
	authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if wsManager != nil {
		wsHandler := handler.NewWebSocketHandler(wsManager)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	authHandler := handler.NewAuthHandler(sessions)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/me", authHandler.Me)
	}

	spaceH := handler.NewParkingSpaceHandler(catalog)
	bookingH := handler.NewBookingHandler(catalog)
	requireSession := authMw.RequireSession()

	v1 := r.Group("/api/v1")
	{
		spaceRoutes := v1.Group("/parking-spaces")
		{
			spaceRoutes.GET("", spaceH.SearchParkingSpaces)
			spaceRoutes.GET("/featured", spaceH.GetFeaturedParkingSpaces)
			spaceRoutes.GET("/:id", spaceH.GetParkingSpaceByID)
			spaceRoutes.POST("", requireSession, spaceH.CreateParkingSpace)
			spaceRoutes.PATCH("/:id", requireSession, spaceH.UpdateParkingSpace)
			spaceRoutes.DELETE("/:id", requireSession, spaceH.DeleteParkingSpace)
		}

		bookingRoutes := v1.Group("/bookings")
		bookingRoutes.Use(requireSession)
		{
			bookingRoutes.POST("", bookingH.CreateBooking)
			bookingRoutes.GET("/:id", bookingH.GetBookingByID)
			bookingRoutes.PATCH("/:id", bookingH.UpdateBooking)
			bookingRoutes.POST("/:id/cancel", bookingH.CancelBooking)
		}

		meRoutes := v1.Group("/me")
		meRoutes.Use(requireSession)
		{
			meRoutes.GET("/parking-spaces", spaceH.GetMyParkingSpaces)
			meRoutes.GET("/bookings", bookingH.GetMyBookings)
		}
	}
	return r
}
