package routes

import (
	"net/http"

	"chat-realtime-api/internal/handlers"
	"chat-realtime-api/internal/logger"
	"chat-realtime-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(logger.GinLogger(log), gin.Recovery())

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Chat realtime API is running",
		})
	})

	// The socket authenticates itself so a refused caller never upgrades
	ginRouter.GET("/ws", h.WebSocketHandler)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
		api.POST("/register", h.Register)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(h.Authn()))
	{
		// Users endpoints
		protectedRoutes.GET("/users", h.GetAllUsers)
		protectedRoutes.GET("/online", h.GetOnlineUsers)

		// Friendship endpoints
		protectedRoutes.GET("/friends", h.ListFriends)
		protectedRoutes.GET("/friends/requests", h.ListFriendRequests)
		protectedRoutes.POST("/friends/requests", h.SendFriendRequest)
		protectedRoutes.POST("/friends/requests/:id/accept", h.AcceptFriendRequest)
		protectedRoutes.POST("/friends/requests/:id/reject", h.RejectFriendRequest)

		// Message history and notifications
		protectedRoutes.GET("/messages/:peerId", h.GetConversation)
		protectedRoutes.GET("/notifications", h.ListNotifications)
		protectedRoutes.PATCH("/notifications/:id/read", h.MarkNotificationRead)

		// Song catalog
		protectedRoutes.GET("/songs", h.GetAllSongs)
		protectedRoutes.GET("/songs/random", h.GetRandomSongs)
		protectedRoutes.GET("/songs/category/:category", h.GetSongsByCategory)
	}

	return ginRouter
}
