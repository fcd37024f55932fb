package routes

import (
	"log"
	"net/http"
	"strconv"

	"hundredbot/handlers"
	"hundredbot/middleware"
	"hundredbot/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	questionHandler *handlers.QuestionHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			questions := protected.Group("/questions")
			{
				questions.GET("", questionHandler.GetQuestions)
				questions.POST("", questionHandler.CreateQuestion)
				questions.GET("/:id", questionHandler.GetQuestionByID)
				questions.DELETE("/:id", questionHandler.DeleteQuestion)
			}
		}

		// Public game state
		api.GET("/games/:chatID", gameHandler.GetChatState)
	}

	// WebSocket endpoint for spectating a chat's game in real time
	router.GET("/ws/:chatID", func(c *gin.Context) {
		chatID, err := strconv.ParseInt(c.Param("chatID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for chat %d: %v", chatID, err)
			return
		}

		hub.RegisterClient(conn, chatID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
