package routes

import (
	"github.com/gin-gonic/gin"

	"voicenote/internal/api/handlers"
	"voicenote/internal/api/middleware"
	"voicenote/internal/api/services"
)

// ServiceContainer holds everything the routes hand to handlers.
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	AuthService          services.AuthService
	Health               handlers.Pinger

	SecureCookies bool
	// AfterSignIn is where the browser is sent once signed in.
	AfterSignIn string
}

// RegisterRoutes registers the transcription and auth routes
func RegisterRoutes(router gin.IRouter, container *ServiceContainer) {
	router.GET("/health", handlers.NewHealthHandler(container.Health).Health)

	// Auth routes
	authHandler := handlers.NewAuthHandler(container.AuthService, container.SecureCookies, container.AfterSignIn)
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/github/login", authHandler.Login)
		authGroup.GET("/github/callback", authHandler.Callback)
		authGroup.GET("/session", authHandler.Session)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Transcription routes
	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService)
	guarded := router.Group("", middleware.RequireSession(container.AuthService))
	{
		guarded.POST("/transcribe", transcriptionHandler.Submit)
		guarded.GET("/transcriptions", transcriptionHandler.List)
		guarded.DELETE("/transcriptions", transcriptionHandler.Delete)
	}
}
