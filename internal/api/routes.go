package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handler.Register)
			auth.POST("/login", handler.Login)
		}

		grading := v1.Group("/grading")
		{
			grading.POST("/analyze", handler.AnalyzeBatch)
			grading.GET("/analytics", handler.GetAnalytics)
			grading.GET("/history", handler.GetHistory)
			grading.GET("/export", handler.ExportHistory)
		}
	}
}
