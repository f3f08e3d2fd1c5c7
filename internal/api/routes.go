package api

import (
	"github.com/harini-sv/sheetcheck/internal/config"
	"github.com/harini-sv/sheetcheck/internal/interview"
	"github.com/harini-sv/sheetcheck/internal/stream"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	cfg *config.Config,
	interviewSvc *interview.Service,
	jobStatus *stream.StatusStore,
) *gin.Engine {
	router := gin.Default()

	handler := NewHandler(cfg, interviewSvc, jobStatus)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/interviews", handler.CreateInterview)
		api.GET("/interviews/:id/next", handler.NextQuestion)
		api.POST("/interviews/:id/answer", handler.SubmitAnswer)
		api.GET("/interviews/:id/status/:jobId", handler.JobStatus)
		api.GET("/interviews/:id/report", handler.Report)
	}

	return router
}
