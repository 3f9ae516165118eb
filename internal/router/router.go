package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kenfungv/prompt-hub/internal/handler"
	"github.com/kenfungv/prompt-hub/internal/middleware"
	"github.com/kenfungv/prompt-hub/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.AuthMiddleware(svc))

	// 健康检查
	r.GET("/health", h.System.Health)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth 认证
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", h.Auth.GetCurrentUser)
			auth.POST("/change-password", middleware.RequireAuth(svc), h.Auth.ChangePassword)
		}

		// A/B 测试
		tests := v1.Group("/ab-tests")
		{
			tests.POST("", h.ABTest.CreateTest)
			tests.GET("", h.ABTest.ListTests)
			tests.GET("/:id", h.ABTest.GetTest)
			tests.DELETE("/:id", h.ABTest.DeleteTest)
			tests.POST("/:id/start", h.ABTest.StartTest)
			tests.POST("/:id/pause", h.ABTest.PauseTest)
			tests.POST("/:id/complete", h.ABTest.CompleteTest)
			tests.POST("/:id/archive", h.ABTest.ArchiveTest)
			tests.POST("/:id/results", h.ABTest.RecordResult)
			tests.POST("/:id/aggregate", h.ABTest.Aggregate)
			tests.POST("/:id/report", h.ABTest.GenerateReport)
			tests.GET("/:id/report", h.ABTest.GetLatestReport)
			tests.GET("/:id/reports", h.ABTest.ListReports)
			tests.POST("/:id/comparisons", h.ABTest.CreateComparisonPair)
			tests.GET("/:id/comparisons", h.ABTest.ListComparisonPairs)
		}

		// 比对评分
		comparisons := v1.Group("/comparisons")
		{
			comparisons.POST("/:id/rate", h.ABTest.SubmitRating)
		}
	}

	return r
}
