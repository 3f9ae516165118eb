package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kenfungv/prompt-hub/internal/service"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	Success(c, gin.H{
		"status":    "ok",
		"app":       h.svc.Config.App.Name,
		"version":   h.svc.Config.App.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
