package handler

import (
	"github.com/kenfungv/prompt-hub/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	ABTest *ABTestHandler
	Auth   *AuthHandler
	System *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		ABTest: NewABTestHandler(svc),
		Auth:   NewAuthHandler(svc),
		System: NewSystemHandler(svc),
	}
}
