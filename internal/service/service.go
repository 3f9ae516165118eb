package service

import (
	"github.com/redis/go-redis/v9"

	"github.com/kenfungv/prompt-hub/internal/config"
	"github.com/kenfungv/prompt-hub/internal/repository"
	"github.com/kenfungv/prompt-hub/internal/service/abtest"
	"github.com/kenfungv/prompt-hub/internal/service/auth"
	"github.com/kenfungv/prompt-hub/internal/service/reportcache"
)

// Services 服务集合
type Services struct {
	// 业务服务
	ABTest *abtest.Service
	Auth   *auth.Service

	// 配置与缓存
	Config      *config.Config
	ReportCache *reportcache.Cache
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	// 报告缓存，Redis 不可用时退化为纯内存
	cache := reportcache.New(redisClient)

	return &Services{
		ABTest:      abtest.NewService(repo, cache),
		Auth:        auth.NewService(repo),
		Config:      cfg,
		ReportCache: cache,
	}, nil
}
