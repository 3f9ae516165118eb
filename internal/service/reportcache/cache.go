package reportcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kenfungv/prompt-hub/internal/model"
)

const (
	// 报告在 Redis 中的过期时间（24小时）
	reportTTL = 24 * time.Hour
	// Redis key 前缀
	reportKeyPrefix = "report:"
)

// Cache 报告缓存
// 以 test_id 为键缓存最新报告；内存为主，Redis 可选（nil 时退化为纯内存）
type Cache struct {
	mu     sync.RWMutex
	memory map[string]*model.ABTestReport
	redis  *redis.Client
}

// New 创建报告缓存
func New(redisClient *redis.Client) *Cache {
	return &Cache{
		memory: make(map[string]*model.ABTestReport),
		redis:  redisClient,
	}
}

// Put 写入测试的最新报告
func (c *Cache) Put(ctx context.Context, testID string, report *model.ABTestReport) {
	c.mu.Lock()
	c.memory[testID] = report
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.saveToRedis(ctx, testID, report); err != nil {
			// 记录错误但不影响主流程
			fmt.Printf("Warning: failed to save report to redis: %v\n", err)
		}
	}
}

// Get 读取测试的最新报告
func (c *Cache) Get(ctx context.Context, testID string) (*model.ABTestReport, bool) {
	c.mu.RLock()
	report, ok := c.memory[testID]
	c.mu.RUnlock()

	if ok {
		return report, true
	}

	// 从 Redis 加载
	if c.redis != nil {
		if report := c.loadFromRedis(ctx, testID); report != nil {
			c.mu.Lock()
			c.memory[testID] = report
			c.mu.Unlock()
			return report, true
		}
	}

	return nil, false
}

// Invalidate 删除测试的缓存报告
func (c *Cache) Invalidate(ctx context.Context, testID string) {
	c.mu.Lock()
	delete(c.memory, testID)
	c.mu.Unlock()

	if c.redis != nil {
		key := reportKeyPrefix + testID
		if err := c.redis.Del(ctx, key).Err(); err != nil {
			fmt.Printf("Warning: failed to delete report from redis: %v\n", err)
		}
	}
}

// loadFromRedis 从 Redis 加载报告
func (c *Cache) loadFromRedis(ctx context.Context, testID string) *model.ABTestReport {
	key := reportKeyPrefix + testID
	data, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var report model.ABTestReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil
	}
	return &report
}

// saveToRedis 保存报告到 Redis
func (c *Cache) saveToRedis(ctx context.Context, testID string, report *model.ABTestReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	key := reportKeyPrefix + testID
	return c.redis.Set(ctx, key, data, reportTTL).Err()
}
