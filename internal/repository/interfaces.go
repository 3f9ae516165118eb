// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import "github.com/kenfungv/prompt-hub/internal/model"

// ========== ABTestRepository 接口 ==========

// ABTestRepository A/B 测试数据访问接口
// 即存储访问器合约：按 id 取/存测试记录，结果序列追加写入，
// 聚合指标整体替换。除按 id 末写胜出外不提供事务保证
type ABTestRepository interface {
	Create(test *model.ABTest) error
	GetByID(id string) (*model.ABTest, error)
	List(createdBy string, offset, limit int) ([]*model.ABTest, int64, error)
	Update(test *model.ABTest) error
	Delete(id string) error

	// 结果与派生指标
	AppendResult(result *model.RunResult) error
	ReplaceAggregates(testID string, aggregates []*model.AggregateMetrics) error
}

// ComparisonRepository 比对配对数据访问接口
type ComparisonRepository interface {
	Create(pair *model.ComparisonPair) error
	GetByID(id string) (*model.ComparisonPair, error)
	ListByTest(testID string) ([]*model.ComparisonPair, error)
	Update(pair *model.ComparisonPair) error
}

// ReportRepository 测试报告数据访问接口
type ReportRepository interface {
	Create(report *model.ABTestReport) error
	GetByID(id string) (*model.ABTestReport, error)
	GetLatestByTest(testID string) (*model.ABTestReport, error)
	ListByTest(testID string) ([]*model.ABTestReport, error)
}

// AuthRepository 认证数据访问接口
type AuthRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(id string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	UpdateUser(user *model.User) error

	// 令牌存取
	CreateToken(token *model.AuthToken) error
	GetTokenByValue(value string) (*model.AuthToken, error)
	RevokeToken(id string) error
}

// 确保 gorm 实现满足接口
var (
	_ ABTestRepository     = (*abTestRepositoryImpl)(nil)
	_ ComparisonRepository = (*comparisonRepositoryImpl)(nil)
	_ ReportRepository     = (*reportRepositoryImpl)(nil)
	_ AuthRepository       = (*authRepositoryImpl)(nil)
)
