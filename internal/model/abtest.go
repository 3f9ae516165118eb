// Package model 提供 A/B 测试相关的数据模型
package model

import "time"

// TestStatus A/B 测试状态
type TestStatus string

const (
	TestStatusDraft     TestStatus = "draft"     // 草稿
	TestStatusRunning   TestStatus = "running"   // 运行中
	TestStatusPaused    TestStatus = "paused"    // 已暂停
	TestStatusCompleted TestStatus = "completed" // 已完成
	TestStatusArchived  TestStatus = "archived"  // 已归档
)

// ValidNext 返回当前状态的合法后继状态
// 状态机：draft -> running -> {paused <-> running, completed}；任意状态 -> archived
// 注意：服务层不强制校验状态转换，调用 ValidNext 仅用于展示与审计，
// 对已完成的测试再次调用 start 不会被拒绝（与存量行为保持一致）
func (s TestStatus) ValidNext() []TestStatus {
	switch s {
	case TestStatusDraft:
		return []TestStatus{TestStatusRunning, TestStatusArchived}
	case TestStatusRunning:
		return []TestStatus{TestStatusPaused, TestStatusCompleted, TestStatusArchived}
	case TestStatusPaused:
		return []TestStatus{TestStatusRunning, TestStatusCompleted, TestStatusArchived}
	case TestStatusCompleted:
		return []TestStatus{TestStatusArchived}
	default:
		return nil
	}
}

// CanTransitionTo 判断目标状态是否在合法后继中
func (s TestStatus) CanTransitionTo(next TestStatus) bool {
	for _, candidate := range s.ValidNext() {
		if candidate == next {
			return true
		}
	}
	return false
}

// PromptVariant Prompt 变体
type PromptVariant struct {
	VariantID      string            `json:"variant_id"`
	VariantName    string            `json:"variant_name"`
	PromptTemplate string            `json:"prompt_template"`
	SystemPrompt   string            `json:"system_prompt,omitempty"`
	Variables      map[string]string `json:"variables,omitempty"`
}

// ModelConfig 生成模型配置
type ModelConfig struct {
	ModelID          string  `json:"model_id"`
	ModelName        string  `json:"model_name"`
	Provider         string  `json:"provider"` // openai, anthropic, cohere 等
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

// TrafficAllocation 流量分配配置
// (variant_id, model_id) 构成一个实验单元（pair key）
type TrafficAllocation struct {
	VariantID            string  `json:"variant_id"`
	ModelID              string  `json:"model_id"`
	AllocationPercentage float64 `json:"allocation_percentage"` // 0-100
}

// ABTest A/B 测试
// Results 为追加式结果序列；AggregateMetrics 为派生数据，可随时由 Results 重算替换
type ABTest struct {
	ID          string `gorm:"primaryKey;size:36" json:"test_id"`
	Name        string `gorm:"size:255;not null" json:"test_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// 测试配置（jsonb 内嵌存储）
	PromptVariants    []PromptVariant     `gorm:"type:jsonb;serializer:json" json:"prompt_variants"`
	ModelConfigs      []ModelConfig       `gorm:"type:jsonb;serializer:json" json:"model_configs"`
	TrafficAllocation []TrafficAllocation `gorm:"type:jsonb;serializer:json" json:"traffic_allocation"`

	// 测试参数
	SampleSize        int  `gorm:"default:100" json:"sample_size"` // 预计执行次数
	ParallelExecution bool `gorm:"default:true" json:"parallel_execution"`

	// 状态管理（started_at / completed_at 各自只写一次）
	Status      TestStatus `gorm:"size:20;index;default:draft" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// 创建者
	CreatedBy string `gorm:"index;size:36" json:"created_by"`

	// 结果追踪
	Results          []RunResult        `gorm:"foreignKey:TestID" json:"results,omitempty"`
	AggregateMetrics []AggregateMetrics `gorm:"foreignKey:TestID" json:"aggregate_metrics,omitempty"`
}

// TableName 指定表名
func (ABTest) TableName() string {
	return "ab_tests"
}
