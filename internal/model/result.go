package model

import "time"

// RunStatus 单次执行状态
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success" // 成功
	RunStatusError   RunStatus = "error"   // 失败
	RunStatusTimeout RunStatus = "timeout" // 超时
)

// RunResult 单次生成执行的结果，写入后不可变
// 质量字段与错误字段相互独立，也与 status 独立：均可单独缺失
type RunResult struct {
	ID        string `gorm:"primaryKey;size:36" json:"result_id"`
	TestID    string `gorm:"index;size:36;not null" json:"test_id"`
	VariantID string `gorm:"index;size:36;not null" json:"variant_id"`
	ModelID   string `gorm:"index;size:36;not null" json:"model_id"`

	InputData       JSON      `gorm:"type:jsonb" json:"input_data"`
	GeneratedOutput string    `gorm:"type:text" json:"generated_output"`
	Timestamp       time.Time `json:"timestamp"`

	// 性能指标
	GenerationTimeMs float64 `json:"generation_time_ms"`
	TotalTokens      int     `json:"total_tokens"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`

	// 质量指标（缺失表示未评，与 0 分含义不同）
	UserRating       *float64 `json:"user_rating,omitempty"` // 1-5 星
	UserFeedback     *string  `gorm:"type:text" json:"user_feedback,omitempty"`
	AutoScore        *float64 `json:"auto_score,omitempty"` // 自动评分
	ComparisonWinner *bool    `json:"comparison_winner,omitempty"`

	// 错误追踪
	Status RunStatus `gorm:"size:20;index;default:success" json:"status"`
	Error  *string   `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// IsSuccess 是否成功执行
func (r *RunResult) IsSuccess() bool {
	return r.Status == RunStatusSuccess
}

// TableName 指定表名
func (RunResult) TableName() string {
	return "run_results"
}

// AggregateMetrics 单个 (variant, model) 组合的聚合指标
// 完全由该组合的 RunResult 集合派生，可重算；除组合键外无独立身份
// 不变式：SuccessRuns + ErrorRuns == TotalRuns
// 数值均值/分位在样本为空时为 0.0；质量均值与胜率在样本为空时为 nil（区分"无数据"与"零分"）
type AggregateMetrics struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	TestID string `gorm:"index;size:36" json:"-"`

	VariantID string `gorm:"size:36" json:"variant_id"`
	ModelID   string `gorm:"size:36" json:"model_id"`

	// 执行统计
	TotalRuns   int `json:"total_runs"`
	SuccessRuns int `json:"success_runs"`
	ErrorRuns   int `json:"error_runs"`

	// 性能统计（仅统计 success 的执行）
	AvgGenerationTimeMs float64 `json:"avg_generation_time_ms"`
	P50GenerationTimeMs float64 `json:"p50_generation_time_ms"`
	P95GenerationTimeMs float64 `json:"p95_generation_time_ms"`
	P99GenerationTimeMs float64 `json:"p99_generation_time_ms"`

	// Token 统计
	TotalTokensUsed int     `json:"total_tokens_used"`
	AvgTokensPerRun float64 `json:"avg_tokens_per_run"`

	// 成本统计
	TotalCostUSD  float64 `json:"total_cost_usd"`
	AvgCostPerRun float64 `json:"avg_cost_per_run"`

	// 质量统计
	AvgUserRating      *float64 `json:"avg_user_rating"`      // 有评分样本时的均值
	WinRate            *float64 `json:"win_rate"`             // 已判定比对中的胜率
	UserPreferenceRate *float64 `json:"user_preference_rate"` // 胜出次数 / 全部执行次数
	AvgAutoScore       *float64 `json:"avg_auto_score"`
}

// TableName 指定表名
func (AggregateMetrics) TableName() string {
	return "aggregate_metrics"
}
