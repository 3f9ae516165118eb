package model

import "time"

// AnalysisStatus 报告分析段的计算状态
type AnalysisStatus string

const (
	AnalysisNotComputed AnalysisStatus = "not_computed" // 尚未计算
	AnalysisComputed    AnalysisStatus = "computed"     // 已计算
)

// TestSummary 测试摘要
type TestSummary struct {
	Name           string     `json:"name"`
	Status         TestStatus `json:"status"`
	PromptVariants int        `json:"prompt_variants"`
	ModelConfigs   int        `json:"model_configs"`
	SampleSize     int        `json:"sample_size"`
}

// OverallStats 总体统计
// AvgCostPerRun 为各组 avg_cost_per_run 的组间均值（均值的均值），
// 并非按执行次数加权的全局均值，下游消费方依赖该口径
type OverallStats struct {
	TotalRuns     int     `json:"total_runs"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
	AvgCostPerRun float64 `json:"avg_cost_per_run"`
}

// CostBenefitAnalysis 成本效益分析（预留段）
type CostBenefitAnalysis struct {
	Status     AnalysisStatus     `json:"status"`
	CostPerWin map[string]float64 `json:"cost_per_win,omitempty"`
}

// SignificanceAnalysis 统计显著性分析（预留段）
type SignificanceAnalysis struct {
	Status  AnalysisStatus     `json:"status"`
	PValues map[string]float64 `json:"p_values,omitempty"`
}

// Recommendations 建议（预留段）
type Recommendations struct {
	Status AnalysisStatus `json:"status"`
	Items  []string       `json:"items"`
}

// ABTestReport A/B 测试报告
// 生成时刻 AggregateMetrics 的快照，生成后不可变，不随测试后续变更而变化
type ABTestReport struct {
	ID          string    `gorm:"primaryKey;size:36" json:"report_id"`
	TestID      string    `gorm:"index;size:36;not null" json:"test_id"`
	GeneratedAt time.Time `gorm:"autoCreateTime" json:"generated_at"`

	// 测试摘要
	TestSummary TestSummary `gorm:"type:jsonb;serializer:json" json:"test_summary"`

	// 总体统计
	OverallStats OverallStats `gorm:"type:jsonb;serializer:json" json:"overall_stats"`

	// 各组性能（数据快照而非引用）
	VariantPerformance []AggregateMetrics `gorm:"type:jsonb;serializer:json" json:"variant_performance"`

	// 胜者分析：variant_id -> model_id
	WinnerAnalysis map[string]string `gorm:"type:jsonb;serializer:json" json:"winner_analysis"`

	// 预留分析段：显式标记未计算，而非省略
	CostBenefitAnalysis     CostBenefitAnalysis  `gorm:"type:jsonb;serializer:json" json:"cost_benefit_analysis"`
	StatisticalSignificance SignificanceAnalysis `gorm:"type:jsonb;serializer:json" json:"statistical_significance"`
	Recommendations         Recommendations      `gorm:"type:jsonb;serializer:json" json:"recommendations"`
}

// TableName 指定表名
func (ABTestReport) TableName() string {
	return "ab_test_reports"
}
