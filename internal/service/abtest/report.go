package abtest

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// SynthesizeReport 报告合成器
// 按变体分组聚合指标，为每个变体选出胜出模型，并汇总总体统计。
// 纯函数：返回的报告尚未持久化，保存由调用方负责。
func SynthesizeReport(test *model.ABTest, aggregates []*model.AggregateMetrics) *model.ABTestReport {
	byVariant := make(map[string][]*model.AggregateMetrics)
	variantOrder := make([]string, 0)
	for _, agg := range aggregates {
		if _, seen := byVariant[agg.VariantID]; !seen {
			variantOrder = append(variantOrder, agg.VariantID)
		}
		byVariant[agg.VariantID] = append(byVariant[agg.VariantID], agg)
	}

	// 胜者分析：每个变体内按组合键排序取首位
	// 候选全部零执行的变体不评胜者：流量分配登记的空单元只占位，
	// 零数据不构成胜负依据，零结果的测试报告胜者表为空
	winnerAnalysis := make(map[string]string)
	for _, variantID := range variantOrder {
		candidates := make([]*model.AggregateMetrics, 0, len(byVariant[variantID]))
		for _, agg := range byVariant[variantID] {
			if agg.TotalRuns > 0 {
				candidates = append(candidates, agg)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return ranksAhead(candidates[i], candidates[j])
		})
		winnerAnalysis[variantID] = candidates[0].ModelID
	}

	// 总体统计
	overall := model.OverallStats{}
	for _, agg := range aggregates {
		overall.TotalRuns += agg.TotalRuns
		overall.TotalCostUSD += agg.TotalCostUSD
		overall.AvgCostPerRun += agg.AvgCostPerRun
	}
	if len(aggregates) > 0 {
		// 组间均值的均值，保留该口径，不做按次数加权
		overall.AvgCostPerRun /= float64(len(aggregates))
	}

	// 各组性能快照（值拷贝，与后续测试变更解耦）
	performance := make([]model.AggregateMetrics, 0, len(aggregates))
	for _, agg := range aggregates {
		performance = append(performance, *agg)
	}

	return &model.ABTestReport{
		ID:          uuid.New().String(),
		TestID:      test.ID,
		GeneratedAt: time.Now().UTC(),
		TestSummary: model.TestSummary{
			Name:           test.Name,
			Status:         test.Status,
			PromptVariants: len(test.PromptVariants),
			ModelConfigs:   len(test.ModelConfigs),
			SampleSize:     test.SampleSize,
		},
		OverallStats:       overall,
		VariantPerformance: performance,
		WinnerAnalysis:     winnerAnalysis,

		// 预留分析段显式标记未计算
		CostBenefitAnalysis:     model.CostBenefitAnalysis{Status: model.AnalysisNotComputed},
		StatisticalSignificance: model.SignificanceAnalysis{Status: model.AnalysisNotComputed},
		Recommendations:         model.Recommendations{Status: model.AnalysisNotComputed, Items: []string{}},
	}
}

// ranksAhead 判断 a 是否应排在 b 之前
// 排序键依次为：win_rate 降序、avg_user_rating 降序、avg_cost_per_run 升序、
// avg_generation_time_ms 升序。缺失的可选指标仅在排序时按 0 处理，不改写存储值。
func ranksAhead(a, b *model.AggregateMetrics) bool {
	if orZero(a.WinRate) != orZero(b.WinRate) {
		return orZero(a.WinRate) > orZero(b.WinRate)
	}
	if orZero(a.AvgUserRating) != orZero(b.AvgUserRating) {
		return orZero(a.AvgUserRating) > orZero(b.AvgUserRating)
	}
	if a.AvgCostPerRun != b.AvgCostPerRun {
		return a.AvgCostPerRun < b.AvgCostPerRun
	}
	return a.AvgGenerationTimeMs < b.AvgGenerationTimeMs
}

// orZero 可选指标的排序取值
func orZero(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}
