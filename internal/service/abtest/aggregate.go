// Package abtest 提供 A/B 测试服务
package abtest

import (
	"math"
	"sort"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// pairKey 实验单元键：(variant_id, model_id)
type pairKey struct {
	variantID string
	modelID   string
}

// AggregateResults 聚合引擎
// 将结果序列按实验单元分组，为每个单元计算一条 AggregateMetrics。
// 分组顺序：先按流量分配配置的顺序登记单元（配置了但尚无结果的单元
// 产出一条全零记录），再按结果中首次出现的顺序补充未配置的单元。
// 纯函数：不做任何 I/O，持久化由调用方负责。
func AggregateResults(allocations []model.TrafficAllocation, results []*model.RunResult) []*model.AggregateMetrics {
	order := make([]pairKey, 0, len(allocations))
	groups := make(map[pairKey][]*model.RunResult)

	for _, alloc := range allocations {
		key := pairKey{variantID: alloc.VariantID, modelID: alloc.ModelID}
		if _, seen := groups[key]; !seen {
			groups[key] = nil
			order = append(order, key)
		}
	}

	for _, r := range results {
		key := pairKey{variantID: r.VariantID, modelID: r.ModelID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	aggregates := make([]*model.AggregateMetrics, 0, len(order))
	for _, key := range order {
		aggregates = append(aggregates, aggregatePair(key, groups[key]))
	}
	return aggregates
}

// aggregatePair 计算单个实验单元的聚合指标
func aggregatePair(key pairKey, results []*model.RunResult) *model.AggregateMetrics {
	var times, costs []float64
	var totalTokens int
	var successTokenRuns int
	var ratings, autoScores []float64
	successRuns := 0
	judged := 0
	wins := 0

	for _, r := range results {
		// 性能/Token/成本统计只计成功的执行
		if r.IsSuccess() {
			successRuns++
			times = append(times, r.GenerationTimeMs)
			costs = append(costs, r.CostUSD)
			totalTokens += r.TotalTokens
			successTokenRuns++
		}
		if r.UserRating != nil {
			ratings = append(ratings, *r.UserRating)
		}
		if r.ComparisonWinner != nil {
			judged++
			if *r.ComparisonWinner {
				wins++
			}
		}
		if r.AutoScore != nil {
			autoScores = append(autoScores, *r.AutoScore)
		}
	}

	agg := &model.AggregateMetrics{
		VariantID:           key.variantID,
		ModelID:             key.modelID,
		TotalRuns:           len(results),
		SuccessRuns:         successRuns,
		ErrorRuns:           len(results) - successRuns,
		AvgGenerationTimeMs: mean(times),
		P50GenerationTimeMs: median(times),
		P95GenerationTimeMs: percentile(times, 0.95),
		P99GenerationTimeMs: percentile(times, 0.99),
		TotalTokensUsed:     totalTokens,
		TotalCostUSD:        sum(costs),
		AvgCostPerRun:       mean(costs),
	}
	if successTokenRuns > 0 {
		agg.AvgTokensPerRun = float64(totalTokens) / float64(successTokenRuns)
	}

	// 质量统计：样本为空时保持 nil，区分"无数据"与"零分"
	if len(ratings) > 0 {
		agg.AvgUserRating = floatPtr(mean(ratings))
	}
	if judged > 0 {
		agg.WinRate = floatPtr(float64(wins) / float64(judged))
	}
	if len(results) > 0 {
		// 分母为整组执行次数而非已判定数，与 win_rate 刻意不对称
		agg.UserPreferenceRate = floatPtr(float64(wins) / float64(len(results)))
	}
	if len(autoScores) > 0 {
		agg.AvgAutoScore = floatPtr(mean(autoScores))
	}

	return agg
}

// ========== 统计辅助 ==========

// sum 求和
func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// mean 算术平均，空样本为 0.0
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return sum(values) / float64(len(values))
}

// median 中位数，空样本为 0.0
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile 分位数
// 样本数不足 100 时取截断下标 q*(n-1) 处的最近秩值，避免小样本插值假象；
// 样本数达到 100 后取百等分桶边界（最近秩 ceil(q*n)），大样本下与标准分位收敛。
// 空样本为 0.0。
func percentile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var idx int
	if n < 100 {
		idx = int(q * float64(n-1))
	} else {
		idx = int(math.Ceil(q*float64(n))) - 1
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

// floatPtr 返回 float64 指针
func floatPtr(v float64) *float64 {
	return &v
}
