// Package abtest 提供 A/B 测试服务单元测试
package abtest

import (
	"math"
	"testing"

	"github.com/kenfungv/prompt-hub/internal/model"
	"github.com/kenfungv/prompt-hub/internal/testutil"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// ========== 统计辅助测试 ==========

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		q        float64
		expected float64
	}{
		{
			name:     "empty sample",
			values:   nil,
			q:        0.95,
			expected: 0.0,
		},
		{
			name:     "single value",
			values:   []float64{42},
			q:        0.95,
			expected: 42,
		},
		{
			name:     "small sample p95 truncates",
			values:   []float64{10, 20, 30, 40, 50},
			q:        0.95,
			expected: 40, // int(0.95*4) = 3
		},
		{
			name:     "small sample p99 truncates",
			values:   []float64{10, 20, 30, 40, 50},
			q:        0.99,
			expected: 40, // int(0.99*4) = 3
		},
		{
			name:     "small sample unsorted input",
			values:   []float64{50, 10, 40, 20, 30},
			q:        0.95,
			expected: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentile(tt.values, tt.q)
			if !almostEqual(got, tt.expected, 1e-9) {
				t.Errorf("percentile(%v, %v) = %v, want %v", tt.values, tt.q, got, tt.expected)
			}
		})
	}
}

func TestPercentileLargeSample(t *testing.T) {
	// 1..100，大样本分支：p95 取第 ceil(0.95*100)=95 个值
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	if got := percentile(values, 0.95); !almostEqual(got, 95, 1e-9) {
		t.Errorf("p95 = %v, want 95", got)
	}
	if got := percentile(values, 0.99); !almostEqual(got, 99, 1e-9) {
		t.Errorf("p99 = %v, want 99", got)
	}
	if got := percentile(values, 0.50); !almostEqual(got, 50, 1e-9) {
		t.Errorf("p50 = %v, want 50", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{name: "empty", values: nil, expected: 0.0},
		{name: "odd count", values: []float64{300, 100, 200}, expected: 200},
		{name: "even count averages middles", values: []float64{100, 200, 300, 400}, expected: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := median(tt.values)
			if !almostEqual(got, tt.expected, 1e-9) {
				t.Errorf("median(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

// ========== 聚合引擎测试 ==========

func TestAggregateResults_BasicTiming(t *testing.T) {
	results := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").WithTiming(100).Build(),
		testutil.NewResult("t1", "v1", "m1").WithTiming(200).Build(),
		testutil.NewResult("t1", "v1", "m1").WithTiming(300).Build(),
	}

	allocations := []model.TrafficAllocation{
		{VariantID: "v1", ModelID: "m1", AllocationPercentage: 50},
		{VariantID: "v1", ModelID: "m2", AllocationPercentage: 50},
	}

	aggregates := AggregateResults(allocations, results)
	if len(aggregates) != 2 {
		t.Fatalf("expected 2 aggregate entries, got %d", len(aggregates))
	}

	// 有结果的单元
	agg := aggregates[0]
	if agg.VariantID != "v1" || agg.ModelID != "m1" {
		t.Fatalf("unexpected first pair: (%s, %s)", agg.VariantID, agg.ModelID)
	}
	if agg.TotalRuns != 3 || agg.SuccessRuns != 3 || agg.ErrorRuns != 0 {
		t.Errorf("counts = (%d, %d, %d), want (3, 3, 0)", agg.TotalRuns, agg.SuccessRuns, agg.ErrorRuns)
	}
	if !almostEqual(agg.AvgGenerationTimeMs, 200, 1e-9) {
		t.Errorf("avg = %v, want 200", agg.AvgGenerationTimeMs)
	}
	if !almostEqual(agg.P50GenerationTimeMs, 200, 1e-9) {
		t.Errorf("p50 = %v, want 200", agg.P50GenerationTimeMs)
	}

	// 配置了但无结果的单元：全零记录，质量指标保持 nil
	empty := aggregates[1]
	if empty.VariantID != "v1" || empty.ModelID != "m2" {
		t.Fatalf("unexpected second pair: (%s, %s)", empty.VariantID, empty.ModelID)
	}
	if empty.TotalRuns != 0 || empty.SuccessRuns != 0 {
		t.Errorf("empty pair counts = (%d, %d), want (0, 0)", empty.TotalRuns, empty.SuccessRuns)
	}
	if empty.AvgUserRating != nil || empty.WinRate != nil || empty.UserPreferenceRate != nil {
		t.Error("empty pair quality metrics should stay nil")
	}
}

func TestAggregateResults_CountsInvariant(t *testing.T) {
	results := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").Build(),
		testutil.NewResult("t1", "v1", "m1").Failed("boom").Build(),
		testutil.NewResult("t1", "v1", "m1").TimedOut().Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
	}

	aggregates := AggregateResults(nil, results)
	if len(aggregates) != 1 {
		t.Fatalf("expected 1 aggregate entry, got %d", len(aggregates))
	}

	agg := aggregates[0]
	if agg.TotalRuns != 4 {
		t.Errorf("total_runs = %d, want 4", agg.TotalRuns)
	}
	if agg.SuccessRuns != 2 {
		t.Errorf("success_runs = %d, want 2", agg.SuccessRuns)
	}
	if agg.ErrorRuns != 2 {
		t.Errorf("error_runs = %d, want 2", agg.ErrorRuns)
	}
	if agg.SuccessRuns+agg.ErrorRuns != agg.TotalRuns {
		t.Error("success_runs + error_runs must equal total_runs")
	}
}

func TestAggregateResults_FailedRunsExcludedFromPerf(t *testing.T) {
	results := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").WithTiming(100).WithCost(0.01).WithTokens(10, 5, 5).Build(),
		// 失败执行的耗时/成本/token 不计入统计
		testutil.NewResult("t1", "v1", "m1").WithTiming(99999).WithCost(5.0).WithTokens(9999, 0, 9999).Failed("timeout upstream").Build(),
	}

	agg := AggregateResults(nil, results)[0]
	if !almostEqual(agg.AvgGenerationTimeMs, 100, 1e-9) {
		t.Errorf("avg time = %v, want 100", agg.AvgGenerationTimeMs)
	}
	if !almostEqual(agg.TotalCostUSD, 0.01, 1e-9) {
		t.Errorf("total cost = %v, want 0.01", agg.TotalCostUSD)
	}
	if agg.TotalTokensUsed != 10 {
		t.Errorf("total tokens = %d, want 10", agg.TotalTokensUsed)
	}
	if !almostEqual(agg.AvgTokensPerRun, 10, 1e-9) {
		t.Errorf("avg tokens = %v, want 10", agg.AvgTokensPerRun)
	}
}

func TestAggregateResults_RatingAbsentVsZero(t *testing.T) {
	// 无任何评分：avg_user_rating 为 nil
	unrated := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
	}
	agg := AggregateResults(nil, unrated)[0]
	if agg.AvgUserRating != nil {
		t.Errorf("avg_user_rating = %v, want nil", *agg.AvgUserRating)
	}
	if agg.AvgAutoScore != nil {
		t.Errorf("avg_auto_score = %v, want nil", *agg.AvgAutoScore)
	}

	// 部分评分：只对有评分的结果取均值
	rated := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").WithRating(4).Build(),
		testutil.NewResult("t1", "v1", "m1").WithRating(5).Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
	}
	agg = AggregateResults(nil, rated)[0]
	if agg.AvgUserRating == nil {
		t.Fatal("avg_user_rating should not be nil")
	}
	if !almostEqual(*agg.AvgUserRating, 4.5, 1e-9) {
		t.Errorf("avg_user_rating = %v, want 4.5", *agg.AvgUserRating)
	}

	// 显式零分与无评分不同
	zeroRated := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").WithRating(0).Build(),
	}
	agg = AggregateResults(nil, zeroRated)[0]
	if agg.AvgUserRating == nil {
		t.Fatal("explicit zero rating must produce non-nil average")
	}
	if !almostEqual(*agg.AvgUserRating, 0, 1e-9) {
		t.Errorf("avg_user_rating = %v, want 0", *agg.AvgUserRating)
	}
}

func TestAggregateResults_WinRateDenominators(t *testing.T) {
	// 5 次执行，1 次被裁判判胜，其余 4 次未判定
	results := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").WithComparisonWin(true).Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
	}

	agg := AggregateResults(nil, results)[0]

	// win_rate 分母是已判定数
	if agg.WinRate == nil {
		t.Fatal("win_rate should not be nil")
	}
	if !almostEqual(*agg.WinRate, 1.0, 1e-9) {
		t.Errorf("win_rate = %v, want 1.0", *agg.WinRate)
	}

	// user_preference_rate 分母是整组执行次数
	if agg.UserPreferenceRate == nil {
		t.Fatal("user_preference_rate should not be nil")
	}
	if !almostEqual(*agg.UserPreferenceRate, 0.2, 1e-9) {
		t.Errorf("user_preference_rate = %v, want 0.2", *agg.UserPreferenceRate)
	}
}

func TestAggregateResults_WinRateNilWhenUnjudged(t *testing.T) {
	results := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").Build(),
	}

	agg := AggregateResults(nil, results)[0]
	if agg.WinRate != nil {
		t.Errorf("win_rate = %v, want nil when no judged results", *agg.WinRate)
	}
	// 有执行但无判定：偏好率为 0/total
	if agg.UserPreferenceRate == nil {
		t.Fatal("user_preference_rate should not be nil")
	}
	if !almostEqual(*agg.UserPreferenceRate, 0.0, 1e-9) {
		t.Errorf("user_preference_rate = %v, want 0.0", *agg.UserPreferenceRate)
	}
}

func TestAggregateResults_PercentileOrdering(t *testing.T) {
	results := make([]*model.RunResult, 0, 50)
	for i := 1; i <= 50; i++ {
		results = append(results, testutil.NewResult("t1", "v1", "m1").WithTiming(float64(i*7%53)).Build())
	}

	agg := AggregateResults(nil, results)[0]
	if agg.P50GenerationTimeMs > agg.P95GenerationTimeMs {
		t.Errorf("p50 (%v) > p95 (%v)", agg.P50GenerationTimeMs, agg.P95GenerationTimeMs)
	}
	if agg.P95GenerationTimeMs > agg.P99GenerationTimeMs {
		t.Errorf("p95 (%v) > p99 (%v)", agg.P95GenerationTimeMs, agg.P99GenerationTimeMs)
	}
}

func TestAggregateResults_ObservedPairOrder(t *testing.T) {
	// 未在流量分配中配置的单元按结果首次出现顺序排列
	results := []*model.RunResult{
		testutil.NewResult("t1", "v2", "m1").Build(),
		testutil.NewResult("t1", "v1", "m1").Build(),
		testutil.NewResult("t1", "v2", "m1").Build(),
	}

	aggregates := AggregateResults(nil, results)
	if len(aggregates) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(aggregates))
	}
	if aggregates[0].VariantID != "v2" {
		t.Errorf("first pair variant = %s, want v2 (first seen)", aggregates[0].VariantID)
	}
	if aggregates[1].VariantID != "v1" {
		t.Errorf("second pair variant = %s, want v1", aggregates[1].VariantID)
	}
}

func TestAggregateResults_Idempotent(t *testing.T) {
	results := []*model.RunResult{
		testutil.NewResult("t1", "v1", "m1").WithTiming(120).WithRating(4).Build(),
		testutil.NewResult("t1", "v1", "m1").WithTiming(180).WithComparisonWin(false).Build(),
	}
	allocations := []model.TrafficAllocation{
		{VariantID: "v1", ModelID: "m1", AllocationPercentage: 100},
	}

	first := AggregateResults(allocations, results)
	second := AggregateResults(allocations, results)

	if len(first) != len(second) {
		t.Fatalf("entry counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.TotalRuns != b.TotalRuns || !almostEqual(a.AvgGenerationTimeMs, b.AvgGenerationTimeMs, 1e-9) {
			t.Errorf("entry %d differs between runs", i)
		}
		if orZero(a.AvgUserRating) != orZero(b.AvgUserRating) || orZero(a.WinRate) != orZero(b.WinRate) {
			t.Errorf("entry %d quality metrics differ between runs", i)
		}
	}
}

func TestAggregateResults_EmptyInput(t *testing.T) {
	aggregates := AggregateResults(nil, nil)
	if len(aggregates) != 0 {
		t.Errorf("expected no entries, got %d", len(aggregates))
	}
}
