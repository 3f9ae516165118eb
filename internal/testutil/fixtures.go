// Package testutil 提供测试辅助工具
package testutil

import (
	"fmt"
	"time"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// ResultBuilder 执行结果构造器，链式填充可选字段
type ResultBuilder struct {
	result *model.RunResult
}

// NewResult 创建一条成功的执行结果
func NewResult(testID, variantID, modelID string) *ResultBuilder {
	seq := nextSeq()
	return &ResultBuilder{
		result: &model.RunResult{
			ID:               fmt.Sprintf("result-%d", seq),
			TestID:           testID,
			VariantID:        variantID,
			ModelID:          modelID,
			InputData:        model.JSON{"prompt": "hello"},
			GeneratedOutput:  "output",
			Timestamp:        time.Now().UTC(),
			GenerationTimeMs: 100,
			TotalTokens:      50,
			PromptTokens:     20,
			CompletionTokens: 30,
			CostUSD:          0.001,
			Status:           model.RunStatusSuccess,
		},
	}
}

// WithTiming 设置耗时
func (b *ResultBuilder) WithTiming(ms float64) *ResultBuilder {
	b.result.GenerationTimeMs = ms
	return b
}

// WithCost 设置成本
func (b *ResultBuilder) WithCost(usd float64) *ResultBuilder {
	b.result.CostUSD = usd
	return b
}

// WithTokens 设置 token 数
func (b *ResultBuilder) WithTokens(total, prompt, completion int) *ResultBuilder {
	b.result.TotalTokens = total
	b.result.PromptTokens = prompt
	b.result.CompletionTokens = completion
	return b
}

// WithRating 设置用户评分
func (b *ResultBuilder) WithRating(rating float64) *ResultBuilder {
	b.result.UserRating = &rating
	return b
}

// WithAutoScore 设置自动评分
func (b *ResultBuilder) WithAutoScore(score float64) *ResultBuilder {
	b.result.AutoScore = &score
	return b
}

// WithComparisonWin 设置裁判胜负
func (b *ResultBuilder) WithComparisonWin(won bool) *ResultBuilder {
	b.result.ComparisonWinner = &won
	return b
}

// Failed 标记为失败
func (b *ResultBuilder) Failed(errMsg string) *ResultBuilder {
	b.result.Status = model.RunStatusError
	b.result.Error = &errMsg
	return b
}

// TimedOut 标记为超时
func (b *ResultBuilder) TimedOut() *ResultBuilder {
	b.result.Status = model.RunStatusTimeout
	return b
}

// Build 返回构造的结果
func (b *ResultBuilder) Build() *model.RunResult {
	return b.result
}

// NewTest 创建一个双变体单模型的测试
func NewTest(id string) *model.ABTest {
	return &model.ABTest{
		ID:   id,
		Name: "fixture test",
		PromptVariants: []model.PromptVariant{
			{VariantID: "v1", VariantName: "variant 1", PromptTemplate: "Answer: {{input}}"},
			{VariantID: "v2", VariantName: "variant 2", PromptTemplate: "Reply: {{input}}"},
		},
		ModelConfigs: []model.ModelConfig{
			{ModelID: "m1", ModelName: "gpt-4o-mini", Provider: "openai"},
		},
		TrafficAllocation: []model.TrafficAllocation{
			{VariantID: "v1", ModelID: "m1", AllocationPercentage: 50},
			{VariantID: "v2", ModelID: "m1", AllocationPercentage: 50},
		},
		SampleSize: 100,
		Status:     model.TestStatusDraft,
		CreatedBy:  "tester",
	}
}

var seqCounter int

func nextSeq() int {
	seqCounter++
	return seqCounter
}
