package abtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kenfungv/prompt-hub/internal/model"
	"github.com/kenfungv/prompt-hub/internal/repository"
	"github.com/kenfungv/prompt-hub/internal/service/reportcache"
)

// Service A/B 测试服务
type Service struct {
	repo  *repository.Repositories
	cache *reportcache.Cache
}

// NewService 创建 A/B 测试服务
func NewService(repo *repository.Repositories, cache *reportcache.Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ========== 测试生命周期 ==========

// CreateTestRequest 创建测试请求
// 必填字段在边界处一次性校验，引擎只接触已校验的记录
type CreateTestRequest struct {
	Name              string                    `json:"test_name" binding:"required"`
	Description       string                    `json:"description"`
	PromptVariants    []model.PromptVariant     `json:"prompt_variants" binding:"required,min=1"`
	ModelConfigs      []model.ModelConfig       `json:"model_configs" binding:"required,min=1"`
	TrafficAllocation []model.TrafficAllocation `json:"traffic_allocation" binding:"required,min=1"`
	SampleSize        int                       `json:"sample_size"`
	ParallelExecution *bool                     `json:"parallel_execution"`
}

// CreateTest 创建测试
func (s *Service) CreateTest(ctx context.Context, req *CreateTestRequest, createdBy string) (*model.ABTest, error) {
	if len(req.PromptVariants) == 0 {
		return nil, errors.New("prompt_variants is required")
	}
	if len(req.ModelConfigs) == 0 {
		return nil, errors.New("model_configs is required")
	}
	if len(req.TrafficAllocation) == 0 {
		return nil, errors.New("traffic_allocation is required")
	}

	sampleSize := req.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}
	parallel := true
	if req.ParallelExecution != nil {
		parallel = *req.ParallelExecution
	}

	test := &model.ABTest{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Description:       req.Description,
		PromptVariants:    req.PromptVariants,
		ModelConfigs:      req.ModelConfigs,
		TrafficAllocation: req.TrafficAllocation,
		SampleSize:        sampleSize,
		ParallelExecution: parallel,
		Status:            model.TestStatusDraft,
		CreatedBy:         createdBy,
	}

	if err := s.repo.ABTest.Create(test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}
	return test, nil
}

// GetTest 获取测试
func (s *Service) GetTest(ctx context.Context, id string) (*model.ABTest, error) {
	return s.repo.ABTest.GetByID(id)
}

// ListTests 列出测试
func (s *Service) ListTests(ctx context.Context, createdBy string, page, size int) ([]*model.ABTest, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return s.repo.ABTest.List(createdBy, (page-1)*size, size)
}

// StartTest 启动测试
// 状态转换为直接赋值，不校验转换合法性（对已完成的测试调用不会被拒绝）；
// started_at 只在首次启动时写入
func (s *Service) StartTest(ctx context.Context, id string) (*model.ABTest, error) {
	test, err := s.repo.ABTest.GetByID(id)
	if err != nil {
		return nil, err
	}

	test.Status = model.TestStatusRunning
	if test.StartedAt == nil {
		now := time.Now().UTC()
		test.StartedAt = &now
	}

	if err := s.repo.ABTest.Update(test); err != nil {
		return nil, fmt.Errorf("failed to start test: %w", err)
	}
	return test, nil
}

// PauseTest 暂停测试
func (s *Service) PauseTest(ctx context.Context, id string) (*model.ABTest, error) {
	return s.setStatus(id, model.TestStatusPaused)
}

// CompleteTest 完成测试，completed_at 只写一次
func (s *Service) CompleteTest(ctx context.Context, id string) (*model.ABTest, error) {
	test, err := s.repo.ABTest.GetByID(id)
	if err != nil {
		return nil, err
	}

	test.Status = model.TestStatusCompleted
	if test.CompletedAt == nil {
		now := time.Now().UTC()
		test.CompletedAt = &now
	}

	if err := s.repo.ABTest.Update(test); err != nil {
		return nil, fmt.Errorf("failed to complete test: %w", err)
	}
	return test, nil
}

// ArchiveTest 归档测试
func (s *Service) ArchiveTest(ctx context.Context, id string) (*model.ABTest, error) {
	return s.setStatus(id, model.TestStatusArchived)
}

// DeleteTest 删除测试及其派生数据
func (s *Service) DeleteTest(ctx context.Context, id string) error {
	if _, err := s.repo.ABTest.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.ABTest.Delete(id); err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

// setStatus 直接写入目标状态
func (s *Service) setStatus(id string, status model.TestStatus) (*model.ABTest, error) {
	test, err := s.repo.ABTest.GetByID(id)
	if err != nil {
		return nil, err
	}

	test.Status = status
	if err := s.repo.ABTest.Update(test); err != nil {
		return nil, fmt.Errorf("failed to update test status: %w", err)
	}
	return test, nil
}

// ========== 结果记录 ==========

// RecordResultRequest 记录执行结果请求
type RecordResultRequest struct {
	VariantID        string     `json:"variant_id" binding:"required"`
	ModelID          string     `json:"model_id" binding:"required"`
	InputData        model.JSON `json:"input_data" binding:"required"`
	GeneratedOutput  string     `json:"generated_output"`
	GenerationTimeMs float64    `json:"generation_time_ms"`
	TotalTokens      int        `json:"total_tokens"`
	PromptTokens     int        `json:"prompt_tokens"`
	CompletionTokens int        `json:"completion_tokens"`
	CostUSD          float64    `json:"cost_usd"`

	// 可选字段，缺省时按约定默认
	Status           string   `json:"status"`
	Error            *string  `json:"error"`
	UserRating       *float64 `json:"user_rating"`
	UserFeedback     *string  `json:"user_feedback"`
	AutoScore        *float64 `json:"auto_score"`
	ComparisonWinner *bool    `json:"comparison_winner"`
}

// RecordResult 记录一次执行结果（写入后不可变）
func (s *Service) RecordResult(ctx context.Context, testID string, req *RecordResultRequest) (*model.RunResult, error) {
	test, err := s.repo.ABTest.GetByID(testID)
	if err != nil {
		return nil, err
	}

	status := model.RunStatus(req.Status)
	if status == "" {
		status = model.RunStatusSuccess
	}
	switch status {
	case model.RunStatusSuccess, model.RunStatusError, model.RunStatusTimeout:
	default:
		return nil, fmt.Errorf("invalid run status: %s", req.Status)
	}

	result := &model.RunResult{
		ID:               uuid.New().String(),
		TestID:           test.ID,
		VariantID:        req.VariantID,
		ModelID:          req.ModelID,
		InputData:        req.InputData,
		GeneratedOutput:  req.GeneratedOutput,
		Timestamp:        time.Now().UTC(),
		GenerationTimeMs: req.GenerationTimeMs,
		TotalTokens:      req.TotalTokens,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
		CostUSD:          req.CostUSD,
		UserRating:       req.UserRating,
		UserFeedback:     req.UserFeedback,
		AutoScore:        req.AutoScore,
		ComparisonWinner: req.ComparisonWinner,
		Status:           status,
		Error:            req.Error,
	}

	if err := s.repo.ABTest.AppendResult(result); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	return result, nil
}

// ========== 聚合运算 ==========

// Aggregate 对测试的全部结果执行聚合并整体替换派生指标
// 引擎本身幂等且无副作用，持久化为按 id 的末写胜出覆盖
func (s *Service) Aggregate(ctx context.Context, testID string) ([]*model.AggregateMetrics, error) {
	test, err := s.repo.ABTest.GetByID(testID)
	if err != nil {
		return nil, err
	}

	results := make([]*model.RunResult, 0, len(test.Results))
	for i := range test.Results {
		results = append(results, &test.Results[i])
	}

	aggregates := AggregateResults(test.TrafficAllocation, results)

	if err := s.repo.ABTest.ReplaceAggregates(testID, aggregates); err != nil {
		return nil, fmt.Errorf("failed to save aggregates: %w", err)
	}
	return aggregates, nil
}

// ========== 结果配对与用户评分 ==========

// CreatePairRequest 创建比对配对请求
type CreatePairRequest struct {
	ResultAID string `json:"result_a_id" binding:"required"`
	ResultBID string `json:"result_b_id" binding:"required"`
}

// CreateComparisonPair 创建比对配对
func (s *Service) CreateComparisonPair(ctx context.Context, testID string, req *CreatePairRequest) (*model.ComparisonPair, error) {
	if _, err := s.repo.ABTest.GetByID(testID); err != nil {
		return nil, err
	}

	pair := &model.ComparisonPair{
		ID:        uuid.New().String(),
		TestID:    testID,
		ResultAID: req.ResultAID,
		ResultBID: req.ResultBID,
	}

	if err := s.repo.Comparison.Create(pair); err != nil {
		return nil, fmt.Errorf("failed to create comparison pair: %w", err)
	}
	return pair, nil
}

// ListComparisonPairs 列出测试的全部配对
func (s *Service) ListComparisonPairs(ctx context.Context, testID string) ([]*model.ComparisonPair, error) {
	return s.repo.Comparison.ListByTest(testID)
}

// SubmitRatingRequest 提交用户评分请求
type SubmitRatingRequest struct {
	UserPreference   string             `json:"user_preference" binding:"required,oneof=a b tie"`
	RatingDimensions map[string]float64 `json:"rating_dimensions"`
	Feedback         *string            `json:"feedback"`
}

// SubmitRating 对配对提交用户评分
func (s *Service) SubmitRating(ctx context.Context, comparisonID string, req *SubmitRatingRequest, ratedBy string) (*model.ComparisonPair, error) {
	pair, err := s.repo.Comparison.GetByID(comparisonID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pair.UserPreference = &req.UserPreference
	pair.RatingDimensions = req.RatingDimensions
	pair.Feedback = req.Feedback
	pair.RatedAt = &now
	pair.RatedBy = &ratedBy

	if err := s.repo.Comparison.Update(pair); err != nil {
		return nil, fmt.Errorf("failed to submit rating: %w", err)
	}
	return pair, nil
}

// ========== 报告生成 ==========

// GenerateReport 生成并持久化测试报告
// 若测试尚无聚合指标则先行聚合（惰性回退）
func (s *Service) GenerateReport(ctx context.Context, testID string) (*model.ABTestReport, error) {
	test, err := s.repo.ABTest.GetByID(testID)
	if err != nil {
		return nil, err
	}

	aggregates := make([]*model.AggregateMetrics, 0, len(test.AggregateMetrics))
	for i := range test.AggregateMetrics {
		aggregates = append(aggregates, &test.AggregateMetrics[i])
	}

	if len(aggregates) == 0 {
		aggregates, err = s.Aggregate(ctx, testID)
		if err != nil {
			return nil, err
		}
	}

	report := SynthesizeReport(test, aggregates)

	if err := s.repo.Report.Create(report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	if s.cache != nil {
		s.cache.Put(ctx, testID, report)
	}
	return report, nil
}

// GetLatestReport 获取测试最新报告，优先读缓存
func (s *Service) GetLatestReport(ctx context.Context, testID string) (*model.ABTestReport, error) {
	if s.cache != nil {
		if report, ok := s.cache.Get(ctx, testID); ok {
			return report, nil
		}
	}

	report, err := s.repo.Report.GetLatestByTest(testID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(ctx, testID, report)
	}
	return report, nil
}

// ListReports 列出测试的全部报告
func (s *Service) ListReports(ctx context.Context, testID string) ([]*model.ABTestReport, error) {
	return s.repo.Report.ListByTest(testID)
}
