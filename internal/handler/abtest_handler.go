// Package handler 提供 A/B 测试相关的 HTTP 处理器
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kenfungv/prompt-hub/internal/service"
	"github.com/kenfungv/prompt-hub/internal/service/abtest"
)

// ABTestHandler A/B 测试处理器
type ABTestHandler struct {
	svc *service.Services
}

// NewABTestHandler 创建 A/B 测试处理器
func NewABTestHandler(svc *service.Services) *ABTestHandler {
	return &ABTestHandler{svc: svc}
}

// CreateTest 创建测试
// POST /api/v1/ab-tests
func (h *ABTestHandler) CreateTest(c *gin.Context) {
	var req abtest.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	test, err := h.svc.ABTest.CreateTest(c.Request.Context(), &req, currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, test)
}

// GetTest 获取测试详情
// GET /api/v1/ab-tests/:id
func (h *ABTestHandler) GetTest(c *gin.Context) {
	test, err := h.svc.ABTest.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, test)
}

// ListTests 列出测试
// GET /api/v1/ab-tests
func (h *ABTestHandler) ListTests(c *gin.Context) {
	page := queryInt(c.Query("page"), 1)
	pageSize := queryInt(c.Query("page_size"), 20)
	createdBy := c.Query("created_by")

	tests, total, err := h.svc.ABTest.ListTests(c.Request.Context(), createdBy, page, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, tests, total, page, pageSize)
}

// DeleteTest 删除测试
// DELETE /api/v1/ab-tests/:id
func (h *ABTestHandler) DeleteTest(c *gin.Context) {
	if err := h.svc.ABTest.DeleteTest(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// StartTest 启动测试
// POST /api/v1/ab-tests/:id/start
func (h *ABTestHandler) StartTest(c *gin.Context) {
	test, err := h.svc.ABTest.StartTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, test)
}

// PauseTest 暂停测试
// POST /api/v1/ab-tests/:id/pause
func (h *ABTestHandler) PauseTest(c *gin.Context) {
	test, err := h.svc.ABTest.PauseTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, test)
}

// CompleteTest 完成测试
// POST /api/v1/ab-tests/:id/complete
func (h *ABTestHandler) CompleteTest(c *gin.Context) {
	test, err := h.svc.ABTest.CompleteTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, test)
}

// ArchiveTest 归档测试
// POST /api/v1/ab-tests/:id/archive
func (h *ABTestHandler) ArchiveTest(c *gin.Context) {
	test, err := h.svc.ABTest.ArchiveTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, test)
}

// RecordResult 记录执行结果
// POST /api/v1/ab-tests/:id/results
func (h *ABTestHandler) RecordResult(c *gin.Context) {
	var req abtest.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	result, err := h.svc.ABTest.RecordResult(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, result)
}

// Aggregate 执行聚合运算
// POST /api/v1/ab-tests/:id/aggregate
func (h *ABTestHandler) Aggregate(c *gin.Context) {
	aggregates, err := h.svc.ABTest.Aggregate(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, aggregates)
}

// GenerateReport 生成报告
// POST /api/v1/ab-tests/:id/report
func (h *ABTestHandler) GenerateReport(c *gin.Context) {
	report, err := h.svc.ABTest.GenerateReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, report)
}

// GetLatestReport 获取最新报告
// GET /api/v1/ab-tests/:id/report
func (h *ABTestHandler) GetLatestReport(c *gin.Context) {
	report, err := h.svc.ABTest.GetLatestReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, report)
}

// ListReports 列出全部报告
// GET /api/v1/ab-tests/:id/reports
func (h *ABTestHandler) ListReports(c *gin.Context) {
	reports, err := h.svc.ABTest.ListReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, reports)
}

// CreateComparisonPair 创建比对配对
// POST /api/v1/ab-tests/:id/comparisons
func (h *ABTestHandler) CreateComparisonPair(c *gin.Context) {
	var req abtest.CreatePairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	pair, err := h.svc.ABTest.CreateComparisonPair(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, pair)
}

// ListComparisonPairs 列出比对配对
// GET /api/v1/ab-tests/:id/comparisons
func (h *ABTestHandler) ListComparisonPairs(c *gin.Context) {
	pairs, err := h.svc.ABTest.ListComparisonPairs(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, pairs)
}

// SubmitRating 提交比对评分
// POST /api/v1/comparisons/:id/rate
func (h *ABTestHandler) SubmitRating(c *gin.Context) {
	var req abtest.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}

	pair, err := h.svc.ABTest.SubmitRating(c.Request.Context(), c.Param("id"), &req, currentUserID(c))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, pair)
}

// currentUserID 从 gin context 取当前用户 ID（由认证中间件写入）
func currentUserID(c *gin.Context) string {
	if id, ok := c.Get("user_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// queryInt 解析查询参数为整数，失败时返回默认值
func queryInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
