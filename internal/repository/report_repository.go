package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// reportRepositoryImpl 测试报告仓库
type reportRepositoryImpl struct {
	db *gorm.DB
}

// NewReportRepository 创建测试报告仓库
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// Create 保存报告
func (r *reportRepositoryImpl) Create(report *model.ABTestReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	return r.db.Create(report).Error
}

// GetByID 获取报告
func (r *reportRepositoryImpl) GetByID(id string) (*model.ABTestReport, error) {
	var report model.ABTestReport
	err := r.db.Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetLatestByTest 获取测试最新生成的报告
func (r *reportRepositoryImpl) GetLatestByTest(testID string) (*model.ABTestReport, error) {
	var report model.ABTestReport
	err := r.db.Where("test_id = ?", testID).Order("generated_at DESC").First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByTest 列出测试的全部报告
func (r *reportRepositoryImpl) ListByTest(testID string) ([]*model.ABTestReport, error) {
	var reports []*model.ABTestReport
	err := r.db.Where("test_id = ?", testID).Order("generated_at DESC").Find(&reports).Error
	return reports, err
}
