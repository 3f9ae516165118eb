package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// abTestRepositoryImpl A/B 测试仓库
type abTestRepositoryImpl struct {
	db *gorm.DB
}

// NewABTestRepository 创建 A/B 测试仓库
func NewABTestRepository(db *gorm.DB) ABTestRepository {
	return &abTestRepositoryImpl{db: db}
}

// Create 创建测试
func (r *abTestRepositoryImpl) Create(test *model.ABTest) error {
	if test.ID == "" {
		test.ID = uuid.New().String()
	}
	return r.db.Create(test).Error
}

// GetByID 获取测试，预加载结果序列（按写入顺序）与聚合指标
func (r *abTestRepositoryImpl) GetByID(id string) (*model.ABTest, error) {
	var test model.ABTest
	err := r.db.
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("AggregateMetrics", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", id).First(&test).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// List 列出测试（支持按创建者筛选和分页）
func (r *abTestRepositoryImpl) List(createdBy string, offset, limit int) ([]*model.ABTest, int64, error) {
	var tests []*model.ABTest
	var total int64

	query := r.db.Model(&model.ABTest{})
	if createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tests).Error
	return tests, total, err
}

// Update 更新测试
func (r *abTestRepositoryImpl) Update(test *model.ABTest) error {
	return r.db.Omit("Results", "AggregateMetrics").Save(test).Error
}

// Delete 删除测试
func (r *abTestRepositoryImpl) Delete(id string) error {
	return r.db.Delete(&model.ABTest{}, "id = ?", id).Error
}

// AppendResult 追加一条执行结果
func (r *abTestRepositoryImpl) AppendResult(result *model.RunResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	return r.db.Create(result).Error
}

// ReplaceAggregates 整体替换测试的聚合指标
// 删除与写入在同一事务内完成，失败时不留下部分结果
func (r *abTestRepositoryImpl) ReplaceAggregates(testID string, aggregates []*model.AggregateMetrics) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", testID).Delete(&model.AggregateMetrics{}).Error; err != nil {
			return err
		}
		for _, agg := range aggregates {
			agg.ID = 0
			agg.TestID = testID
			if err := tx.Create(agg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
