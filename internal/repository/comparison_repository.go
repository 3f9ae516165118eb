package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// comparisonRepositoryImpl 比对配对仓库
type comparisonRepositoryImpl struct {
	db *gorm.DB
}

// NewComparisonRepository 创建比对配对仓库
func NewComparisonRepository(db *gorm.DB) ComparisonRepository {
	return &comparisonRepositoryImpl{db: db}
}

// Create 创建配对
func (r *comparisonRepositoryImpl) Create(pair *model.ComparisonPair) error {
	if pair.ID == "" {
		pair.ID = uuid.New().String()
	}
	return r.db.Create(pair).Error
}

// GetByID 获取配对
func (r *comparisonRepositoryImpl) GetByID(id string) (*model.ComparisonPair, error) {
	var pair model.ComparisonPair
	err := r.db.Where("id = ?", id).First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// ListByTest 列出测试下的所有配对
func (r *comparisonRepositoryImpl) ListByTest(testID string) ([]*model.ComparisonPair, error) {
	var pairs []*model.ComparisonPair
	err := r.db.Where("test_id = ?", testID).Order("created_at ASC").Find(&pairs).Error
	return pairs, err
}

// Update 更新配对
func (r *comparisonRepositoryImpl) Update(pair *model.ComparisonPair) error {
	return r.db.Save(pair).Error
}
