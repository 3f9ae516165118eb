package model

import "time"

// 用户偏好取值
const (
	PreferenceA   = "a"
	PreferenceB   = "b"
	PreferenceTie = "tie"
)

// ComparisonPair 结果比对配对
// 引用两条 RunResult，由人工评分填充；实际使用中写一次后不再变更，
// 但存储层不强制该约束
type ComparisonPair struct {
	ID        string `gorm:"primaryKey;size:36" json:"comparison_id"`
	TestID    string `gorm:"index;size:36;not null" json:"test_id"`
	ResultAID string `gorm:"size:36;not null" json:"result_a_id"`
	ResultBID string `gorm:"size:36;not null" json:"result_b_id"`

	// 用户评分
	UserPreference   *string            `gorm:"size:10" json:"user_preference,omitempty"` // a / b / tie
	RatingDimensions map[string]float64 `gorm:"type:jsonb;serializer:json" json:"rating_dimensions,omitempty"`
	Feedback         *string            `gorm:"type:text" json:"feedback,omitempty"`
	RatedAt          *time.Time         `json:"rated_at,omitempty"`
	RatedBy          *string            `gorm:"size:36" json:"rated_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsRated 是否已评分
func (p *ComparisonPair) IsRated() bool {
	return p.RatedAt != nil
}

// TableName 指定表名
func (ComparisonPair) TableName() string {
	return "comparison_pairs"
}
