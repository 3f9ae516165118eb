package repository

import (
	"gorm.io/gorm"

	"github.com/kenfungv/prompt-hub/internal/model"
)

// authRepositoryImpl 认证仓库
type authRepositoryImpl struct {
	db *gorm.DB
}

// NewAuthRepository 创建认证仓库
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepositoryImpl{db: db}
}

// CreateUser 创建用户
func (r *authRepositoryImpl) CreateUser(user *model.User) error {
	return r.db.Create(user).Error
}

// GetUserByID 根据 ID 获取用户
func (r *authRepositoryImpl) GetUserByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 根据邮箱获取用户
func (r *authRepositoryImpl) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 根据用户名获取用户
func (r *authRepositoryImpl) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser 更新用户
func (r *authRepositoryImpl) UpdateUser(user *model.User) error {
	return r.db.Save(user).Error
}

// CreateToken 保存令牌
func (r *authRepositoryImpl) CreateToken(token *model.AuthToken) error {
	return r.db.Create(token).Error
}

// GetTokenByValue 根据令牌值获取记录
func (r *authRepositoryImpl) GetTokenByValue(value string) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.Where("token = ?", value).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeToken 撤销令牌
func (r *authRepositoryImpl) RevokeToken(id string) error {
	return r.db.Model(&model.AuthToken{}).Where("id = ?", id).
		Update("is_revoked", true).Error
}
