// Package auth 提供认证服务单元测试
package auth

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/kenfungv/prompt-hub/internal/model"
	"github.com/kenfungv/prompt-hub/internal/repository"
)

// ========== 内存假仓库 ==========

type fakeAuthRepo struct {
	users  map[string]*model.User      // id -> user
	tokens map[string]*model.AuthToken // 令牌值 -> 记录
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:  make(map[string]*model.User),
		tokens: make(map[string]*model.AuthToken),
	}
}

func (f *fakeAuthRepo) CreateUser(user *model.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeAuthRepo) GetUserByID(id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeAuthRepo) GetUserByEmail(email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) GetUserByUsername(username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) UpdateUser(user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeAuthRepo) CreateToken(token *model.AuthToken) error {
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeAuthRepo) GetTokenByValue(value string) (*model.AuthToken, error) {
	token, ok := f.tokens[value]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *token
	return &copied, nil
}

func (f *fakeAuthRepo) RevokeToken(id string) error {
	for _, token := range f.tokens {
		if token.ID == id {
			token.IsRevoked = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func newTestService() *Service {
	return NewService(&repository.Repositories{Auth: newFakeAuthRepo()})
}

func register(t *testing.T, svc *Service, email string) *model.User {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "user-" + email,
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return resp.User
}

// ========== 注册与登录测试 ==========

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user := register(t, svc, "alice@example.com")
	if user.ID == "" {
		t.Error("expected generated user ID")
	}
	if user.PasswordHash == "secret123" {
		t.Error("password must be stored hashed")
	}

	resp, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("login failed: %s", resp.Message)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("expected access and refresh tokens")
	}
}

func TestService_RegisterRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	register(t, svc, "alice@example.com")

	_, err := svc.Register(ctx, &RegisterRequest{
		Username: "other",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err == nil {
		t.Error("expected error for duplicate email")
	}

	_, err = svc.Register(ctx, &RegisterRequest{
		Username: "user-alice@example.com",
		Email:    "other@example.com",
		Password: "secret123",
	})
	if err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	register(t, svc, "alice@example.com")

	resp, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Success {
		t.Error("login with wrong password must not succeed")
	}
	if resp.Token != "" {
		t.Error("no token should be issued on failed login")
	}
}

// ========== 令牌往返测试 ==========

func TestService_TokenRoundtrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user := register(t, svc, "alice@example.com")
	resp, _ := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})

	// 签发的访问令牌应能验证回同一用户
	validated, err := svc.ValidateToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if validated.ID != user.ID {
		t.Errorf("validated user = %s, want %s", validated.ID, user.ID)
	}

	// 撤销后同一令牌不再有效
	if err := svc.RevokeToken(ctx, resp.Token); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}
	if _, err := svc.ValidateToken(ctx, resp.Token); err == nil {
		t.Error("revoked token must not validate")
	}
}

func TestService_ValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService()

	if _, err := svc.ValidateToken(context.Background(), "not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestService_RefreshTokenRotation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	register(t, svc, "alice@example.com")
	resp, _ := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})

	accessToken, refreshToken, err := svc.RefreshToken(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if accessToken == "" || refreshToken == "" {
		t.Fatal("expected a new token pair")
	}

	// 旧刷新令牌已被轮换撤销
	if _, _, err := svc.RefreshToken(ctx, resp.RefreshToken); err == nil {
		t.Error("rotated refresh token must not refresh again")
	}

	// 新访问令牌可用
	if _, err := svc.ValidateToken(ctx, accessToken); err != nil {
		t.Errorf("new access token invalid: %v", err)
	}
}

func TestService_RefreshRejectsAccessToken(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	register(t, svc, "alice@example.com")
	resp, _ := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})

	// 访问令牌不能用于刷新
	if _, _, err := svc.RefreshToken(ctx, resp.Token); err == nil {
		t.Error("access token must not be accepted as refresh token")
	}
}

// ========== 修改密码测试 ==========

func TestService_ChangePassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user := register(t, svc, "alice@example.com")

	if err := svc.ChangePassword(ctx, user.ID, "wrong-pass", "newsecret"); err == nil {
		t.Error("expected error for wrong old password")
	}

	if err := svc.ChangePassword(ctx, user.ID, "secret123", "newsecret"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	resp, _ := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "newsecret"})
	if !resp.Success {
		t.Error("login with new password should succeed")
	}
	resp, _ = svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	if resp.Success {
		t.Error("login with old password should fail")
	}
}
