package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
)

// User is an authenticated principal. TenantId is empty only for superadmins.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:64" json:"tenant_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('SUPERADMIN','OWNER','MANAGER','INFLUENCER','CLIENT');default:CLIENT" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	TenantId string   `json:"tenant_id"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role" binding:"required"`
}

type LoginInfo struct {
	Token      string `json:"token"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	TenantId   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if !input.Role.Valid() {
		return nil, utils.ErrorValidation("role", "invalid role")
	}
	// Superadmin accounts are minted only by an already-authenticated
	// superadmin. A public registration call never carries that flag.
	if input.Role == UserRoleSuperadmin {
		if isSuper, ok := utils.GetIsSuperadminFromContext(ctx); !ok || !isSuper {
			return nil, utils.ErrorForbidden("superadmin accounts cannot be self-registered")
		}
	}
	if input.Role != UserRoleSuperadmin && input.TenantId == "" {
		return nil, utils.ErrorValidation("tenant_id", "tenant is required for non-superadmin users")
	}
	if input.TenantId != "" {
		if _, err := GetTenantById(ctx, input.TenantId); err != nil {
			return nil, err
		}
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	user := User{
		TenantId: input.TenantId,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.ErrorConflict("email already registered")
	}

	// Invite-style notification: failure is logged, never surfaced.
	payload := map[string]string{"name": user.Name, "tenant_id": user.TenantId}
	if err := EnqueueMail(ctx, db, user.TenantId, MailKindInvite, user.Email, payload); err != nil {
		config.LogError(config.GetLogger(), "user.go", "CreateUser", "EnqueueMail", user.Email, err)
	}

	user.PrepareGive()
	return &user, nil
}

func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

// ListTenantUsers returns the tenant's internal users for display expansion.
func ListTenantUsers(ctx context.Context, tenantId string) ([]*User, error) {
	users, err := utils.FetchAllModels[User](ctx, tenantId)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.PrepareGive()
	}
	return users, nil
}

func Login(ctx context.Context, email string, password string) (*LoginInfo, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return nil, utils.ErrorUnauthorized("invalid credentials")
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, utils.ErrorUnauthorized("account disabled")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, utils.ErrorUnauthorized("invalid credentials")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role), user.TenantId)
	if err != nil {
		return nil, err
	}

	// Session record mirrors the JWT lifetime; logout revokes it early. The
	// value is the owning email, which is what session checks resolve.
	if err := config.SetRedisValue("Token:"+token, user.Email, 24*time.Hour); err != nil {
		return nil, err
	}
	if err := config.AddRedisSet("Tokens:"+user.Email, token); err != nil {
		return nil, err
	}

	info := LoginInfo{
		Token:    token,
		Name:     user.Name,
		Role:     string(user.Role),
		TenantId: user.TenantId,
	}
	if user.TenantId != "" {
		if tenant, err := GetTenantById(ctx, user.TenantId); err == nil {
			info.TenantName = tenant.Name
		}
	}
	return &info, nil
}

// Logout destroys the current session token.
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, nil
	}
	email, ok := utils.GetUserEmailFromContext(ctx)
	if !ok || email == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+email, token); err != nil {
		return false, err
	}
	return true, nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
