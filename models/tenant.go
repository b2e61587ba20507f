package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"github.com/sirupsen/logrus"
)

// Tenant is an isolated organization. Every workflow record carries its id and
// is invisible to principals of other tenants.
type Tenant struct {
	ID        uuid.UUID `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Plan      string    `gorm:"size:50;default:free" json:"plan"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTenant struct {
	Name string `json:"name" binding:"required"`
	Plan string `json:"plan"`
}

func CreateTenant(ctx context.Context, input *NewTenant) (*Tenant, error) {
	db := config.GetDB()

	tenant := Tenant{
		ID:       uuid.New(),
		Name:     input.Name,
		Plan:     input.Plan,
		IsActive: utils.NewTrue(),
	}
	if tenant.Plan == "" {
		tenant.Plan = "free"
	}
	if err := db.WithContext(ctx).Create(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetTenantById fetches a tenant by primary key. Tenants are the scope roots;
// the row itself has no tenant_id column, so the guard plugin does not apply.
func GetTenantById(ctx context.Context, id string) (*Tenant, error) {
	tenantId, err := uuid.Parse(id)
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	db := config.GetDB()
	var tenant Tenant
	if err := db.WithContext(ctx).First(&tenant, "id = ?", tenantId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &tenant, nil
}

func earliestTenant(ctx context.Context) (*Tenant, error) {
	db := config.GetDB()
	var tenant Tenant
	err := db.WithContext(ctx).Order("created_at ASC, id ASC").First(&tenant).Error
	if err != nil {
		return nil, utils.ErrorNotFound("no organizations")
	}
	return &tenant, nil
}

// ResolveTenant resolves the tenant a principal may act on for this request.
//
// Superadmins may target any tenant explicitly. Without an explicit target
// they fall back to their own membership, then to the earliest-created tenant.
// The last fallback exists only to keep superadmin tooling usable and is
// logged every time; automated tooling must not rely on it.
//
// Everyone else must have a membership, and an explicit target differing from
// it is rejected outright.
func ResolveTenant(ctx context.Context, user *User, requestedTenantId string) (*Tenant, error) {
	if user == nil {
		return nil, utils.ErrorUnauthorized("no principal")
	}

	if user.Role == UserRoleSuperadmin {
		if requestedTenantId != "" {
			return GetTenantById(ctx, requestedTenantId)
		}
		if user.TenantId != "" {
			return GetTenantById(ctx, user.TenantId)
		}
		tenant, err := earliestTenant(ctx)
		if err != nil {
			return nil, err
		}
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "tenant.go",
			"funcName": "ResolveTenant",
			"userId":   user.ID,
			"tenantId": tenant.ID.String(),
		}).Warn("superadmin tenant fallback: no tenant requested, using earliest-created organization")
		return tenant, nil
	}

	if user.TenantId == "" {
		return nil, utils.ErrorUnauthorized("no tenant")
	}
	if requestedTenantId != "" && requestedTenantId != user.TenantId {
		return nil, utils.ErrorForbidden("cross-tenant access")
	}
	return GetTenantById(ctx, user.TenantId)
}
