package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
)

// Service is a billable catalog entry referenced by proposal line items.
type Service struct {
	ID          int             `gorm:"primary_key" json:"id"`
	TenantId    string          `gorm:"index;size:64;not null" json:"tenant_id"`
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"unit_price"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Service) GetTenantId() string { return s.TenantId }

type NewService struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func CreateService(ctx context.Context, input *NewService) (*Service, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, utils.ErrorValidation("unit_price", "unit price must not be negative")
	}

	service := Service{
		TenantId:    tenantId,
		Name:        input.Name,
		Description: input.Description,
		UnitPrice:   input.UnitPrice,
		IsActive:    true,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&service).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Service](tenantId); err != nil {
		return nil, err
	}
	return &service, nil
}

func GetService(ctx context.Context, id int) (*Service, error) {
	return GetResource[Service](ctx, id)
}

func ListServices(ctx context.Context) ([]*Service, error) {
	return ListAllResource[Service, Service](ctx, "name ASC")
}
