package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
)

type Company struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:64;not null" json:"tenant_id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Website   string    `gorm:"size:255" json:"website"`
	VatNumber string    `gorm:"size:50" json:"vat_number"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Company) GetTenantId() string { return c.TenantId }

type NewCompany struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	VatNumber string `json:"vat_number"`
	Address   string `json:"address"`
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	company := Company{
		TenantId:  tenantId,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     utils.NormalizePhoneNumber(input.Phone, utils.CountryCode),
		Website:   input.Website,
		VatNumber: input.VatNumber,
		Address:   input.Address,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Company](tenantId); err != nil {
		return nil, err
	}
	return &company, nil
}

func GetCompany(ctx context.Context, id int) (*Company, error) {
	return GetResource[Company](ctx, id)
}

func ListCompanies(ctx context.Context) ([]*Company, error) {
	return ListAllResource[Company, Company](ctx, "name ASC")
}

func DeleteCompany(ctx context.Context, id int) (*Company, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	result, err := utils.FetchModel[Company](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Company](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Company](tenantId); err != nil {
		return nil, err
	}
	return result, nil
}
