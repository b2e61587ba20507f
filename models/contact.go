package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
)

// Contact is an external person tied to a tenant, optionally anchored to a
// company. Contacts can be task assignees alongside internal users.
type Contact struct {
	ID        int       `gorm:"primary_key" json:"id"`
	TenantId  string    `gorm:"index;size:64;not null" json:"tenant_id"`
	CompanyId *int      `gorm:"index" json:"company_id"`
	Company   *Company  `json:"company,omitempty"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Position  string    `gorm:"size:100" json:"position"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Contact) GetTenantId() string { return c.TenantId }

type NewContact struct {
	CompanyId *int   `json:"company_id"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	Notes     string `json:"notes"`
}

func CreateContact(ctx context.Context, input *NewContact) (*Contact, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, utils.ErrorValidation("email", "invalid email address")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, utils.ErrorValidation("phone", "invalid phone number")
		}
	}
	if input.CompanyId != nil {
		if err := utils.ValidateResourceId[Company](ctx, tenantId, *input.CompanyId); err != nil {
			return nil, err
		}
	}

	contact := Contact{
		TenantId:  tenantId,
		CompanyId: input.CompanyId,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     utils.NormalizePhoneNumber(input.Phone, utils.CountryCode),
		Position:  input.Position,
		Notes:     input.Notes,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Contact](tenantId); err != nil {
		return nil, err
	}
	return &contact, nil
}

func GetContact(ctx context.Context, id int) (*Contact, error) {
	return GetResource[Contact](ctx, id, "Company")
}

func ListContacts(ctx context.Context) ([]*Contact, error) {
	return ListAllResource[Contact, Contact](ctx, "name ASC", "Company")
}

func DeleteContact(ctx context.Context, id int) (*Contact, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	result, err := utils.FetchModel[Contact](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Contact](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Contact](tenantId); err != nil {
		return nil, err
	}
	return result, nil
}
