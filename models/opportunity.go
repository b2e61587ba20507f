package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Opportunity is a potential deal for a company. Tasks and proposals hang
// off an opportunity, so its tenant anchors everything below it.
type Opportunity struct {
	ID             int             `gorm:"primary_key" json:"id"`
	TenantId       string          `gorm:"index;size:64;not null" json:"tenant_id"`
	CompanyId      int             `gorm:"index;not null" json:"company_id"`
	Company        *Company        `json:"company,omitempty"`
	Title          string          `gorm:"size:150;not null" json:"title" binding:"required"`
	Description    string          `gorm:"type:text" json:"description"`
	EstimatedValue decimal.Decimal `gorm:"type:decimal(20,8)" json:"estimated_value"`
	Stage          string          `gorm:"size:30;default:'OPEN'" json:"stage"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o Opportunity) GetTenantId() string { return o.TenantId }

type NewOpportunity struct {
	CompanyId      int             `json:"company_id" binding:"required"`
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

func CreateOpportunity(ctx context.Context, input *NewOpportunity) (*Opportunity, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	// the company anchor must live in the caller's tenant
	if err := utils.ValidateResourceId[Company](ctx, tenantId, input.CompanyId); err != nil {
		return nil, err
	}

	opportunity := Opportunity{
		TenantId:       tenantId,
		CompanyId:      input.CompanyId,
		Title:          input.Title,
		Description:    input.Description,
		EstimatedValue: input.EstimatedValue,
		Stage:          "OPEN",
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&opportunity).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Opportunity](tenantId); err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func GetOpportunity(ctx context.Context, id int) (*Opportunity, error) {
	return GetResource[Opportunity](ctx, id, "Company")
}

func ListOpportunities(ctx context.Context) ([]*Opportunity, error) {
	return ListAllResource[Opportunity, Opportunity](ctx, "created_at DESC", "Company")
}

func DeleteOpportunity(ctx context.Context, id int) (*Opportunity, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	result, err := utils.FetchModel[Opportunity](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}

	taskCount, err := utils.ResourceCountWhere[OpportunityTask](ctx, tenantId, "opportunity_id = ?", id)
	if err != nil {
		return nil, err
	}
	if taskCount > 0 {
		return nil, utils.ErrorConflict("opportunity still has tasks")
	}
	proposalCount, err := utils.ResourceCountWhere[Proposal](ctx, tenantId, "opportunity_id = ?", id)
	if err != nil {
		return nil, err
	}
	if proposalCount > 0 {
		return nil, utils.ErrorConflict("opportunity still has proposals")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND owner_type = ? AND owner_id = ?",
			tenantId, AttachmentOwnerOpportunity, id).Delete(&Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(result).Error
	})
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Opportunity](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Opportunity](tenantId); err != nil {
		return nil, err
	}
	return result, nil
}
