package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/textgen"
	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Proposal is a versioned document with a computed total. TotalAmount is
// never stored stale: every mutation that touches items recomputes it from
// the full item set inside the same transaction.
type Proposal struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TenantId         string          `gorm:"index;size:64;not null" json:"tenant_id"`
	CompanyId        int             `gorm:"index;not null" json:"company_id"`
	Company          *Company        `json:"company,omitempty"`
	OpportunityId    *int            `gorm:"index" json:"opportunity_id"`
	Title            string          `gorm:"size:150;not null" json:"title" binding:"required"`
	ShortDescription string          `gorm:"type:text" json:"short_description"`
	Content          string          `gorm:"type:mediumtext" json:"content"`
	Status           ProposalStatus  `gorm:"size:30;not null;default:'DRAFT'" json:"status"`
	Version          int             `gorm:"not null;default:1" json:"version"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total_amount"`
	SentAt           *time.Time      `json:"sent_at"`
	ReviewedAt       *time.Time      `json:"reviewed_at"`
	ReviewedBy       *int            `json:"reviewed_by"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items []ProposalItem `gorm:"foreignKey:ProposalId" json:"items"`
}

func (p Proposal) GetTenantId() string { return p.TenantId }

type ProposalItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProposalId  int             `gorm:"index;not null" json:"proposal_id"`
	ServiceId   int             `gorm:"index;not null" json:"service_id"`
	Description string          `gorm:"size:255" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	ServiceName string `gorm:"-" json:"service_name,omitempty"`
}

type NewProposalItem struct {
	ServiceId   int             `json:"service_id" binding:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" binding:"required"`
	Price       decimal.Decimal `json:"price"`
}

type NewProposal struct {
	CompanyId        int               `json:"company_id" binding:"required"`
	OpportunityId    *int              `json:"opportunity_id"`
	Title            string            `json:"title" binding:"required"`
	ShortDescription string            `json:"short_description"`
	Items            []NewProposalItem `json:"items" binding:"required"`
}

// computeItemTotals validates the incoming item set and derives each line's
// total plus the document total. Item totals are never client-settable.
func computeItemTotals(inputs []NewProposalItem) ([]ProposalItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, utils.ErrorValidation("items", "proposal requires at least one item")
	}

	items := make([]ProposalItem, 0, len(inputs))
	totalAmount := decimal.Zero
	for _, input := range inputs {
		if input.Quantity <= 0 {
			return nil, decimal.Zero, utils.ErrorValidation("quantity", "item quantity must be positive")
		}
		if input.Price.IsNegative() {
			return nil, decimal.Zero, utils.ErrorValidation("price", "item price must not be negative")
		}
		total := input.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
		items = append(items, ProposalItem{
			ServiceId:   input.ServiceId,
			Description: input.Description,
			Quantity:    input.Quantity,
			Price:       input.Price,
			Total:       total,
		})
		totalAmount = totalAmount.Add(total)
	}
	return items, totalAmount, nil
}

// applyStatusStamps mutates the lifecycle timestamps for a status transition.
// Stamps are written once: entering SENT or REVIEW again later leaves the
// first-set values alone. Runs only when the status actually changes.
func applyStatusStamps(proposal *Proposal, newStatus ProposalStatus, userId int, now time.Time) {
	if proposal.Status == newStatus {
		return
	}
	switch newStatus {
	case ProposalStatusSent:
		if proposal.SentAt == nil {
			proposal.SentAt = &now
		}
	case ProposalStatusReview:
		if proposal.ReviewedAt == nil {
			proposal.ReviewedAt = &now
			proposal.ReviewedBy = &userId
		}
	}
	proposal.Status = newStatus
}

func buildPromptContext(ctx context.Context, tenantId string, title string, companyId int, items []ProposalItem, totalAmount decimal.Decimal) textgen.PromptContext {
	prompt := textgen.PromptContext{
		Title:       title,
		TotalAmount: totalAmount,
	}
	if company, err := utils.FetchModel[Company](ctx, tenantId, companyId); err == nil {
		prompt.CompanyName = company.Name
	}
	for _, item := range items {
		description := item.Description
		if description == "" {
			if service, err := utils.FetchModel[Service](ctx, tenantId, item.ServiceId); err == nil {
				description = service.Name
			}
		}
		prompt.Items = append(prompt.Items, textgen.ItemContext{
			Description: description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}
	return prompt
}

// generateContent produces the proposal body, falling back to a plain
// deterministic summary when the generator is disabled or down. Creation
// never fails because generation is unavailable.
func generateContent(ctx context.Context, prompt textgen.PromptContext) string {
	if config.ContentGenerationDisabled() {
		return textgen.FallbackSummary(prompt)
	}
	content, err := textgen.Default().Generate(ctx, prompt)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"module":   "proposal.go",
			"funcName": "generateContent",
			"title":    prompt.Title,
		}).Warn("text generation unavailable, using plain summary: " + err.Error())
		return textgen.FallbackSummary(prompt)
	}
	return content
}

func CreateProposal(ctx context.Context, input *NewProposal) (*Proposal, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	if err := utils.ValidateResourceId[Company](ctx, tenantId, input.CompanyId); err != nil {
		return nil, err
	}
	if input.OpportunityId != nil {
		if err := utils.ValidateResourceId[Opportunity](ctx, tenantId, *input.OpportunityId); err != nil {
			return nil, err
		}
	}
	if err := utils.ValidateResourcesId[Service](ctx, tenantId, serviceIds(input.Items)); err != nil {
		return nil, err
	}

	items, totalAmount, err := computeItemTotals(input.Items)
	if err != nil {
		return nil, err
	}

	prompt := buildPromptContext(ctx, tenantId, input.Title, input.CompanyId, items, totalAmount)
	content := generateContent(ctx, prompt)

	proposal := Proposal{
		TenantId:         tenantId,
		CompanyId:        input.CompanyId,
		OpportunityId:    input.OpportunityId,
		Title:            input.Title,
		ShortDescription: input.ShortDescription,
		Content:          content,
		Status:           ProposalStatusDraft,
		Version:          1,
		TotalAmount:      totalAmount,
		Items:            items,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&proposal).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Proposal](tenantId); err != nil {
		return nil, err
	}
	return &proposal, nil
}

type UpdateProposalInput struct {
	Title            *string            `json:"title"`
	ShortDescription *string            `json:"short_description"`
	Status           *ProposalStatus    `json:"status"`
	Items            *[]NewProposalItem `json:"items"`
}

// UpdateProposal patches scalars, applies one-time status stamps on a status
// change, and replaces the full item set when one is supplied. The item
// replace and total recompute are one transaction: a concurrent reader sees
// the old set or the new set, never a mix. Content is not regenerated on
// edit; stale body text after an item change is accepted behavior.
func UpdateProposal(ctx context.Context, id int, input *UpdateProposalInput) (*Proposal, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	proposal, err := utils.FetchModel[Proposal](ctx, tenantId, id, "Items")
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		proposal.Title = *input.Title
	}
	if input.ShortDescription != nil {
		proposal.ShortDescription = *input.ShortDescription
	}
	if input.Status != nil && *input.Status != "" {
		userId, _ := utils.GetUserIdFromContext(ctx)
		applyStatusStamps(proposal, *input.Status, userId, time.Now())
	}

	var newItems []ProposalItem
	if input.Items != nil {
		if err := utils.ValidateResourcesId[Service](ctx, tenantId, serviceIds(*input.Items)); err != nil {
			return nil, err
		}
		var totalAmount decimal.Decimal
		newItems, totalAmount, err = computeItemTotals(*input.Items)
		if err != nil {
			return nil, err
		}
		proposal.TotalAmount = totalAmount
	}
	proposal.Version++

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Items != nil {
			if err := tx.Where("proposal_id = ?", proposal.ID).Delete(&ProposalItem{}).Error; err != nil {
				return err
			}
			for i := range newItems {
				newItems[i].ProposalId = proposal.ID
			}
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
			proposal.Items = newItems
		}
		return tx.Omit("Items").Save(proposal).Error
	})
	if err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisItem[Proposal](proposal.ID); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Proposal](tenantId); err != nil {
		return nil, err
	}
	return proposal, nil
}

func GetProposal(ctx context.Context, id int) (*Proposal, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}
	return utils.FetchModel[Proposal](ctx, tenantId, id, "Items", "Company")
}

func ListProposals(ctx context.Context) ([]*Proposal, error) {
	return ListAllResource[Proposal, Proposal](ctx, "created_at DESC", "Items", "Company")
}

// DeleteProposal hard-deletes the document and its items together.
func DeleteProposal(ctx context.Context, id int) (*Proposal, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	proposal, err := utils.FetchModel[Proposal](ctx, tenantId, id, "Items")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", proposal.ID).Delete(&ProposalItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(proposal).Error
	})
	if err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisItem[Proposal](proposal.ID); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Proposal](tenantId); err != nil {
		return nil, err
	}
	return proposal, nil
}

// MarkProposalSent records an outbound send for the proposal recipient via
// the mail outbox and stamps sent_at once.
func MarkProposalSent(ctx context.Context, id int, recipient string) (*Proposal, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	proposal, err := utils.FetchModel[Proposal](ctx, tenantId, id, "Items")
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	applyStatusStamps(proposal, ProposalStatusSent, userId, time.Now())
	proposal.Version++

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(proposal).Error; err != nil {
			return err
		}
		payload := map[string]any{
			"proposal_id":  proposal.ID,
			"title":        proposal.Title,
			"total_amount": proposal.TotalAmount,
		}
		return EnqueueMail(ctx, tx, tenantId, MailKindProposalSent, recipient, payload)
	})
	if err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisItem[Proposal](proposal.ID); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Proposal](tenantId); err != nil {
		return nil, err
	}
	return proposal, nil
}

func serviceIds(items []NewProposalItem) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ServiceId)
	}
	return ids
}
