package models

import (
	"context"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"github.com/sirupsen/logrus"
)

// Attachment is a ledger row for a blob that already lives in object storage.
// The owner is a tagged union: exactly one of company, opportunity or task,
// discriminated by OwnerType. The bytes themselves are never touched here.
type Attachment struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	TenantId     string              `gorm:"index;size:64;not null" json:"tenant_id"`
	OwnerType    AttachmentOwnerType `gorm:"type:enum('company','opportunity','task');not null;index:idx_attachment_owner,priority:1" json:"owner_type"`
	OwnerId      int                 `gorm:"not null;index:idx_attachment_owner,priority:2" json:"owner_id"`
	UploaderId   int                 `gorm:"index;not null" json:"uploader_id"`
	FileName     string              `gorm:"size:255;not null" json:"file_name"`
	FileUrl      string              `gorm:"size:500;not null" json:"file_url"`
	ThumbnailUrl string              `gorm:"size:500" json:"thumbnail_url"`
	MimeType     string              `gorm:"size:100" json:"mime_type"`
	ByteSize     int64               `gorm:"not null" json:"byte_size"`
	Description  string              `gorm:"type:text" json:"description"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a Attachment) GetTenantId() string { return a.TenantId }

type NewAttachment struct {
	OwnerType    AttachmentOwnerType `json:"owner_type" binding:"required"`
	OwnerId      int                 `json:"owner_id" binding:"required"`
	FileName     string              `json:"file_name" binding:"required"`
	FileUrl      string              `json:"file_url" binding:"required"`
	ThumbnailUrl string              `json:"thumbnail_url"`
	MimeType     string              `json:"mime_type"`
	ByteSize     int64               `json:"byte_size"`
	Description  string              `json:"description"`
}

// validateOwner resolves the owner reference under the caller's tenant. A
// foreign-tenant owner reads as absent.
func validateOwner(ctx context.Context, tenantId string, ownerType AttachmentOwnerType, ownerId int) error {
	switch ownerType {
	case AttachmentOwnerCompany:
		return utils.ValidateResourceId[Company](ctx, tenantId, ownerId)
	case AttachmentOwnerOpportunity:
		return utils.ValidateResourceId[Opportunity](ctx, tenantId, ownerId)
	case AttachmentOwnerTask:
		return utils.ValidateResourceId[OpportunityTask](ctx, tenantId, ownerId)
	}
	return utils.ErrorValidation("owner_type", "invalid attachment owner type")
}

func CreateAttachment(ctx context.Context, input *NewAttachment) (*Attachment, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.ErrorUnauthorized("user id is required")
	}

	if !input.OwnerType.Valid() {
		return nil, utils.ErrorValidation("owner_type", "invalid attachment owner type")
	}
	if err := validateOwner(ctx, tenantId, input.OwnerType, input.OwnerId); err != nil {
		return nil, err
	}

	attachment := Attachment{
		TenantId:     tenantId,
		OwnerType:    input.OwnerType,
		OwnerId:      input.OwnerId,
		UploaderId:   userId,
		FileName:     input.FileName,
		FileUrl:      input.FileUrl,
		ThumbnailUrl: input.ThumbnailUrl,
		MimeType:     input.MimeType,
		ByteSize:     input.ByteSize,
		Description:  input.Description,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func ListAttachments(ctx context.Context, ownerType AttachmentOwnerType, ownerId int) ([]*Attachment, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	if !ownerType.Valid() {
		return nil, utils.ErrorValidation("owner_type", "invalid attachment owner type")
	}
	if err := validateOwner(ctx, tenantId, ownerType, ownerId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var attachments []*Attachment
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND owner_type = ? AND owner_id = ?", tenantId, ownerType, ownerId).
		Order("created_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// DeleteAttachment removes the ledger row and makes a best-effort attempt on
// the backing blob. A missing blob counts as deleted; any other blob failure
// is logged and the row still goes away.
func DeleteAttachment(ctx context.Context, id int) (*Attachment, error) {
	tenantId, ok := utils.GetTenantIdFromContext(ctx)
	if !ok || tenantId == "" {
		return nil, utils.ErrorUnauthorized("tenant id is required")
	}

	attachment, err := utils.FetchModel[Attachment](ctx, tenantId, id)
	if err != nil {
		return nil, err
	}

	for _, fileUrl := range []string{attachment.FileUrl, attachment.ThumbnailUrl} {
		if fileUrl == "" {
			continue
		}
		objectKey := utils.ExtractObjectKeyFromURL(fileUrl)
		if objectKey == "" {
			continue
		}
		if err := utils.DeleteObjectFromGCS(ctx, objectKey); err != nil {
			config.GetLogger().WithFields(logrus.Fields{
				"module":    "attachment.go",
				"funcName":  "DeleteAttachment",
				"objectKey": objectKey,
			}).Warn("blob delete failed, removing ledger row anyway: " + err.Error())
		}
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}
