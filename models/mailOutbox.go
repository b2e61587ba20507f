package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/utils"
	"gorm.io/gorm"
)

// MailMessageRecord is the transactional outbox row for outbound mail.
// Rows are written inside the same transaction as the state change that
// triggered them and published to Pub/Sub by the dispatcher afterwards.
type MailMessageRecord struct {
	ID            int      `gorm:"primary_key;index:idx_mail_outbox_dispatch,priority:3" json:"id"`
	TenantId      string   `gorm:"size:64;not null;index" json:"tenant_id"`
	Kind          MailKind `gorm:"size:30;not null" json:"kind"`
	Recipient     string   `gorm:"size:255;not null" json:"recipient"`
	Payload       []byte   `gorm:"type:blob" json:"payload"`
	PublishStatus string   `gorm:"size:20;index;not null;default:'PENDING';index:idx_mail_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD

	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	DeliveredAt      *time.Time `gorm:"index" json:"delivered_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_mail_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToPubSubMailMessage(record MailMessageRecord) config.PubSubMailMessage {
	return config.PubSubMailMessage{
		ID:            record.ID,
		TenantId:      record.TenantId,
		Kind:          string(record.Kind),
		Recipient:     record.Recipient,
		Payload:       json.RawMessage(record.Payload),
		CorrelationId: record.CorrelationId,
	}
}

// EnqueueMail writes an outbox row for the dispatcher to publish. The passed
// db handle may be a transaction so the row commits or rolls back with the
// caller's state change. Outbox-disabled deployments drop the mail silently.
func EnqueueMail(ctx context.Context, db *gorm.DB, tenantId string, kind MailKind, recipient string, payload any) error {
	if config.MailOutboxDisabled() {
		return nil
	}
	if recipient == "" {
		return utils.ErrorValidation("recipient", "mail recipient is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := MailMessageRecord{
		TenantId:      tenantId,
		Kind:          kind,
		Recipient:     recipient,
		Payload:       body,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return db.WithContext(ctx).Create(&record).Error
}
