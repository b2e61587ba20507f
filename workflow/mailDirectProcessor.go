package workflow

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/nexvora/crm_backend/mailer"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MailDirectProcessor delivers mail outbox rows straight to the mail service
// without going through Pub/Sub. Intended for local/dev environments and as a
// backup worker when the push pipeline is misconfigured; the idempotency key
// makes overlap with the push handler safe.
type MailDirectProcessor struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	WorkerID  string
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

func NewMailDirectProcessor(db *gorm.DB, logger *logrus.Logger) *MailDirectProcessor {
	return &MailDirectProcessor{
		DB:        db,
		Logger:    logger,
		WorkerID:  "direct-" + time.Now().Format("20060102-150405.000"),
		BatchSize: 50,
		Interval:  2 * time.Second,
		LockTTL:   30 * time.Second,
	}
}

// ShouldRunDirectMailProcessor decides whether the direct worker runs.
// Explicit MAIL_DIRECT_PROCESSING wins; otherwise it runs only when no
// Pub/Sub mail topic is configured.
func ShouldRunDirectMailProcessor() bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv("MAIL_DIRECT_PROCESSING")))
	if val == "true" {
		return true
	}
	if val == "false" {
		return false
	}
	return strings.TrimSpace(os.Getenv("PUBSUB_MAIL_TOPIC")) == ""
}

func (p *MailDirectProcessor) Run(ctx context.Context) {
	if p == nil || p.DB == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

func (p *MailDirectProcessor) processOnce(ctx context.Context) {
	now := time.Now().UTC()
	staleBefore := now.Add(-p.LockTTL)

	var claimed []models.MailMessageRecord
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("publish_status IN ?", []string{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}).
			Where("delivered_at IS NULL").
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("id ASC").
			Limit(p.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		for i := range claimed {
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &p.WorkerID
			if err := tx.Model(&models.MailMessageRecord{}).
				Where("id = ?", claimed[i].ID).
				Updates(map[string]interface{}{
					"locked_at": claimed[i].LockedAt,
					"locked_by": claimed[i].LockedBy,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for _, rec := range claimed {
		procCtx := context.WithValue(ctx, utils.ContextKeyTenantId, rec.TenantId)
		procCtx = utils.SetCorrelationIdInContext(procCtx, rec.CorrelationId)

		if err := p.deliverOne(procCtx, rec); err != nil {
			errMsg := err.Error()
			_ = p.DB.WithContext(ctx).Model(&models.MailMessageRecord{}).
				Where("id = ?", rec.ID).
				Updates(map[string]interface{}{
					"last_publish_error": &errMsg,
					"locked_at":          nil,
					"locked_by":          nil,
				}).Error
			if p.Logger != nil {
				p.Logger.WithFields(logrus.Fields{
					"field":     "MailDirectProcessor",
					"tenant_id": rec.TenantId,
					"kind":      rec.Kind,
					"record_id": rec.ID,
				}).Error("direct mail delivery failed: " + errMsg)
			}
			continue
		}

		deliveredAt := time.Now().UTC()
		_ = p.DB.WithContext(ctx).Model(&models.MailMessageRecord{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"publish_status": models.OutboxPublishStatusSent,
				"delivered_at":   &deliveredAt,
				"locked_at":      nil,
				"locked_by":      nil,
			}).Error
	}
}

// deliverOne sends one outbox row through the mail service, deduplicated
// against the push handler via the shared idempotency key.
func (p *MailDirectProcessor) deliverOne(ctx context.Context, rec models.MailMessageRecord) error {
	db := p.DB.WithContext(ctx)
	messageId := OutboxMessageId(rec.ID)

	skip, err := BeginIdempotency(db, rec.TenantId, "mail_push", messageId)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	var payload any
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			payload = string(rec.Payload)
		}
	}

	if err := mailer.Default().Send(ctx, string(rec.Kind), rec.Recipient, payload); err != nil {
		if markErr := MarkIdempotencyFailed(db, rec.TenantId, "mail_push", messageId, err); markErr != nil && p.Logger != nil {
			p.Logger.WithFields(logrus.Fields{
				"field":     "MailDirectProcessor",
				"record_id": rec.ID,
			}).Error("failed to mark idempotency failed: " + markErr.Error())
		}
		return err
	}

	return MarkIdempotencySucceeded(db, rec.TenantId, "mail_push", messageId)
}
