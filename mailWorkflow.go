package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/nexvora/crm_backend/config"
	"github.com/nexvora/crm_backend/mailer"
	"github.com/nexvora/crm_backend/models"
	"github.com/nexvora/crm_backend/utils"
	"github.com/nexvora/crm_backend/workflow"
	"github.com/sirupsen/logrus"
)

const mailPushHandlerName = "mail_push"

type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// mailPubSubHandler receives Pub/Sub push deliveries for the mail topic and
// hands them to the mail service. Duplicate deliveries are absorbed by the
// DB-backed idempotency key, so a redelivered message never sends twice.
func mailPubSubHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg PubSubMessage
		logger := config.GetLogger()

		// Redis lock is a best-effort optimization; correctness rests on the
		// idempotency key, not on the lock.
		redisLock := config.GetRedisLock()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "mailWorkflow.go", "mailPubSubHandler", "io.ReadAll", nil, err)
			// Malformed request body: ack/drop to avoid infinite retries.
			c.Status(http.StatusNoContent)
			return
		}

		// byte slice unmarshalling handles base64 decoding.
		if err := json.Unmarshal(body, &msg); err != nil {
			config.LogError(logger, "mailWorkflow.go", "mailPubSubHandler", "Unmarshal body", body, err)
			// Malformed request: ack/drop to avoid infinite retries.
			c.Status(http.StatusNoContent)
			return
		}

		var m config.PubSubMailMessage
		if err := json.Unmarshal(msg.Message.Data, &m); err != nil {
			config.LogError(logger, "mailWorkflow.go", "mailPubSubHandler", "Unmarshal pubsub message", msg.Message.Data, err)
			// Malformed Pub/Sub payload: ack/drop to avoid infinite retries.
			c.Status(http.StatusNoContent)
			return
		}

		// Basic validation to avoid retry loops on poisoned messages.
		if m.TenantId == "" || m.Kind == "" || m.Recipient == "" {
			config.LogError(logger, "mailWorkflow.go", "mailPubSubHandler", "Invalid pubsub message (missing required fields)", m, fmt.Errorf("tenant_id/kind/recipient required"))
			c.Status(http.StatusNoContent)
			return
		}

		// Correlation ID propagation: prefer payload correlation_id; fall back to Pub/Sub message ID.
		correlationID := m.CorrelationId
		if correlationID == "" {
			correlationID = msg.Message.ID
		}

		// Best-effort: try to obtain a per-tenant lock to avoid long in-request blocking.
		// If Redis is unavailable / lock cannot be obtained, continue anyway.
		var lock *redislock.Lock
		if redisLock == nil {
			logger.WithFields(logrus.Fields{
				"field":      "mailPubSubHandler",
				"tenant_id":  m.TenantId,
				"kind":       m.Kind,
				"message_id": msg.Message.ID,
			}).Warn("redis lock not ready; proceeding without redis lock")
		} else {
			lock, err = redisLock.Obtain(c.Request.Context(), fmt.Sprintf("lock:mail:%s", m.TenantId), 30*time.Second, nil)
			if err == redislock.ErrNotObtained {
				logger.WithFields(logrus.Fields{
					"field":      "mailPubSubHandler",
					"tenant_id":  m.TenantId,
					"kind":       m.Kind,
					"message_id": msg.Message.ID,
				}).Warn("could not obtain redis lock; proceeding without redis lock")
				lock = nil
			} else if err != nil {
				logger.WithFields(logrus.Fields{
					"field":      "mailPubSubHandler",
					"tenant_id":  m.TenantId,
					"kind":       m.Kind,
					"message_id": msg.Message.ID,
				}).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
				lock = nil
			}
		}
		defer func() {
			if lock == nil {
				return
			}
			if releaseErr := lock.Release(c.Request.Context()); releaseErr != nil {
				logger.WithFields(logrus.Fields{
					"field":      "mailPubSubHandler",
					"tenant_id":  m.TenantId,
					"message_id": msg.Message.ID,
				}).Warn("failed to release redis lock: " + releaseErr.Error())
			}
		}()

		ctx := context.WithValue(c.Request.Context(), utils.ContextKeyTenantId, m.TenantId)
		ctx = context.WithValue(ctx, utils.ContextKeyUserId, 0)
		ctx = context.WithValue(ctx, utils.ContextKeyUserName, "System")
		ctx = utils.SetCorrelationIdInContext(ctx, correlationID)
		// Key the idempotency record on the outbox row, not the transport
		// message, so a row redelivered via Pub/Sub and the direct processor
		// still counts as one delivery. Old envelopes without an outbox id
		// fall back to the transport id.
		messageId := msg.Message.ID
		if m.ID > 0 {
			messageId = workflow.OutboxMessageId(m.ID)
		}
		if err := deliverMailMessage(ctx, logger, m, messageId); err != nil {
			logger.WithFields(logrus.Fields{
				"field":          "mailPubSubHandler",
				"tenant_id":      m.TenantId,
				"kind":           m.Kind,
				"message_id":     msg.Message.ID,
				"correlation_id": correlationID,
			}).Error("pubsub processing failed: " + err.Error())
			// Non-2xx tells Pub/Sub to retry (and potentially route to DLQ).
			c.Status(http.StatusInternalServerError)
			return
		}

		// Success: ack.
		c.Status(http.StatusNoContent)
	}
}

func deliverMailMessage(ctx context.Context, logger *logrus.Logger, m config.PubSubMailMessage, messageId string) error {
	db := config.GetDB()
	if db == nil {
		return fmt.Errorf("database not ready")
	}
	db = db.WithContext(ctx)

	skip, err := workflow.BeginIdempotency(db, m.TenantId, mailPushHandlerName, messageId)
	if err != nil {
		return err
	}
	if skip {
		logger.WithFields(logrus.Fields{
			"field":      "deliverMailMessage",
			"tenant_id":  m.TenantId,
			"kind":       m.Kind,
			"message_id": messageId,
		}).Info("mail already delivered, skipping")
		return nil
	}

	var payload any
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			// Payload was marshalled by us at enqueue time; a broken one is a bug,
			// not a transient fault. Deliver with the raw bytes instead.
			payload = string(m.Payload)
		}
	}

	if err := mailer.Default().Send(ctx, m.Kind, m.Recipient, payload); err != nil {
		if markErr := workflow.MarkIdempotencyFailed(db, m.TenantId, mailPushHandlerName, messageId, err); markErr != nil {
			config.LogError(logger, "mailWorkflow.go", "deliverMailMessage", "MarkIdempotencyFailed", m, markErr)
		}
		return err
	}

	if err := workflow.MarkIdempotencySucceeded(db, m.TenantId, mailPushHandlerName, messageId); err != nil {
		config.LogError(logger, "mailWorkflow.go", "deliverMailMessage", "MarkIdempotencySucceeded", m, err)
	}

	if err := db.Model(&models.MailMessageRecord{}).
		Where("id = ? AND tenant_id = ?", m.ID, m.TenantId).
		Update("delivered_at", time.Now()).Error; err != nil {
		config.LogError(logger, "mailWorkflow.go", "deliverMailMessage", "Update delivered_at", m, err)
	}

	return nil
}
