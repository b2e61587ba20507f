package workflow

import (
	"sync"
	"testing"

	"github.com/nexvora/crm_backend/models"
)

// NOTE: These tests are intentionally DB-free. They validate the intended mail
// pipeline semantics:
// - at-least-once Pub/Sub delivery is safe via durable idempotency
// - per-tenant serialization prevents racey interleavings inside the handler
//
// Full DB+PubSub integration tests should be added in an environment that can run MySQL + Pub/Sub emulator.

type fakeDeliverer struct {
	muByTenant map[string]*sync.Mutex
	mu         sync.Mutex
	seen       map[string]bool
	sends      int
}

func newFakeDeliverer() *fakeDeliverer {
	return &fakeDeliverer{
		muByTenant: map[string]*sync.Mutex{},
		seen:       map[string]bool{},
	}
}

func (d *fakeDeliverer) deliver(tenantID, handlerName, messageID string, send func()) {
	// Serialize per tenant (redislock in mailPubSubHandler).
	d.mu.Lock()
	tm := d.muByTenant[tenantID]
	if tm == nil {
		tm = &sync.Mutex{}
		d.muByTenant[tenantID] = tm
	}
	d.mu.Unlock()

	tm.Lock()
	defer tm.Unlock()

	// Deduplicate (models IdempotencyKey).
	key := tenantID + "|" + handlerName + "|" + messageID
	d.mu.Lock()
	if d.seen[key] {
		d.mu.Unlock()
		return
	}
	d.seen[key] = true
	d.mu.Unlock()

	send()

	d.mu.Lock()
	d.sends++
	d.mu.Unlock()
}

func TestMailDelivery_DuplicateDelivery_SendsOnce(t *testing.T) {
	d := newFakeDeliverer()

	const (
		tenant    = "tenant-1"
		handler   = "mail_push"
		messageID = "123"
	)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.deliver(tenant, handler, messageID, func() {})
		}()
	}
	wg.Wait()

	if d.sends != 1 {
		t.Fatalf("expected exactly 1 send, got %d", d.sends)
	}
}

func TestMailDelivery_DistinctMessagesAllSend(t *testing.T) {
	for run := 0; run < 100; run++ {
		d := newFakeDeliverer()
		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.deliver("tenant-1", "mail_push", "1", func() {})
				d.deliver("tenant-1", "mail_push", "2", func() {})
				d.deliver("tenant-1", "mail_push", "1", func() {}) // duplicate
			}()
		}
		wg.Wait()

		if d.sends != 2 {
			t.Fatalf("run=%d expected 2 unique sends, got %d", run, d.sends)
		}
	}
}

// Both delivery paths must derive the same idempotency key for the same
// outbox row, otherwise a row picked up by the direct processor and then
// redelivered through Pub/Sub would send twice.
func TestOutboxMessageId_SharedAcrossDeliveryPaths(t *testing.T) {
	record := models.MailMessageRecord{ID: 42, TenantId: "tenant-1"}

	directKey := OutboxMessageId(record.ID)
	pushKey := OutboxMessageId(models.ConvertToPubSubMailMessage(record).ID)

	if directKey != pushKey {
		t.Fatalf("delivery paths disagree on idempotency key: %q vs %q", directKey, pushKey)
	}
	if directKey != "outbox-42" {
		t.Fatalf("unexpected idempotency key %q", directKey)
	}

	d := newFakeDeliverer()
	d.deliver(record.TenantId, "mail_push", directKey, func() {})
	d.deliver(record.TenantId, "mail_push", pushKey, func() {})
	if d.sends != 1 {
		t.Fatalf("expected one send across both paths, got %d", d.sends)
	}
}
