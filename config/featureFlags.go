package config

import (
	"os"
	"strings"
)

// ContentGenerationDisabled turns off the external proposal text generator.
// Proposals then always use the deterministic plain summary.
//
// Set via env:
// - CONTENT_GENERATION_DISABLED=true
func ContentGenerationDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("CONTENT_GENERATION_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// MailOutboxDisabled turns mail off entirely: EnqueueMail becomes a no-op,
// so no outbox rows are written and nothing is ever delivered. The dispatcher
// and direct processor are also not started.
//
// Set via env:
// - MAIL_OUTBOX_DISABLED=true
func MailOutboxDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MAIL_OUTBOX_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
