package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nexvora/crm_backend/utils"
)

// Client talks to the outbound mail collaborator over HTTP. The collaborator
// owns templates and delivery; this side only posts a template kind plus a
// structured payload. One attempt per call, no internal retry.
type Client struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
}

var (
	defaultClient *Client
	clientOnce    sync.Once
)

func NewClient() *Client {
	baseURL := strings.TrimSpace(os.Getenv("MAILER_API_BASE_URL"))
	apiKeyHeader := strings.TrimSpace(os.Getenv("MAILER_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(os.Getenv("MAILER_API_KEY")),
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func Default() *Client {
	clientOnce.Do(func() {
		defaultClient = NewClient()
	})
	return defaultClient
}

type sendRequest struct {
	Kind      string          `json:"kind"`
	Recipient string          `json:"recipient"`
	Payload   json.RawMessage `json:"payload"`
}

// Send posts one mail to the collaborator. Errors map to UpstreamUnavailable
// so callers can decide whether the failure is user-visible (task question)
// or swallowed (invite-style notifications).
func (c *Client) Send(ctx context.Context, kind string, recipient string, payload any) error {
	if c.baseURL == "" {
		return utils.ErrorUpstreamUnavailable("mail collaborator is not configured")
	}
	if recipient == "" {
		return utils.ErrorValidation("recipient", "mail recipient is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	reqBody, err := json.Marshal(sendRequest{Kind: kind, Recipient: recipient, Payload: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send", bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHdr, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return utils.ErrorUpstreamUnavailable("mail collaborator unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return utils.ErrorUpstreamUnavailable(
			fmt.Sprintf("mail collaborator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}
	return nil
}
