package textgen

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
	"github.com/shopspring/decimal"
)

// PromptContext is the structured input handed to the text-generation
// collaborator. The same context feeds the deterministic fallback, so both
// paths describe the same document.
type PromptContext struct {
	Title       string          `json:"title"`
	CompanyName string          `json:"company_name"`
	Items       []ItemContext   `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type ItemContext struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// Client talks to the text-generation collaborator over HTTP. One attempt per
// call; callers fall back to FallbackSummary when it is down.
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
	baseURL := strings.TrimSpace(os.Getenv("TEXTGEN_API_BASE_URL"))
	apiKeyHeader := strings.TrimSpace(os.Getenv("TEXTGEN_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(os.Getenv("TEXTGEN_API_KEY")),
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

func Default() *Client {
	clientOnce.Do(func() {
		defaultClient = NewClient()
	})
	return defaultClient
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate asks the collaborator for proposal body text. Every failure maps
// to UpstreamUnavailable so callers know the fallback applies.
func (c *Client) Generate(ctx context.Context, prompt PromptContext) (string, error) {
	if c.baseURL == "" {
		return "", utils.ErrorUpstreamUnavailable("text generator is not configured")
	}

	body, err := json.Marshal(prompt)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHdr, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", utils.ErrorUpstreamUnavailable("text generator unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", utils.ErrorUpstreamUnavailable(
			fmt.Sprintf("text generator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", utils.ErrorUpstreamUnavailable("text generator returned malformed response")
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return "", utils.ErrorUpstreamUnavailable("text generator returned empty text")
	}
	return parsed.Text, nil
}

// FallbackSummary renders a plain deterministic summary from the prompt
// context. Same inputs, same output, always.
func FallbackSummary(prompt PromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposal: %s\n", prompt.Title)
	if prompt.CompanyName != "" {
		fmt.Fprintf(&b, "Prepared for %s\n", prompt.CompanyName)
	}
	b.WriteString("\n")
	for _, item := range prompt.Items {
		fmt.Fprintf(&b, "- %s: %d x %s = %s\n",
			item.Description, item.Quantity, item.Price.StringFixed(2), item.Total.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", prompt.TotalAmount.StringFixed(2))
	return b.String()
}
