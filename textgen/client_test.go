package textgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexvora/crm_backend/utils"
	"github.com/shopspring/decimal"
)

func samplePrompt() PromptContext {
	return PromptContext{
		Title:       "Website Redesign",
		CompanyName: "Acme GmbH",
		Items: []ItemContext{
			{Description: "Design sprint", Quantity: 2, Price: decimal.NewFromInt(125), Total: decimal.NewFromInt(250)},
			{Description: "Implementation", Quantity: 3, Price: decimal.NewFromInt(100), Total: decimal.NewFromInt(300)},
		},
		TotalAmount: decimal.NewFromInt(550),
	}
}

func TestFallbackSummary_Deterministic(t *testing.T) {
	first := FallbackSummary(samplePrompt())
	for i := 0; i < 5; i++ {
		if got := FallbackSummary(samplePrompt()); got != first {
			t.Fatalf("fallback summary changed between identical inputs:\n%q\nvs\n%q", first, got)
		}
	}
}

func TestFallbackSummary_Content(t *testing.T) {
	out := FallbackSummary(samplePrompt())
	for _, want := range []string{
		"Proposal: Website Redesign",
		"Prepared for Acme GmbH",
		"- Design sprint: 2 x 125.00 = 250.00",
		"- Implementation: 3 x 100.00 = 300.00",
		"Total: 550.00",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFallbackSummary_NoCompanyLine(t *testing.T) {
	prompt := samplePrompt()
	prompt.CompanyName = ""
	if strings.Contains(FallbackSummary(prompt), "Prepared for") {
		t.Fatal("summary should omit the company line when no company is known")
	}
}

func TestGenerate_Unconfigured(t *testing.T) {
	c := &Client{http: http.DefaultClient}
	_, err := c.Generate(context.Background(), samplePrompt())
	if utils.KindOf(err) != utils.ErrorKindUpstreamUnavailable {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{baseURL: srv.URL, http: srv.Client()}
	_, err := c.Generate(context.Background(), samplePrompt())
	if utils.KindOf(err) != utils.ErrorKindUpstreamUnavailable {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generate" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"Dear Acme GmbH, ..."}`))
	}))
	defer srv.Close()

	c := &Client{baseURL: srv.URL, http: srv.Client()}
	text, err := c.Generate(context.Background(), samplePrompt())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != "Dear Acme GmbH, ..." {
		t.Fatalf("unexpected text %q", text)
	}
}
