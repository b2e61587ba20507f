package main

import (
	"errors"
	"net/http"
	"testing"

	"github.com/nexvora/crm_backend/utils"
)

func TestHttpStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.ErrorUnauthorized("no token"), http.StatusUnauthorized},
		{utils.ErrorForbidden("cross-tenant access"), http.StatusForbidden},
		{utils.ErrorNotFound("gone"), http.StatusNotFound},
		{utils.ErrorRecordNotFound, http.StatusNotFound},
		{utils.ErrorValidation("quantity", "must be positive"), http.StatusBadRequest},
		{utils.ErrorConflict("has dependents"), http.StatusConflict},
		{utils.ErrorUpstreamUnavailable("mailer down"), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := httpStatusFor(tc.err); got != tc.want {
			t.Fatalf("httpStatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestThumbnailObjectKey(t *testing.T) {
	got := thumbnailObjectKey("t-1/company/abc.png")
	if got != "t-1/company/thumbnails/abc.png" {
		t.Fatalf("unexpected thumbnail key %q", got)
	}
}

func TestExtensionFromMimeType(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
		"text/weird":      "",
	}
	for mime, want := range cases {
		if got := extensionFromMimeType(mime); got != want {
			t.Fatalf("extensionFromMimeType(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" https://a.example , ,https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected result %#v", got)
	}
	if splitAndTrim("  ") != nil {
		t.Fatal("blank input should yield nil")
	}
}
